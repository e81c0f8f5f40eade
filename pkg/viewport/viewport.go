// Package viewport holds the pan/zoom state of one visualization and maps
// between world (layout) coordinates and screen coordinates:
//
//	screen = world*scale + pan
//	world  = (screen - pan) / scale
//
// Scale is clamped into [MinScale, MaxScale] on every write, so it is never
// zero or negative and the inverse map is always defined. Pan is never
// clamped; panning off the content is allowed.
//
// A Viewport is not safe for concurrent use. It belongs to exactly one
// visualization and is mutated from that visualization's event handlers.
package viewport

import (
	"math"

	"github.com/matzehuels/astlens/pkg/geom"
)

// Default scale range.
const (
	DefaultMinScale = 0.3
	DefaultMaxScale = 2.5
)

// State is a snapshot of the pan/zoom state.
type State struct {
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
	Scale float64 `json:"scale"`
}

// Viewport is the pan offset and scale of a view.
type Viewport struct {
	panX, panY float64
	scale      float64
	minScale   float64
	maxScale   float64
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithScaleRange sets the allowed scale interval. Non-positive or inverted
// ranges are ignored.
func WithScaleRange(minScale, maxScale float64) Option {
	return func(v *Viewport) {
		if minScale > 0 && maxScale >= minScale {
			v.minScale, v.maxScale = minScale, maxScale
		}
	}
}

// New returns a viewport at scale 1 (clamped) with no pan.
func New(opts ...Option) *Viewport {
	v := &Viewport{minScale: DefaultMinScale, maxScale: DefaultMaxScale}
	for _, opt := range opts {
		opt(v)
	}
	v.scale = v.Clamp(1)
	return v
}

// Clamp limits s to the viewport's scale range. NaN maps to the minimum.
func (v *Viewport) Clamp(s float64) float64 {
	if math.IsNaN(s) {
		return v.minScale
	}
	return math.Min(v.maxScale, math.Max(v.minScale, s))
}

// Scale returns the current scale.
func (v *Viewport) Scale() float64 { return v.scale }

// Pan returns the current pan offset.
func (v *Viewport) Pan() (x, y float64) { return v.panX, v.panY }

// ScaleRange returns the allowed scale interval.
func (v *Viewport) ScaleRange() (minScale, maxScale float64) { return v.minScale, v.maxScale }

// State returns a snapshot of the current state.
func (v *Viewport) State() State {
	return State{PanX: v.panX, PanY: v.panY, Scale: v.scale}
}

// SetState restores a snapshot. The scale is clamped.
func (v *Viewport) SetState(s State) {
	v.panX, v.panY = s.PanX, s.PanY
	v.scale = v.Clamp(s.Scale)
}

// Transform returns the world-to-screen transform.
func (v *Viewport) Transform() geom.Transform {
	return geom.Transform{Scale: v.scale, TX: v.panX, TY: v.panY}
}

// ToWorld maps a screen point to world coordinates.
func (v *Viewport) ToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - v.panX) / v.scale, (sy - v.panY) / v.scale
}

// ToScreen maps a world point to screen coordinates.
func (v *Viewport) ToScreen(wx, wy float64) (sx, sy float64) {
	return wx*v.scale + v.panX, wy*v.scale + v.panY
}

// PanBy moves the view by (dx, dy) screen pixels.
func (v *Viewport) PanBy(dx, dy float64) {
	v.panX += dx
	v.panY += dy
}

// ZoomAt sets the scale to newScale (clamped) while keeping the world point
// under the screen point (sx, sy) fixed.
func (v *Viewport) ZoomAt(sx, sy, newScale float64) {
	wx, wy := v.ToWorld(sx, sy)
	v.scale = v.Clamp(newScale)
	v.panX = sx - wx*v.scale
	v.panY = sy - wy*v.scale
}

// ZoomBy multiplies the scale by factor, anchored at (sx, sy).
func (v *Viewport) ZoomBy(sx, sy, factor float64) {
	v.ZoomAt(sx, sy, v.scale*factor)
}

// FitToBounds scales the view so bounds fits inside a viewport of the given
// size less margin, then centers bounds in the viewport:
//
//	scale = clamp(min((vw-margin)/bw, (vh-margin)/bh))
//
// An axis with zero extent does not constrain the scale. When both axes are
// degenerate the scale is reset to 1 (clamped).
func (v *Viewport) FitToBounds(bounds geom.Rect, size geom.Size, margin float64) {
	bw, bh := bounds.Width(), bounds.Height()
	s := math.Inf(1)
	if bw > 0 {
		s = math.Min(s, (size.W-margin)/bw)
	}
	if bh > 0 {
		s = math.Min(s, (size.H-margin)/bh)
	}
	if math.IsInf(s, 1) {
		s = 1
	}
	v.scale = v.Clamp(s)

	c := bounds.Center()
	v.panX = size.W/2 - c.X*v.scale
	v.panY = size.H/2 - c.Y*v.scale
}

// VisibleWorld returns the world rectangle shown in a viewport of the given
// screen size.
func (v *Viewport) VisibleWorld(size geom.Size) geom.Rect {
	x0, y0 := v.ToWorld(0, 0)
	x1, y1 := v.ToWorld(size.W, size.H)
	return geom.Rect{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
}
