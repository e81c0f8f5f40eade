package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/astlens/pkg/geom"
)

// Surface is a drawing target. Coordinates passed to the drawing methods
// are mapped through the current transform; Size and Clear work in device
// pixels and ignore it.
type Surface interface {
	// Size returns the surface dimensions in device pixels.
	Size() (w, h int)
	// Clear fills the whole surface with c.
	Clear(c colorful.Color)
	// SetTransform replaces the current transform.
	SetTransform(t geom.Transform)
	// StrokePath draws an open polyline through pts.
	StrokePath(pts []geom.Point, s Stroke)
	// DrawBox fills and outlines a rounded rectangle.
	DrawBox(r geom.Rect, radius float64, p BoxPaint)
	// DrawText draws a single line of text centered on (x, y).
	DrawText(text string, x, y float64, p TextPaint)
}

// Stroke describes a line.
type Stroke struct {
	Color colorful.Color
	Width float64
}

// BoxPaint describes a node box.
type BoxPaint struct {
	Fill        colorful.Color
	Stroke      colorful.Color
	StrokeWidth float64
}

// TextPaint describes a label.
type TextPaint struct {
	Color colorful.Color
	Size  float64
	Bold  bool
}
