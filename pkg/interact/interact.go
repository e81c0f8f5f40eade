package interact

import (
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// Zoom multipliers.
const (
	DefaultWheelStep  = 1.1
	DefaultButtonStep = 1.2
)

// State is the pointer state of a Controller.
type State uint8

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller turns input events and toolbar commands into viewport changes.
// Every change is followed by exactly one call to the redraw callback.
type Controller struct {
	// WheelStep is the scale multiplier of one wheel notch.
	WheelStep float64
	// ButtonStep is the scale multiplier of ZoomIn and ZoomOut.
	ButtonStep float64

	vp     *viewport.Viewport
	redraw func()

	state        State
	lastX, lastY float64
	requested    bool
}

// New returns an idle controller driving vp. redraw may be nil.
func New(vp *viewport.Viewport, redraw func()) *Controller {
	return &Controller{
		WheelStep:  DefaultWheelStep,
		ButtonStep: DefaultButtonStep,
		vp:         vp,
		redraw:     redraw,
	}
}

// State returns the pointer state.
func (c *Controller) State() State { return c.state }

// Viewport returns the controlled viewport.
func (c *Controller) Viewport() *viewport.Viewport { return c.vp }

func (c *Controller) requestRedraw() {
	c.requested = true
	if c.redraw != nil {
		c.redraw()
	}
}

// =============================================================================
// Pointer
// =============================================================================

// PointerDown starts a drag at (x, y).
func (c *Controller) PointerDown(x, y float64) {
	c.state = Dragging
	c.lastX, c.lastY = x, y
}

// PointerMove pans by the distance moved since the last pointer event.
// It does nothing while idle.
func (c *Controller) PointerMove(x, y float64) {
	if c.state != Dragging {
		return
	}
	c.vp.PanBy(x-c.lastX, y-c.lastY)
	c.lastX, c.lastY = x, y
	c.requestRedraw()
}

// PointerUp ends a drag. Hosts should forward it even when the pointer was
// released outside the drawing surface.
func (c *Controller) PointerUp() {
	c.state = Idle
}

// Wheel zooms in for negative deltaY and out for positive deltaY, keeping
// the world point under (x, y) fixed. A zero delta is ignored. Wheel always
// returns true: the host must suppress native scrolling for the event.
func (c *Controller) Wheel(x, y, deltaY float64) bool {
	var factor float64
	switch {
	case deltaY < 0:
		factor = c.WheelStep
	case deltaY > 0:
		factor = 1 / c.WheelStep
	default:
		return true
	}
	c.vp.ZoomBy(x, y, factor)
	c.requestRedraw()
	return true
}

// =============================================================================
// Commands
// =============================================================================

// Fit scales and centers bounds inside a viewport of the given size.
func (c *Controller) Fit(bounds geom.Rect, size geom.Size, margin float64) {
	c.vp.FitToBounds(bounds, size, margin)
	c.requestRedraw()
}

// ZoomIn zooms by ButtonStep anchored at the center of size.
func (c *Controller) ZoomIn(size geom.Size) {
	p := size.Center()
	c.vp.ZoomBy(p.X, p.Y, c.ButtonStep)
	c.requestRedraw()
}

// ZoomOut zooms by 1/ButtonStep anchored at the center of size.
func (c *Controller) ZoomOut(size geom.Size) {
	p := size.Center()
	c.vp.ZoomBy(p.X, p.Y, 1/c.ButtonStep)
	c.requestRedraw()
}

// Pan moves the view by (dx, dy) screen pixels, for keyboard panning.
func (c *Controller) Pan(dx, dy float64) {
	c.vp.PanBy(dx, dy)
	c.requestRedraw()
}

// Handle dispatches a raw event and reports whether it requested a redraw.
// Unknown kinds are ignored.
func (c *Controller) Handle(e Event) bool {
	c.requested = false
	switch e.Kind {
	case PointerDown:
		c.PointerDown(e.X, e.Y)
	case PointerMove:
		c.PointerMove(e.X, e.Y)
	case PointerUp:
		c.PointerUp()
	case Wheel:
		c.Wheel(e.X, e.Y, e.DeltaY)
	}
	return c.requested
}
