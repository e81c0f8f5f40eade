package viewer

import (
	"math"
	"time"

	"github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/interact"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/observability"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/tree"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// ErrNoSurface is returned by New when no drawing surface can be acquired.
var ErrNoSurface = errors.New(errors.ErrCodeNoSurface, "no drawing surface")

// Defaults for a new viewer.
const (
	DefaultWidth     = 800
	DefaultHeight    = 600
	DefaultFitMargin = 40
)

// SurfaceFunc returns a drawing surface of w×h device pixels. It is called
// once by New and again on every Resize.
type SurfaceFunc func(w, h int) (render.Surface, error)

type config struct {
	width, height float64
	pixelRatio    float64
	margin        float64
	layout        layout.Options
	renderer      render.Renderer
	viewport      []viewport.Option
}

// Option configures a Viewer.
type Option func(*config)

// WithSize sets the initial surface size in CSS pixels and the device
// pixel ratio.
func WithSize(w, h, pixelRatio float64) Option {
	return func(c *config) { c.width, c.height, c.pixelRatio = w, h, pixelRatio }
}

// WithLayout sets the layout options used by SetTree.
func WithLayout(opts layout.Options) Option {
	return func(c *config) { c.layout = opts }
}

// WithRenderer sets the renderer. Its PixelRatio is overwritten with the
// viewer's pixel ratio on every redraw.
func WithRenderer(r render.Renderer) Option {
	return func(c *config) { c.renderer = r }
}

// WithViewport passes options to the viewer's viewport.
func WithViewport(opts ...viewport.Option) Option {
	return func(c *config) { c.viewport = append(c.viewport, opts...) }
}

// WithFitMargin sets the total margin, in screen pixels, left around the
// tree by Fit.
func WithFitMargin(m float64) Option {
	return func(c *config) { c.margin = m }
}

// Viewer is one visualization: a tree, its cached layout, a viewport, the
// controller that drives it, and the surface it draws on.
//
// Viewers share no state with each other. A Viewer is not safe for
// concurrent use; hosts serving several clients lock per viewer.
type Viewer struct {
	acquire  SurfaceFunc
	surface  render.Surface
	size     geom.Size
	ratio    float64
	margin   float64
	opts     layout.Options
	renderer render.Renderer

	vp   *viewport.Viewport
	ctrl *interact.Controller

	root    *tree.Node
	res     *layout.Result
	layouts int
	frames  int
	stats   render.Stats
}

// New creates a viewer and acquires its surface. It fails with an error
// matching ErrNoSurface when acquire is nil, fails or returns nil.
func New(acquire SurfaceFunc, opts ...Option) (*Viewer, error) {
	cfg := config{
		width:      DefaultWidth,
		height:     DefaultHeight,
		pixelRatio: 1,
		margin:     DefaultFitMargin,
		layout:     layout.DefaultOptions(),
		renderer:   render.NewRenderer(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if acquire == nil {
		return nil, ErrNoSurface
	}
	cfg.layout.SetDefaults()
	if err := cfg.layout.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateSurfaceSize(cfg.width, cfg.height, cfg.pixelRatio); err != nil {
		return nil, err
	}

	v := &Viewer{
		acquire:  acquire,
		ratio:    cfg.pixelRatio,
		margin:   cfg.margin,
		opts:     cfg.layout,
		renderer: cfg.renderer,
		vp:       viewport.New(cfg.viewport...),
	}
	v.ctrl = interact.New(v.vp, v.Redraw)

	s, err := v.acquireSurface(geom.Size{W: cfg.width, H: cfg.height}, cfg.pixelRatio)
	if err != nil {
		return nil, err
	}
	v.surface = s
	v.size = geom.Size{W: cfg.width, H: cfg.height}
	return v, nil
}

func (v *Viewer) acquireSurface(size geom.Size, ratio float64) (render.Surface, error) {
	w := int(math.Ceil(size.W * ratio))
	h := int(math.Ceil(size.H * ratio))
	s, err := v.acquire(w, h)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNoSurface, err, "%s", ErrNoSurface.Message)
	}
	if s == nil {
		return nil, ErrNoSurface
	}
	return s, nil
}

// =============================================================================
// Commands
// =============================================================================

// SetTree replaces the tree, recomputes the layout, fits it into the
// surface and redraws. A nil root clears the surface.
func (v *Viewer) SetTree(root *tree.Node) {
	v.root = root
	v.res = layout.Compute(root, v.opts)
	v.layouts++
	if v.res.Empty() {
		v.vp.SetState(viewport.State{Scale: 1})
		v.Redraw()
		return
	}
	v.ctrl.Fit(v.res.Bounds(), v.size, v.margin)
}

// Resize reacquires the surface for a new CSS size and pixel ratio and
// redraws. Pan and scale are unchanged. On error the old surface is kept.
func (v *Viewer) Resize(w, h, pixelRatio float64) error {
	if err := errors.ValidateSurfaceSize(w, h, pixelRatio); err != nil {
		return err
	}
	size := geom.Size{W: w, H: h}
	s, err := v.acquireSurface(size, pixelRatio)
	if err != nil {
		return err
	}
	v.surface, v.size, v.ratio = s, size, pixelRatio
	v.Redraw()
	return nil
}

// ResizeAndFit resizes and then fits the tree to the new size.
func (v *Viewer) ResizeAndFit(w, h, pixelRatio float64) error {
	if err := v.Resize(w, h, pixelRatio); err != nil {
		return err
	}
	v.Fit()
	return nil
}

// Fit scales and centers the tree in the surface.
func (v *Viewer) Fit() {
	if v.res.Empty() {
		v.Redraw()
		return
	}
	v.ctrl.Fit(v.res.Bounds(), v.size, v.margin)
}

// ZoomIn zooms in around the surface center.
func (v *Viewer) ZoomIn() { v.ctrl.ZoomIn(v.size) }

// ZoomOut zooms out around the surface center.
func (v *Viewer) ZoomOut() { v.ctrl.ZoomOut(v.size) }

// Pan moves the view by (dx, dy) CSS pixels.
func (v *Viewer) Pan(dx, dy float64) { v.ctrl.Pan(dx, dy) }

// Handle forwards a raw input event and reports whether it redrew.
func (v *Viewer) Handle(e interact.Event) bool { return v.ctrl.Handle(e) }

// Redraw renders the cached layout onto the surface.
func (v *Viewer) Redraw() {
	start := time.Now()
	r := v.renderer
	r.PixelRatio = v.ratio
	v.stats = r.Render(v.res, v.vp, v.surface)
	v.frames++
	observability.Frames().OnFrame(v.frames, v.vp.Scale(), time.Since(start))
}

// =============================================================================
// Accessors
// =============================================================================

// Surface returns the current drawing surface.
func (v *Viewer) Surface() render.Surface { return v.surface }

// Viewport returns the viewer's viewport.
func (v *Viewer) Viewport() *viewport.Viewport { return v.vp }

// Controller returns the viewer's interaction controller.
func (v *Viewer) Controller() *interact.Controller { return v.ctrl }

// Layout returns the cached layout, or nil before the first SetTree.
func (v *Viewer) Layout() *layout.Result { return v.res }

// Tree returns the current tree.
func (v *Viewer) Tree() *tree.Node { return v.root }

// Size returns the surface size in CSS pixels and the pixel ratio.
func (v *Viewer) Size() (geom.Size, float64) { return v.size, v.ratio }

// Frames returns the number of redraws so far.
func (v *Viewer) Frames() int { return v.frames }

// Stats returns what the last redraw drew.
func (v *Viewer) Stats() render.Stats { return v.stats }

// NodeAt returns the arena index of the node under the screen point
// (sx, sy), in CSS pixels.
func (v *Viewer) NodeAt(sx, sy float64) (int, bool) {
	wx, wy := v.vp.ToWorld(sx, sy)
	return v.res.Hit(geom.Pt(wx, wy))
}

// VisibleNodes returns the arena indices of nodes at least partly on screen.
func (v *Viewer) VisibleNodes() []int {
	return v.res.Visible(v.vp.VisibleWorld(v.size))
}
