package render

import (
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// Renderer draws a laid-out tree onto a Surface. It holds no per-frame
// state, so one Renderer can draw any number of frames onto any number of
// surfaces.
type Renderer struct {
	Style Style
	// PixelRatio is the number of device pixels per screen pixel. Values
	// <= 0 are treated as 1.
	PixelRatio float64
}

// NewRenderer returns a renderer with the default style at pixel ratio 1.
func NewRenderer() Renderer {
	return Renderer{Style: DefaultStyle(), PixelRatio: 1}
}

// Stats counts what one frame drew.
type Stats struct {
	Edges int
	Boxes int
}

// Render clears s and draws res as seen through vp: every edge first, then
// every node box, so edges always sit behind boxes.
//
// A nil or empty res leaves a cleared surface. A nil vp draws at scale 1
// with no pan. res must come from layout.Compute or layout.Import; the
// renderer never computes geometry itself.
func (r Renderer) Render(res *layout.Result, vp *viewport.Viewport, s Surface) Stats {
	style := r.Style
	style.SetDefaults()
	pal := style.resolve()

	s.SetTransform(geom.Identity)
	s.Clear(pal.background)
	if res.Empty() {
		return Stats{}
	}

	t := geom.Identity
	if vp != nil {
		t = vp.Transform()
	}
	s.SetTransform(t.Then(geom.ScaleBy(r.pixelRatio())))

	var st Stats
	edge := Stroke{Color: pal.edge, Width: style.EdgeWidth}
	opts := res.Options()
	for i := 0; i < res.Len(); i++ {
		for _, c := range res.Children(i) {
			s.StrokePath(EdgePath(res, i, c, opts.Gutter), edge)
			st.Edges++
		}
	}

	for i := 0; i < res.Len(); i++ {
		r.drawNode(s, res, i, style, pal)
		st.Boxes++
	}
	return st
}

func (r Renderer) pixelRatio() float64 {
	if r.PixelRatio <= 0 {
		return 1
	}
	return r.PixelRatio
}

func (r Renderer) drawNode(s Surface, res *layout.Result, i int, style Style, pal palette) {
	box := res.Box(i)
	n := res.Node(i)

	fill := pal.fill
	if n.IsLeaf() {
		fill = pal.leafFill
	}
	s.DrawBox(box, style.Radius, BoxPaint{Fill: fill, Stroke: pal.stroke, StrokeWidth: style.StrokeWidth})

	c := box.Center()
	primary := TextPaint{Color: pal.text, Size: style.FontSize, Bold: !n.IsLeaf()}
	if !HasSecondary(n.Type, n.Label) {
		s.DrawText(Truncate(n.Type, style.MaxLabelChars), c.X, c.Y, primary)
		return
	}
	h := box.Height()
	s.DrawText(Truncate(n.Type, style.MaxLabelChars), c.X, c.Y-h*0.15, primary)
	s.DrawText(Truncate(n.Label, style.MaxSubLabelChars), c.X, c.Y+h*0.22,
		TextPaint{Color: pal.subText, Size: style.SubFontSize})
}

// HasSecondary reports whether a node shows a second label line: only when
// the label is non-empty and differs from the primary label.
func HasSecondary(primary, label string) bool {
	return label != "" && label != primary
}

// EdgePath returns the polyline from parent to child in world coordinates.
//
// Row parents connect straight from the bottom center of the parent box to
// the top center of the child box. Column parents leave the right edge of
// the parent box, run down a vertical gutter gutter units right of it and
// enter the child's left edge:
//
//	[parent]──┐
//	          │
//	          └──[child]
//
// Column children always start right of the gutter, so the path never
// crosses the parent box.
func EdgePath(res *layout.Result, parent, child int, gutter float64) []geom.Point {
	pb, cb := res.Box(parent), res.Box(child)
	if res.Strategy(parent) == layout.Column {
		pc, cc := pb.Center(), cb.Center()
		gx := pb.MaxX + gutter
		return []geom.Point{
			{X: pb.MaxX, Y: pc.Y},
			{X: gx, Y: pc.Y},
			{X: gx, Y: cc.Y},
			{X: cb.MinX, Y: cc.Y},
		}
	}
	return []geom.Point{
		{X: pb.Center().X, Y: pb.MaxY},
		{X: cb.Center().X, Y: cb.MinY},
	}
}
