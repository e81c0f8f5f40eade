package render

import (
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/astlens/pkg/geom"
)

// OpKind identifies a recorded drawing call.
type OpKind int

const (
	OpClear OpKind = iota
	OpPath
	OpBox
	OpText
)

// Op is one drawing call captured by a Recorder. Points, Rect and X/Y are
// already mapped through the transform that was current at call time.
type Op struct {
	Kind   OpKind
	Color  colorful.Color
	Points []geom.Point
	Rect   geom.Rect
	Text   string
	X, Y   float64
}

// Recorder is a headless Surface that records every call in device
// coordinates. It backs hit-testing hosts that never rasterize, and tests.
type Recorder struct {
	W, H int
	Ops  []Op

	t geom.Transform
}

// NewRecorder returns a recorder of the given device size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, t: geom.Identity}
}

// Size implements Surface.
func (r *Recorder) Size() (int, int) { return r.W, r.H }

// Clear implements Surface. Previously recorded operations are dropped.
func (r *Recorder) Clear(c colorful.Color) {
	r.Ops = append(r.Ops[:0], Op{Kind: OpClear, Color: c})
}

// SetTransform implements Surface.
func (r *Recorder) SetTransform(t geom.Transform) { r.t = t }

// StrokePath implements Surface.
func (r *Recorder) StrokePath(pts []geom.Point, s Stroke) {
	mapped := make([]geom.Point, len(pts))
	for i, p := range pts {
		mapped[i] = r.t.Apply(p)
	}
	r.Ops = append(r.Ops, Op{Kind: OpPath, Color: s.Color, Points: mapped})
}

// DrawBox implements Surface.
func (r *Recorder) DrawBox(rect geom.Rect, _ float64, p BoxPaint) {
	r.Ops = append(r.Ops, Op{Kind: OpBox, Color: p.Fill, Rect: r.t.ApplyRect(rect)})
}

// DrawText implements Surface.
func (r *Recorder) DrawText(text string, x, y float64, p TextPaint) {
	pt := r.t.Apply(geom.Pt(x, y))
	r.Ops = append(r.Ops, Op{Kind: OpText, Color: p.Color, Text: text, X: pt.X, Y: pt.Y})
}

// Count returns how many operations of kind k were recorded.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Texts returns the recorded text labels in draw order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Clone returns a deep copy, so a frame can be kept while the recorder is
// reused.
func (r *Recorder) Clone() *Recorder {
	c := &Recorder{W: r.W, H: r.H, t: r.t, Ops: slices.Clone(r.Ops)}
	for i := range c.Ops {
		c.Ops[i].Points = slices.Clone(c.Ops[i].Points)
	}
	return c
}
