// Package raster implements a render.Surface backed by an RGBA image,
// drawn with fogleman/gg and labelled with the embedded Go fonts.
//
// Points are mapped through the current transform before they reach gg,
// and line widths and font sizes are scaled with it, so gg itself always
// draws in device pixels.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"

	"github.com/matzehuels/astlens/pkg/fonts"
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// minTextPx is the smallest on-screen font size still drawn. Smaller
// labels are unreadable and only cost glyph rasterization.
const minTextPx = 3.0

type faceKey struct {
	px   int
	bold bool
}

// Surface draws into an in-memory image.
type Surface struct {
	dc    *gg.Context
	t     geom.Transform
	faces map[faceKey]font.Face
	err   error
}

// New returns a w×h device pixel surface.
func New(w, h int) *Surface {
	return &Surface{
		dc:    gg.NewContext(max(w, 1), max(h, 1)),
		t:     geom.Identity,
		faces: map[faceKey]font.Face{},
	}
}

// Size implements render.Surface.
func (s *Surface) Size() (int, int) { return s.dc.Width(), s.dc.Height() }

// Clear implements render.Surface.
func (s *Surface) Clear(c colorful.Color) {
	s.dc.Identity()
	s.dc.SetColor(c)
	s.dc.Clear()
}

// SetTransform implements render.Surface.
func (s *Surface) SetTransform(t geom.Transform) { s.t = t }

// StrokePath implements render.Surface.
func (s *Surface) StrokePath(pts []geom.Point, st render.Stroke) {
	if len(pts) < 2 {
		return
	}
	s.dc.NewSubPath()
	for i, p := range pts {
		q := s.t.Apply(p)
		if i == 0 {
			s.dc.MoveTo(q.X, q.Y)
		} else {
			s.dc.LineTo(q.X, q.Y)
		}
	}
	s.dc.SetLineWidth(math.Max(st.Width*s.t.Scale, 0.5))
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.SetColor(st.Color)
	s.dc.Stroke()
}

// DrawBox implements render.Surface.
func (s *Surface) DrawBox(r geom.Rect, radius float64, p render.BoxPaint) {
	d := s.t.ApplyRect(r)
	s.dc.DrawRoundedRectangle(d.MinX, d.MinY, d.Width(), d.Height(), radius*s.t.Scale)
	s.dc.SetColor(p.Fill)
	s.dc.FillPreserve()
	s.dc.SetLineWidth(math.Max(p.StrokeWidth*s.t.Scale, 0.5))
	s.dc.SetColor(p.Stroke)
	s.dc.Stroke()
}

// DrawText implements render.Surface. Text too small to read is skipped.
func (s *Surface) DrawText(text string, x, y float64, p render.TextPaint) {
	px := p.Size * s.t.Scale
	if px < minTextPx || text == "" {
		return
	}
	face, err := s.face(px, p.Bold)
	if err != nil {
		s.err = err
		return
	}
	q := s.t.Apply(geom.Pt(x, y))
	s.dc.SetFontFace(face)
	s.dc.SetColor(p.Color)
	s.dc.DrawStringAnchored(text, q.X, q.Y, 0.5, 0.35)
}

func (s *Surface) face(px float64, bold bool) (font.Face, error) {
	key := faceKey{px: int(math.Round(px * 2)), bold: bold}
	if f, ok := s.faces[key]; ok {
		return f, nil
	}
	f, err := fonts.Face(float64(key.px)/2, bold)
	if err != nil {
		return nil, err
	}
	s.faces[key] = f
	return f, nil
}

// Err returns the first font error encountered while drawing, if any.
func (s *Surface) Err() error { return s.err }

// Image returns the drawn image.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the image as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if s.err != nil {
		return fmt.Errorf("draw labels: %w", s.err)
	}
	return s.dc.EncodePNG(w)
}

// PNG returns the image encoded as PNG.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases the cached font faces.
func (s *Surface) Close() error {
	for k, f := range s.faces {
		f.Close()
		delete(s.faces, k)
	}
	return nil
}

// Frame renders res through vp onto a fresh w×h image and returns it as PNG.
func Frame(res *layout.Result, vp *viewport.Viewport, r render.Renderer, w, h int) ([]byte, error) {
	s := New(w, h)
	defer s.Close()
	r.Render(res, vp, s)
	return s.PNG()
}

// Document renders the whole tree on a canvas just large enough to hold it,
// at scale pixel ratio. A scale of 2 gives a 2x resolution image.
func Document(res *layout.Result, r render.Renderer, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	w, h := 1, 1
	if !res.Empty() {
		b := res.Bounds()
		m := res.Options().Margin
		w, h = int(math.Ceil((b.MaxX+m)*scale)), int(math.Ceil((b.MaxY+m)*scale))
	}
	r.PixelRatio = scale
	return Frame(res, nil, r, w, h)
}
