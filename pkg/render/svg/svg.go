// Package svg implements a render.Surface that produces SVG documents.
//
// Each frame is one self-contained document sized in device pixels. The
// current transform is emitted as a <g transform="matrix(...)"> group, so
// the drawing stays resolution independent:
//
//	s := svg.New(1600, 1200)
//	renderer.Render(res, vp, s)
//	os.WriteFile("frame.svg", s.Bytes(), 0644)
//
// [Frame] wraps those three steps.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/astlens/pkg/fonts"
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// FontFamily is the CSS font stack used for labels. It leads with the font
// the raster renderer embeds so both outputs match where it is installed.
const FontFamily = "'" + fonts.FontFamily + "', 'DejaVu Sans', Helvetica, Arial, sans-serif"

// Surface accumulates SVG elements for one frame.
type Surface struct {
	w, h    int
	body    bytes.Buffer
	inGroup bool
}

// New returns an empty surface of w×h device pixels.
func New(w, h int) *Surface {
	return &Surface{w: max(w, 1), h: max(h, 1)}
}

// Size implements render.Surface.
func (s *Surface) Size() (int, int) { return s.w, s.h }

// Clear implements render.Surface. Everything drawn so far is discarded.
func (s *Surface) Clear(c colorful.Color) {
	s.body.Reset()
	s.inGroup = false
	fmt.Fprintf(&s.body, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", s.w, s.h, c.Hex())
}

// SetTransform implements render.Surface.
func (s *Surface) SetTransform(t geom.Transform) {
	s.closeGroup()
	if t == geom.Identity {
		return
	}
	fmt.Fprintf(&s.body, `  <g transform="matrix(%s 0 0 %s %s %s)">`+"\n", num(t.Scale), num(t.Scale), num(t.TX), num(t.TY))
	s.inGroup = true
}

// StrokePath implements render.Surface.
func (s *Surface) StrokePath(pts []geom.Point, st render.Stroke) {
	if len(pts) < 2 {
		return
	}
	var sb strings.Builder
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(num(p.X))
		sb.WriteByte(',')
		sb.WriteString(num(p.Y))
	}
	fmt.Fprintf(&s.body, `    <polyline points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linejoin="round"/>`+"\n",
		sb.String(), st.Color.Hex(), num(st.Width))
}

// DrawBox implements render.Surface.
func (s *Surface) DrawBox(r geom.Rect, radius float64, p render.BoxPaint) {
	fmt.Fprintf(&s.body, `    <rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(r.MinX), num(r.MinY), num(r.Width()), num(r.Height()), num(radius), num(radius),
		p.Fill.Hex(), p.Stroke.Hex(), num(p.StrokeWidth))
}

// DrawText implements render.Surface.
func (s *Surface) DrawText(text string, x, y float64, p render.TextPaint) {
	weight := ""
	if p.Bold {
		weight = ` font-weight="bold"`
	}
	fmt.Fprintf(&s.body, `    <text x="%s" y="%s" font-family="%s" font-size="%s"%s fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		num(x), num(y), FontFamily, num(p.Size), weight, p.Color.Hex(), EscapeXML(text))
}

// Bytes returns the complete SVG document for the frame drawn so far.
func (s *Surface) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.w, s.h, s.w, s.h)
	buf.Write(s.body.Bytes())
	if s.inGroup {
		buf.WriteString("  </g>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (s *Surface) closeGroup() {
	if s.inGroup {
		s.body.WriteString("  </g>\n")
		s.inGroup = false
	}
}

// Frame renders res through vp onto a fresh w×h surface and returns the
// SVG document.
func Frame(res *layout.Result, vp *viewport.Viewport, r render.Renderer, w, h int) []byte {
	s := New(w, h)
	r.Render(res, vp, s)
	return s.Bytes()
}

// Document renders the whole tree at scale 1 on a canvas just large enough
// to hold it with the layout margin on every side.
func Document(res *layout.Result, r render.Renderer) []byte {
	w, h := CanvasSize(res)
	r.PixelRatio = 1
	return Frame(res, nil, r, w, h)
}

// CanvasSize returns the size of a canvas holding res at scale 1 plus its
// margin on the far sides.
func CanvasSize(res *layout.Result) (int, int) {
	if res.Empty() {
		return 1, 1
	}
	b := res.Bounds()
	m := res.Options().Margin
	return int(b.MaxX + m + 0.5), int(b.MaxY + m + 0.5)
}

// EscapeXML escapes s for use as XML character data.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
