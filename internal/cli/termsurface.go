package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/render"
)

// A terminal cell stands for cellWidth×cellHeight screen pixels, roughly
// the aspect ratio of a monospace glyph.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

type cell struct {
	r      rune
	fg, bg colorful.Color
	filled bool // bg was painted by a box
}

// termSurface is a render.Surface that draws into a grid of terminal
// cells. Boxes become line-drawing frames, edges become runs of line
// characters, and labels too small to read are skipped.
type termSurface struct {
	w, h       int
	cols, rows int
	t          geom.Transform
	cells      []cell
}

func newTermSurface(w, h int) *termSurface {
	cols := max(1, int(math.Ceil(float64(w)/cellWidth)))
	rows := max(1, int(math.Ceil(float64(h)/cellHeight)))
	s := &termSurface{w: w, h: h, cols: cols, rows: rows, t: geom.Identity}
	s.cells = make([]cell, cols*rows)
	return s
}

// Size implements render.Surface.
func (s *termSurface) Size() (int, int) { return s.w, s.h }

// Clear implements render.Surface. The terminal keeps its own background,
// so c is ignored.
func (s *termSurface) Clear(colorful.Color) {
	for i := range s.cells {
		s.cells[i] = cell{r: ' '}
	}
}

// SetTransform implements render.Surface.
func (s *termSurface) SetTransform(t geom.Transform) { s.t = t }

func (s *termSurface) toCell(p geom.Point) (int, int) {
	q := s.t.Apply(p)
	return int(math.Floor(q.X / cellWidth)), int(math.Floor(q.Y / cellHeight))
}

func (s *termSurface) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return nil
	}
	return &s.cells[y*s.cols+x]
}

// StrokePath implements render.Surface.
func (s *termSurface) StrokePath(pts []geom.Point, st render.Stroke) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := s.toCell(pts[i-1])
		x1, y1 := s.toCell(pts[i])
		s.line(x0, y0, x1, y1, st.Color)
	}
}

func (s *termSurface) line(x0, y0, x1, y1 int, c colorful.Color) {
	dx, dy := x1-x0, y1-y0
	r := '·'
	switch {
	case dy == 0:
		r = '─'
	case dx == 0:
		r = '│'
	}
	steps := max(abs(dx), abs(dy))
	// Skip segments far outside the grid instead of walking them.
	if steps > 4*(s.cols+s.rows) {
		return
	}
	for i := 0; i <= steps; i++ {
		x, y := x0, y0
		if steps > 0 {
			x = x0 + int(math.Round(float64(i*dx)/float64(steps)))
			y = y0 + int(math.Round(float64(i*dy)/float64(steps)))
		}
		if cl := s.at(x, y); cl != nil && !cl.filled {
			cl.r, cl.fg = r, c
		}
	}
}

// DrawBox implements render.Surface. The radius is ignored.
func (s *termSurface) DrawBox(r geom.Rect, _ float64, p render.BoxPaint) {
	x0, y0 := s.toCell(geom.Pt(r.MinX, r.MinY))
	q := s.t.Apply(geom.Pt(r.MaxX, r.MaxY))
	x1 := max(x0, int(math.Ceil(q.X/cellWidth))-1)
	y1 := max(y0, int(math.Ceil(q.Y/cellHeight))-1)
	if x1 < 0 || y1 < 0 || x0 >= s.cols || y0 >= s.rows {
		return
	}
	for y := max(y0, 0); y <= min(y1, s.rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, s.cols-1); x++ {
			cl := s.at(x, y)
			cl.r, cl.fg, cl.bg, cl.filled = boxRune(x, y, x0, y0, x1, y1), p.Stroke, p.Fill, true
		}
	}
}

func boxRune(x, y, x0, y0, x1, y1 int) rune {
	switch {
	case x0 == x1:
		return '▮'
	case y0 == y1 && x == x0:
		return '['
	case y0 == y1 && x == x1:
		return ']'
	case y0 == y1:
		return ' '
	case x == x0 && y == y0:
		return '┌'
	case x == x1 && y == y0:
		return '┐'
	case x == x0 && y == y1:
		return '└'
	case x == x1 && y == y1:
		return '┘'
	case y == y0 || y == y1:
		return '─'
	case x == x0 || x == x1:
		return '│'
	}
	return ' '
}

// DrawText implements render.Surface. Labels smaller than half a row are
// not drawn.
func (s *termSurface) DrawText(text string, x, y float64, p render.TextPaint) {
	if p.Size*s.t.Scale < cellHeight/2 {
		return
	}
	cx, cy := s.toCell(geom.Pt(x, y))
	runes := []rune(text)
	start := cx - len(runes)/2
	for i, r := range runes {
		if cl := s.at(start+i, cy); cl != nil {
			cl.r, cl.fg = r, p.Color
		}
	}
}

// String renders the grid with ANSI colors, one line per row.
func (s *termSurface) String() string {
	var b strings.Builder
	for y := 0; y < s.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := s.cells[y*s.cols : (y+1)*s.cols]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && sameStyle(row[start], row[end]) {
				end++
			}
			var run strings.Builder
			for _, cl := range row[start:end] {
				run.WriteRune(cl.r)
			}
			b.WriteString(cellStyle(row[start]).Render(run.String()))
			start = end
		}
	}
	return b.String()
}

// Plain returns the grid without colors.
func (s *termSurface) Plain() string {
	var b strings.Builder
	for y := 0; y < s.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range s.cells[y*s.cols : (y+1)*s.cols] {
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.filled == b.filled
}

func cellStyle(cl cell) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(cl.fg.Hex()))
	if cl.filled {
		st = st.Background(lipgloss.Color(cl.bg.Hex()))
	}
	return st
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
