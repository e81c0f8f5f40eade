package cli

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/render"
)

func plainRows(s *termSurface) []string {
	return strings.Split(s.Plain(), "\n")
}

func TestTermSurfaceGrid(t *testing.T) {
	s := newTermSurface(80, 64)
	if s.cols != 10 || s.rows != 4 {
		t.Fatalf("grid = %dx%d, want 10x4", s.cols, s.rows)
	}
	if w, h := s.Size(); w != 80 || h != 64 {
		t.Errorf("Size() = %dx%d", w, h)
	}

	tiny := newTermSurface(3, 3)
	if tiny.cols != 1 || tiny.rows != 1 {
		t.Errorf("tiny grid = %dx%d, want 1x1", tiny.cols, tiny.rows)
	}
}

func TestTermSurfaceDrawBox(t *testing.T) {
	tests := []struct {
		name string
		rect geom.Rect
		want []string
	}{
		{
			name: "frame",
			rect: geom.Rect{MinX: 0, MinY: 0, MaxX: 40, MaxY: 48},
			want: []string{"┌───┐     ", "│   │     ", "└───┘     ", "          "},
		},
		{
			name: "single row",
			rect: geom.Rect{MinX: 8, MinY: 16, MaxX: 32, MaxY: 32},
			want: []string{"          ", " [ ]      ", "          ", "          "},
		},
		{
			name: "single column",
			rect: geom.Rect{MinX: 0, MinY: 0, MaxX: 8, MaxY: 32},
			want: []string{"▮         ", "▮         ", "          ", "          "},
		},
		{
			name: "clipped at the right edge",
			rect: geom.Rect{MinX: 56, MinY: 16, MaxX: 200, MaxY: 100},
			want: []string{"          ", "       ┌──", "       │  ", "       │  "},
		},
		{
			name: "off screen",
			rect: geom.Rect{MinX: -200, MinY: -200, MaxX: -100, MaxY: -100},
			want: []string{"          ", "          ", "          ", "          "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTermSurface(80, 64)
			s.Clear(colorful.Color{})
			s.DrawBox(tt.rect, 4, render.BoxPaint{})
			got := plainRows(s)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTermSurfaceTransform(t *testing.T) {
	s := newTermSurface(80, 64)
	s.Clear(colorful.Color{})
	s.SetTransform(geom.Transform{Scale: 2, TX: 16, TY: 0})
	// World (0,0)-(8,8) lands on screen (16,0)-(32,16): cells 2..3 of row 0.
	s.DrawBox(geom.Rect{MinX: 0, MinY: 0, MaxX: 8, MaxY: 8}, 0, render.BoxPaint{})
	if got := plainRows(s)[0]; got != "  []      " {
		t.Errorf("row 0 = %q", got)
	}
}

func TestTermSurfaceStrokePath(t *testing.T) {
	s := newTermSurface(80, 64)
	s.Clear(colorful.Color{})
	s.DrawBox(geom.Rect{MinX: 32, MinY: 16, MaxX: 48, MaxY: 32}, 0, render.BoxPaint{})
	s.StrokePath([]geom.Point{geom.Pt(4, 24), geom.Pt(76, 24)}, render.Stroke{})
	s.StrokePath([]geom.Point{geom.Pt(4, 40), geom.Pt(4, 60)}, render.Stroke{})

	rows := plainRows(s)
	if rows[1] != "────[]────" {
		t.Errorf("horizontal edge = %q, boxes must not be overwritten", rows[1])
	}
	if rows[2][0:len("│")] != "│" || []rune(rows[3])[0] != '│' {
		t.Errorf("vertical edge rows = %q, %q", rows[2], rows[3])
	}
}

func TestTermSurfaceStrokeSkipsHugeSegments(t *testing.T) {
	s := newTermSurface(80, 64)
	s.Clear(colorful.Color{})
	s.StrokePath([]geom.Point{geom.Pt(-1e6, 24), geom.Pt(1e6, 24)}, render.Stroke{})
	if strings.ContainsRune(s.Plain(), '─') {
		t.Error("huge segment was drawn")
	}
}

func TestTermSurfaceDrawText(t *testing.T) {
	tests := []struct {
		name  string
		size  float64
		scale float64
		want  string
	}{
		{"readable", 12, 1, "    ab    "},
		{"too small", 6, 1, "          "},
		{"scaled up", 6, 2, "    ab    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTermSurface(80, 64)
			s.Clear(colorful.Color{})
			s.SetTransform(geom.ScaleBy(tt.scale))
			s.DrawText("ab", 40/tt.scale, 8/tt.scale, render.TextPaint{Size: tt.size})
			if got := plainRows(s)[0]; got != tt.want {
				t.Errorf("row 0 = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTermSurfaceStringKeepsText(t *testing.T) {
	s := newTermSurface(80, 16)
	s.Clear(colorful.Color{})
	s.DrawBox(geom.Rect{MinX: 0, MinY: 0, MaxX: 80, MaxY: 16}, 0, render.BoxPaint{
		Fill:   colorful.Color{R: 1, G: 1, B: 1},
		Stroke: colorful.Color{},
	})
	s.DrawText("Program", 40, 8, render.TextPaint{Size: 12})
	if !strings.Contains(s.Plain(), "Program") {
		t.Errorf("Plain() = %q", s.Plain())
	}
	if !strings.Contains(s.String(), "Program") {
		t.Errorf("String() lost the label: %q", s.String())
	}
}
