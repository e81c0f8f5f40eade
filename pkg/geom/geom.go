// Package geom provides the small set of 2D primitives shared by layout,
// viewport and rendering: points, sizes, axis-aligned rectangles and the
// uniform-scale affine transform that maps world coordinates to the screen.
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Center returns the midpoint of a size anchored at the origin.
func (s Size) Center() Point { return Point{s.W / 2, s.H / 2} }

// Rect is an axis-aligned rectangle given by its minimum and maximum corners.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectFromCenter builds a rectangle of size w×h centered on (cx, cy).
func RectFromCenter(cx, cy, w, h float64) Rect {
	return Rect{MinX: cx - w/2, MinY: cy - h/2, MaxX: cx + w/2, MaxY: cy + h/2}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Intersects reports whether r and o overlap, edges included.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Transform is a uniform scale followed by a translation:
//
//	screen = world*Scale + (TX, TY)
//
// It is the only kind of transform the viewer ever applies, so it is kept
// as three numbers instead of a general 2×3 matrix.
type Transform struct {
	Scale  float64
	TX, TY float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{Scale: 1}

// Apply maps a world point to the transformed space.
func (t Transform) Apply(p Point) Point {
	return Point{p.X*t.Scale + t.TX, p.Y*t.Scale + t.TY}
}

// Invert maps a transformed point back to world space. The result is
// undefined for a zero scale; callers keep scale strictly positive.
func (t Transform) Invert(p Point) Point {
	return Point{(p.X - t.TX) / t.Scale, (p.Y - t.TY) / t.Scale}
}

// ApplyRect maps both corners of r.
func (t Transform) ApplyRect(r Rect) Rect {
	a := t.Apply(Point{r.MinX, r.MinY})
	b := t.Apply(Point{r.MaxX, r.MaxY})
	return Rect{MinX: a.X, MinY: a.Y, MaxX: b.X, MaxY: b.Y}
}

// Then returns the transform that applies t first and then u.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		Scale: t.Scale * u.Scale,
		TX:    t.TX*u.Scale + u.TX,
		TY:    t.TY*u.Scale + u.TY,
	}
}

// ScaleBy returns a pure scaling transform.
func ScaleBy(s float64) Transform { return Transform{Scale: s} }
