package layout

import (
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/tree"
)

// Geometry is the computed footprint and position of one node. X and Y are
// the center of the node's box in world coordinates.
type Geometry struct {
	SubtreeW float64 `json:"subtree_w"`
	SubtreeH float64 `json:"subtree_h"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// entry is one slot of the arena. Entries are stored in breadth-first order,
// so a node's children occupy the contiguous range [first, first+count) and
// always have larger indices than their parent.
type entry struct {
	node     *tree.Node
	parent   int
	first    int
	count    int
	depth    int
	strategy Strategy
}

// Result is a laid-out tree: the arena of nodes, a parallel geometry table
// and the bounds of all boxes. Renderers and viewers only read it; Shift is
// the one mutator.
type Result struct {
	opts    Options
	entries []entry
	geo     []Geometry
	ids     []int // ids[i] == i; Children returns sub-slices of it
	bounds  geom.Rect
}

// Compute lays out the tree rooted at root.
//
// Every node gets a strategy from [Options.Strategy], recorded once in the
// arena. A bottom-up pass then computes each subtree footprint from its
// children, and a top-down pass assigns box centers. Finally the tree is
// shifted so the bounds start at opts.Margin on both axes.
//
// A nil root yields an empty Result. Zero-valued sizes in opts are replaced
// by their defaults; opts is otherwise assumed valid (see Options.Validate).
func Compute(root *tree.Node, opts Options) *Result {
	opts.SetDefaults()
	r := &Result{opts: opts}
	if root == nil {
		return r
	}

	r.buildArena(root)
	r.computeSize()
	r.position()
	r.bounds = r.ComputeBounds()
	r.Shift(opts.Margin-r.bounds.MinX, opts.Margin-r.bounds.MinY)
	return r
}

func (r *Result) buildArena(root *tree.Node) {
	r.entries = append(r.entries, entry{node: root, parent: -1})
	for i := 0; i < len(r.entries); i++ {
		n := r.entries[i].node
		r.entries[i].first = len(r.entries)
		for _, c := range n.Children {
			if c == nil {
				continue
			}
			r.entries = append(r.entries, entry{node: c, parent: i, depth: r.entries[i].depth + 1})
		}
		r.entries[i].count = len(r.entries) - r.entries[i].first
		r.entries[i].strategy = r.opts.Strategy(r.entries[i].count)
	}
	r.geo = make([]Geometry, len(r.entries))
	r.ids = make([]int, len(r.entries))
	for i := range r.ids {
		r.ids[i] = i
	}
}

// computeSize fills SubtreeW/SubtreeH. Children always follow their parent
// in the arena, so a reverse scan is a valid post-order.
func (r *Result) computeSize() {
	o := r.opts
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		g := &r.geo[i]
		kids := r.geo[e.first : e.first+e.count]

		switch e.strategy {
		case Leaf:
			g.SubtreeW, g.SubtreeH = o.BoxWidth, o.BoxHeight

		case Row:
			var sumW, maxH float64
			for _, k := range kids {
				sumW += k.SubtreeW
				maxH = max(maxH, k.SubtreeH)
			}
			sumW += float64(len(kids)-1) * o.HGap
			g.SubtreeW = max(o.BoxWidth, sumW)
			g.SubtreeH = o.BoxHeight + o.LevelGap + maxH

		case Column:
			var maxW, sumH float64
			for _, k := range kids {
				maxW = max(maxW, k.SubtreeW)
				sumH += k.SubtreeH
			}
			sumH += float64(len(kids)-1) * o.VGap
			g.SubtreeW = max(o.BoxWidth, o.Indent+maxW)
			g.SubtreeH = o.BoxHeight + o.VGap + sumH
		}
	}
}

// position assigns box centers top-down. origins holds the top-left corner
// of each node's footprint; a parent's origin is always set before its
// children are visited.
func (r *Result) position() {
	o := r.opts
	origins := make([]geom.Point, len(r.entries))
	for i, e := range r.entries {
		org := origins[i]
		r.geo[i].X = org.X + o.BoxWidth/2
		r.geo[i].Y = org.Y + o.BoxHeight/2

		switch e.strategy {
		case Row:
			x, y := org.X, org.Y+o.BoxHeight+o.LevelGap
			for c := e.first; c < e.first+e.count; c++ {
				origins[c] = geom.Pt(x, y)
				x += r.geo[c].SubtreeW + o.HGap
			}
		case Column:
			x, y := org.X+o.Indent, org.Y+o.BoxHeight+o.VGap
			for c := e.first; c < e.first+e.count; c++ {
				origins[c] = geom.Pt(x, y)
				y += r.geo[c].SubtreeH + o.VGap
			}
		}
	}
}

// ComputeBounds returns the smallest rectangle enclosing every node box.
// The zero Rect is returned for an empty result.
func (r *Result) ComputeBounds() geom.Rect {
	if len(r.entries) == 0 {
		return geom.Rect{}
	}
	b := r.Box(0)
	for i := 1; i < len(r.entries); i++ {
		b = b.Union(r.Box(i))
	}
	return b
}

// Shift translates every node and the bounds by (dx, dy).
func (r *Result) Shift(dx, dy float64) {
	for i := range r.geo {
		r.geo[i].X += dx
		r.geo[i].Y += dy
	}
	r.bounds = r.bounds.Translate(dx, dy)
}

// =============================================================================
// Accessors
// =============================================================================

// Len returns the number of laid-out nodes.
func (r *Result) Len() int { return len(r.entries) }

// Empty reports whether there is nothing to draw.
func (r *Result) Empty() bool { return r == nil || len(r.entries) == 0 }

// Root returns the root node, or nil for an empty result.
func (r *Result) Root() *tree.Node {
	if r.Empty() {
		return nil
	}
	return r.entries[0].node
}

// Node returns the tree node at arena index i.
func (r *Result) Node(i int) *tree.Node { return r.entries[i].node }

// Geometry returns the geometry of node i.
func (r *Result) Geometry(i int) Geometry { return r.geo[i] }

// Box returns the world-space box of node i.
func (r *Result) Box(i int) geom.Rect {
	g := r.geo[i]
	return geom.RectFromCenter(g.X, g.Y, r.opts.BoxWidth, r.opts.BoxHeight)
}

// Children returns the arena indices of node i's children in input order.
// The returned slice is shared and must not be modified.
func (r *Result) Children(i int) []int {
	e := r.entries[i]
	return r.ids[e.first : e.first+e.count]
}

// Parent returns the arena index of node i's parent, or -1 for the root.
func (r *Result) Parent(i int) int { return r.entries[i].parent }

// Depth returns the level of node i below the root.
func (r *Result) Depth(i int) int { return r.entries[i].depth }

// Strategy returns the arrangement chosen for node i's children.
func (r *Result) Strategy(i int) Strategy { return r.entries[i].strategy }

// Bounds returns the rectangle enclosing every box.
func (r *Result) Bounds() geom.Rect { return r.bounds }

// Options returns the options the layout was computed with.
func (r *Result) Options() Options { return r.opts }

// Hit returns the node whose box contains the world point p.
func (r *Result) Hit(p geom.Point) (int, bool) {
	if r.Empty() || !r.bounds.Contains(p) {
		return -1, false
	}
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.Box(i).Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// Visible returns the indices of nodes whose boxes intersect the world
// rectangle view, in arena order.
func (r *Result) Visible(view geom.Rect) []int {
	if r.Empty() || !r.bounds.Intersects(view) {
		return nil
	}
	var out []int
	for i := range r.entries {
		if r.Box(i).Intersects(view) {
			out = append(out, i)
		}
	}
	return out
}
