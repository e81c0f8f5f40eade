package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/tree"
)

func leaves(names ...string) []*tree.Node {
	out := make([]*tree.Node, len(names))
	for i, n := range names {
		out[i] = tree.Leaf(n, "")
	}
	return out
}

func TestComputeSingleNode(t *testing.T) {
	r := Compute(tree.Leaf("Program", ""), DefaultOptions())

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	g := r.Geometry(0)
	if g.X != 90 || g.Y != 42 {
		t.Errorf("center = (%v, %v), want (90, 42)", g.X, g.Y)
	}
	if g.SubtreeW != DefaultBoxWidth || g.SubtreeH != DefaultBoxHeight {
		t.Errorf("subtree = %vx%v, want box size", g.SubtreeW, g.SubtreeH)
	}
	if r.Strategy(0) != Leaf {
		t.Errorf("Strategy = %v, want leaf", r.Strategy(0))
	}
	want := geom.Rect{MinX: 20, MinY: 20, MaxX: 160, MaxY: 64}
	if r.Bounds() != want {
		t.Errorf("Bounds() = %+v, want %+v", r.Bounds(), want)
	}
}

func TestComputeNil(t *testing.T) {
	r := Compute(nil, DefaultOptions())
	if !r.Empty() || r.Len() != 0 || r.Root() != nil {
		t.Error("nil tree should give an empty result")
	}
	if _, ok := r.Hit(geom.Pt(0, 0)); ok {
		t.Error("Hit on empty result should miss")
	}
	if got := r.ComputeBounds(); got != (geom.Rect{}) {
		t.Errorf("ComputeBounds() = %+v, want zero", got)
	}
}

func TestComputeRowTwoChildren(t *testing.T) {
	root := tree.New("Program", "", leaves("A", "B")...)
	r := Compute(root, DefaultOptions())

	if r.Strategy(0) != Row {
		t.Fatalf("Strategy = %v, want row", r.Strategy(0))
	}
	tests := []struct {
		idx  int
		x, y float64
	}{
		{0, 90, 42},
		{1, 90, 134},
		{2, 254, 134},
	}
	for _, tt := range tests {
		g := r.Geometry(tt.idx)
		if g.X != tt.x || g.Y != tt.y {
			t.Errorf("node %d center = (%v, %v), want (%v, %v)", tt.idx, g.X, g.Y, tt.x, tt.y)
		}
	}
	if g := r.Geometry(0); g.SubtreeW != 304 || g.SubtreeH != 136 {
		t.Errorf("root subtree = %vx%v, want 304x136", g.SubtreeW, g.SubtreeH)
	}
}

func TestComputeColumnFourChildren(t *testing.T) {
	root := tree.New("Program", "", leaves("A", "B", "C", "D")...)
	r := Compute(root, DefaultOptions())

	if r.Strategy(0) != Column {
		t.Fatalf("Strategy = %v, want column", r.Strategy(0))
	}
	kids := r.Children(0)
	if len(kids) != 4 {
		t.Fatalf("Children = %v", kids)
	}
	wantY := []float64{100, 158, 216, 274}
	for i, c := range kids {
		g := r.Geometry(c)
		if g.X != 270 {
			t.Errorf("child %d x = %v, want 270", i, g.X)
		}
		if g.Y != wantY[i] {
			t.Errorf("child %d y = %v, want %v", i, g.Y, wantY[i])
		}
		if r.Node(c).Type != string(rune('A'+i)) {
			t.Errorf("child %d = %q, order not preserved", i, r.Node(c).Type)
		}
	}
	if g := r.Geometry(0); g.SubtreeW != 320 || g.SubtreeH != 276 {
		t.Errorf("root subtree = %vx%v, want 320x276", g.SubtreeW, g.SubtreeH)
	}
}

// randomTree builds a tree with fan-outs between 0 and maxKids.
func randomTree(rng *rand.Rand, depth, maxKids int) *tree.Node {
	n := tree.Leaf(fmt.Sprintf("N%d", rng.Intn(1000)), "")
	if depth == 0 {
		return n
	}
	k := rng.Intn(maxKids + 1)
	for i := 0; i < k; i++ {
		n.Children = append(n.Children, randomTree(rng, depth-1, maxKids))
	}
	return n
}

func TestComputeArrangementProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		r := Compute(randomTree(rng, 4, 6), DefaultOptions())
		for i := 0; i < r.Len(); i++ {
			kids := r.Children(i)
			switch {
			case len(kids) == 0:
				if r.Strategy(i) != Leaf {
					t.Fatalf("node %d: childless node got %v", i, r.Strategy(i))
				}
			case len(kids) <= DefaultThreshold:
				if r.Strategy(i) != Row {
					t.Fatalf("node %d: %d children got %v", i, len(kids), r.Strategy(i))
				}
				for k := 1; k < len(kids); k++ {
					a, b := r.Geometry(kids[k-1]), r.Geometry(kids[k])
					if !(b.X > a.X) || b.Y != a.Y {
						t.Fatalf("node %d: row children %d,%d at (%v,%v) (%v,%v)", i, k-1, k, a.X, a.Y, b.X, b.Y)
					}
				}
			default:
				if r.Strategy(i) != Column {
					t.Fatalf("node %d: %d children got %v", i, len(kids), r.Strategy(i))
				}
				for k := 1; k < len(kids); k++ {
					a, b := r.Geometry(kids[k-1]), r.Geometry(kids[k])
					if !(b.Y > a.Y) || b.X != a.X {
						t.Fatalf("node %d: column children %d,%d at (%v,%v) (%v,%v)", i, k-1, k, a.X, a.Y, b.X, b.Y)
					}
				}
			}
		}
	}
}

func TestComputeBoxesDoNotOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 10; trial++ {
		r := Compute(randomTree(rng, 4, 6), DefaultOptions())
		for i := 0; i < r.Len(); i++ {
			for j := i + 1; j < r.Len(); j++ {
				a, b := r.Box(i), r.Box(j)
				if a.MinX < b.MaxX && b.MinX < a.MaxX && a.MinY < b.MaxY && b.MinY < a.MaxY {
					t.Fatalf("trial %d: boxes %d and %d overlap: %+v %+v", trial, i, j, a, b)
				}
			}
		}
	}
}

func TestBoundsTight(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	opts := DefaultOptions()
	r := Compute(randomTree(rng, 5, 5), opts)
	b := r.Bounds()

	var touchMinX, touchMaxX, touchMinY, touchMaxY bool
	for i := 0; i < r.Len(); i++ {
		g := r.Geometry(i)
		hw, hh := opts.BoxWidth/2, opts.BoxHeight/2
		if b.MinX > g.X-hw || b.MaxX < g.X+hw || b.MinY > g.Y-hh || b.MaxY < g.Y+hh {
			t.Fatalf("node %d box escapes bounds %+v", i, b)
		}
		touchMinX = touchMinX || g.X-hw == b.MinX
		touchMaxX = touchMaxX || g.X+hw == b.MaxX
		touchMinY = touchMinY || g.Y-hh == b.MinY
		touchMaxY = touchMaxY || g.Y+hh == b.MaxY
	}
	if !(touchMinX && touchMaxX && touchMinY && touchMaxY) {
		t.Error("bounds are not tight on every side")
	}
	if b.MinX != opts.Margin || b.MinY != opts.Margin {
		t.Errorf("bounds start at (%v, %v), want margin %v", b.MinX, b.MinY, opts.Margin)
	}
	if r.ComputeBounds() != b {
		t.Error("ComputeBounds disagrees with Bounds")
	}
}

func TestComputeDeterministic(t *testing.T) {
	build := func() *tree.Node {
		return randomTree(rand.New(rand.NewSource(42)), 5, 5)
	}
	a := Compute(build(), DefaultOptions())
	b := Compute(build(), DefaultOptions())
	if a.Len() != b.Len() {
		t.Fatalf("Len differs: %d vs %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.Geometry(i) != b.Geometry(i) {
			t.Fatalf("node %d: %+v vs %+v", i, a.Geometry(i), b.Geometry(i))
		}
	}
}

func TestComputeDoesNotMutateTree(t *testing.T) {
	root := tree.New("Program", "", leaves("A", "B", "C", "D", "E")...)
	before := tree.OutlineString(root)
	Compute(root, DefaultOptions())
	if after := tree.OutlineString(root); after != before {
		t.Errorf("tree changed:\n%s\n---\n%s", before, after)
	}
}

func TestThresholdConfigurable(t *testing.T) {
	root := tree.New("Program", "", leaves("A", "B", "C", "D")...)
	tests := []struct {
		threshold int
		want      Strategy
	}{
		{0, Column},
		{3, Column},
		{4, Row},
		{10, Row},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.threshold), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Threshold = tt.threshold
			if got := Compute(root, opts).Strategy(0); got != tt.want {
				t.Errorf("Strategy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDeepChain(t *testing.T) {
	const depth = 50000
	root := tree.Leaf("n", "")
	cur := root
	for i := 0; i < depth; i++ {
		next := tree.Leaf("n", "")
		cur.Children = []*tree.Node{next}
		cur = next
	}

	r := Compute(root, DefaultOptions())
	if r.Len() != depth+1 {
		t.Fatalf("Len() = %d, want %d", r.Len(), depth+1)
	}
	if got := r.Depth(r.Len() - 1); got != depth {
		t.Errorf("Depth(last) = %d, want %d", got, depth)
	}
	last := r.Geometry(r.Len() - 1)
	if last.X != r.Geometry(0).X {
		t.Errorf("single-child chain should stay in one column of boxes")
	}
	if last.Y <= r.Geometry(0).Y {
		t.Errorf("last node not below root")
	}
}

func TestParentAndChildren(t *testing.T) {
	root := tree.New("R", "",
		tree.New("A", "", leaves("A1", "A2")...),
		tree.Leaf("B", ""),
	)
	r := Compute(root, DefaultOptions())

	for i := 1; i < r.Len(); i++ {
		p := r.Parent(i)
		found := false
		for _, c := range r.Children(p) {
			if c == i {
				found = true
			}
		}
		if !found {
			t.Errorf("node %d not among children of its parent %d", i, p)
		}
		if r.Depth(i) != r.Depth(p)+1 {
			t.Errorf("node %d depth %d, parent depth %d", i, r.Depth(i), r.Depth(p))
		}
	}
	if r.Parent(0) != -1 {
		t.Errorf("root parent = %d", r.Parent(0))
	}
}

func TestHit(t *testing.T) {
	r := Compute(tree.New("Program", "", leaves("A", "B")...), DefaultOptions())

	tests := []struct {
		name string
		p    geom.Point
		want string
		ok   bool
	}{
		{"root center", geom.Pt(90, 42), "Program", true},
		{"second child", geom.Pt(254, 134), "B", true},
		{"gap between rows", geom.Pt(90, 88), "", false},
		{"outside", geom.Pt(-5, -5), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, ok := r.Hit(tt.p)
			if ok != tt.ok {
				t.Fatalf("Hit ok = %v, want %v", ok, tt.ok)
			}
			if ok && r.Node(i).Type != tt.want {
				t.Errorf("Hit = %q, want %q", r.Node(i).Type, tt.want)
			}
		})
	}
}

func TestVisible(t *testing.T) {
	r := Compute(tree.New("Program", "", leaves("A", "B")...), DefaultOptions())
	got := r.Visible(geom.Rect{MinX: 200, MinY: 100, MaxX: 400, MaxY: 200})
	if len(got) != 1 || r.Node(got[0]).Type != "B" {
		t.Errorf("Visible = %v, want only B", got)
	}
	if all := r.Visible(r.Bounds()); len(all) != r.Len() {
		t.Errorf("Visible(bounds) = %d nodes, want %d", len(all), r.Len())
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero threshold", func(o *Options) { o.Threshold = 0 }, false},
		{"negative threshold", func(o *Options) { o.Threshold = -1 }, true},
		{"zero box", func(o *Options) { o.BoxWidth = 0 }, true},
		{"negative gap", func(o *Options) { o.HGap = -1 }, true},
		{"indent into gutter", func(o *Options) { o.Indent = o.BoxWidth }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidLayout) {
				t.Errorf("code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if o.Threshold != 0 {
		t.Errorf("SetDefaults changed Threshold to %d", o.Threshold)
	}
}

func TestStrategyString(t *testing.T) {
	for _, s := range []Strategy{Leaf, Row, Column} {
		got, ok := ParseStrategy(s.String())
		if !ok || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseStrategy("diagonal"); ok {
		t.Error("ParseStrategy accepted an unknown name")
	}
}
