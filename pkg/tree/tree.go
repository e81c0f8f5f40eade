package tree

// Node is a labeled vertex with ordered children.
//
// Nodes are treated as immutable once built: layout and rendering never
// write to them. Geometry lives in a parallel table owned by the layout
// package, keyed by arena index.
type Node struct {
	Type     string  `json:"type"`
	Label    string  `json:"label,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Leaf returns a node without children.
func Leaf(typ, label string) *Node {
	return &Node{Type: typ, Label: label}
}

// New returns a node with the given children.
func New(typ, label string, children ...*Node) *Node {
	return &Node{Type: typ, Label: label, Children: children}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Token is one lexical token as produced by the analysis service.
type Token struct {
	Type   string `json:"type"`
	Lexeme string `json:"lexeme"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Count returns the number of nodes reachable from root, root included.
// A nil root counts as zero.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// Depth returns the number of levels below root; a single node has depth 0
// and a nil root has depth -1.
func Depth(root *Node) int {
	deepest := -1
	Walk(root, func(_ *Node, d int) bool {
		deepest = max(deepest, d)
		return true
	})
	return deepest
}

// Walk visits every node reachable from root in pre-order, passing the
// depth of each node (root is 0). Returning false from fn skips the
// node's children. Traversal uses an explicit stack, so arbitrarily deep
// trees are safe.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	if root == nil {
		return
	}
	type frame struct {
		n     *Node
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n == nil || !fn(f.n, f.depth) {
			continue
		}
		for i := len(f.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.n.Children[i], f.depth + 1})
		}
	}
}
