package tree

import (
	"bufio"
	"io"
	"strings"
)

// Outline writes an indented text rendering of the tree, two spaces per
// level, one node per line as "Type label". Nothing is written for a nil
// root.
func Outline(root *Node, w io.Writer) error {
	bw := bufio.NewWriter(w)
	Walk(root, func(n *Node, depth int) bool {
		bw.WriteString(strings.Repeat("  ", depth))
		bw.WriteString(n.Type)
		if n.Label != "" && n.Label != n.Type {
			bw.WriteByte(' ')
			bw.WriteString(n.Label)
		}
		bw.WriteByte('\n')
		return true
	})
	return bw.Flush()
}

// OutlineString is Outline into a string.
func OutlineString(root *Node) string {
	var sb strings.Builder
	_ = Outline(root, &sb)
	return sb.String()
}
