package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/tree"
)

// Options configures the Graphviz rendering.
type Options struct {
	// Style supplies colors and the label limits. Zero fields use defaults.
	Style render.Style
	// Detailed appends each node's child count to its label.
	Detailed bool
}

// ToDOT converts a tree to Graphviz DOT source. Nodes are numbered in
// breadth-first order ("n0" is the root) and ordering=out keeps siblings in
// input order. A nil root yields an empty digraph.
func ToDOT(root *tree.Node, opts Options) string {
	style := opts.Style
	style.SetDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", style.Background)
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", color=%q, fontname=\"Helvetica\", fontsize=%s, fontcolor=%q, margin=\"0.2,0.1\"];\n",
		style.Stroke, strconv.FormatFloat(style.FontSize, 'f', -1, 64), style.Text)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.6];\n", style.Edge)
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	buf.WriteString("\n")

	type item struct {
		n  *tree.Node
		id int
	}
	var edges []string
	queue := []item{{root, 0}}
	next := 1
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		fill := style.Fill
		if it.n.IsLeaf() {
			fill = style.LeafFill
		}
		fmt.Fprintf(&buf, "  n%d [label=%q, fillcolor=%q];\n", it.id, fmtLabel(it.n, style, opts.Detailed), fill)

		for _, c := range it.n.Children {
			if c == nil {
				continue
			}
			edges = append(edges, fmt.Sprintf("  n%d -> n%d;\n", it.id, next))
			queue = append(queue, item{c, next})
			next++
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *tree.Node, style render.Style, detailed bool) string {
	parts := []string{render.Truncate(n.Type, style.MaxLabelChars)}
	if render.HasSecondary(n.Type, n.Label) {
		parts = append(parts, render.Truncate(n.Label, style.MaxSubLabelChars))
	}
	if detailed && !n.IsLeaf() {
		parts = append(parts, fmt.Sprintf("children: %d", len(n.Children)))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
// Returns the SVG bytes ready for display or conversion with [render.ToPDF].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with a
// pixel-sized one starting at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
