// Package nodelink renders the merged tree with Graphviz.
//
// # Overview
//
// The row/column layout in package layout is tuned for exploring a tree
// interactively. This package offers a second opinion: the same tree laid
// out by Graphviz's dot engine, top to bottom, with siblings kept in input
// order. It is exposed as the "dot" output format of the CLI.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Style: render.DefaultStyle()})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
