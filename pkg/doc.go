// Package pkg provides the core libraries for astlens syntax tree diagrams.
//
// # Overview
//
// astlens merges a parser's syntax tree and its lexer's token stream into
// one tree and draws it: nodes with few children as a row below their
// parent, nodes with many children as an indented column. The pkg
// directory is organized into four areas:
//
//  1. [tree], [layout] - Domain logic (merging, geometry)
//  2. [viewport], [interact], [viewer] - Interactive viewing
//  3. [render] - Drawing onto SVG, raster and Graphviz outputs
//  4. [pipeline], [cache] - Orchestration (build → layout → render) with caching
//
// # Architecture
//
// The typical data flow through astlens:
//
//	Analysis document {"ast": ..., "tokens": [...]}
//	         ↓
//	    [tree] package (merge AST and tokens)
//	         ↓
//	    [layout] package (row/column geometry, hit testing)
//	         ↓
//	    [render] package (draw a frame through a viewport)
//	         ↓
//	SVG/PNG/PDF/JSON output, terminal explorer, browser viewer
//
// # Quick Start
//
// Render the whole tree of an analysis file:
//
//	import (
//	    "github.com/matzehuels/astlens/pkg/layout"
//	    "github.com/matzehuels/astlens/pkg/render"
//	    "github.com/matzehuels/astlens/pkg/render/svg"
//	    "github.com/matzehuels/astlens/pkg/tree"
//	)
//
//	a, _ := tree.ReadAnalysisFile("analysis.json")
//	res := layout.Compute(a.Tree(), layout.DefaultOptions())
//	data := svg.Document(res, render.NewRenderer())
//
// Or drive an interactive view:
//
//	v, _ := viewer.New(func(w, h int) (render.Surface, error) {
//	    return svg.New(w, h), nil
//	})
//	v.SetTree(a.Tree())
//	v.Handle(interact.Event{Kind: interact.Wheel, X: 400, Y: 300, DeltaY: -1})
//
// # Pipeline
//
// The [pipeline] package runs build → layout → render with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, a, pipeline.Options{Formats: []string{"svg", "png"}})
//
// # Observability
//
// The [observability] package exposes hooks for pipeline stages, cache
// traffic, HTTP requests and viewer frames.
//
// [tree]: github.com/matzehuels/astlens/pkg/tree
// [layout]: github.com/matzehuels/astlens/pkg/layout
// [viewport]: github.com/matzehuels/astlens/pkg/viewport
// [interact]: github.com/matzehuels/astlens/pkg/interact
// [viewer]: github.com/matzehuels/astlens/pkg/viewer
// [render]: github.com/matzehuels/astlens/pkg/render
// [pipeline]: github.com/matzehuels/astlens/pkg/pipeline
// [cache]: github.com/matzehuels/astlens/pkg/cache
// [observability]: github.com/matzehuels/astlens/pkg/observability
package pkg
