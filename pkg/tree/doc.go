// Package tree defines the labeled tree that astlens visualizes and the
// builder that produces it from analysis results.
//
// # Model
//
// A [Node] has a primary label (Type), an optional secondary label (Label)
// and ordered children. Nodes are plain content: layout geometry is kept
// elsewhere (see package layout) so a tree can be laid out any number of
// times without being mutated.
//
// # Building
//
// [Build] merges the two halves of an analysis result:
//
//   - an optional syntax-tree fragment, used as-is
//   - a flat token stream, grouped by source line into "Line N" nodes
//
// The result is a single tree rooted at a synthetic "Analysis" node when both
// are present:
//
//	Analysis
//	├── Program ...          (the AST fragment)
//	└── Tokens
//	    ├── Line 1
//	    │   ├── VAR  var 1:1
//	    │   └── ID   x 1:5
//	    └── Line 2
//	        └── ...
//
// Build returns nil for empty input; callers treat nil as "nothing to draw".
//
// # Input
//
// [ReadAnalysisFile] and [ReadAnalysis] decode the JSON document produced by
// the analysis service ({"ast": ..., "tokens": [...]}). [Outline] prints a
// tree as indented text.
package tree
