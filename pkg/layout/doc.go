// Package layout computes screen-space geometry for a labeled tree.
//
// # Strategies
//
// Each node arranges its children in one of two ways, chosen purely by its
// direct child count against [Options.Threshold] (default 3):
//
//	Row (n <= T)                 Column (n > T)
//
//	[parent]                     [parent]
//	   |                           |__ [child 1]
//	[a]  [b]  [c]                  |__ [child 2]
//	                               |__ ...
//
// Row children sit side by side one level below the parent, separated by
// HGap. Column children are stacked top to bottom and indented right by
// Indent, leaving a gutter for the connecting edges. Leaves never enter an
// arrangement and always measure BoxWidth × BoxHeight.
//
// # Algorithm
//
// [Compute] first flattens the tree into an index-addressed arena in
// breadth-first order, so every node's children form a contiguous index
// range after their parent. Two passes then run over the arena without
// recursion:
//
//  1. computeSize: a reverse scan (post-order) fills each subtree footprint
//     from its children's footprints.
//  2. position: a forward scan places each node's box at the top-left of its
//     footprint and hands origins down to its children.
//
// The per-node strategy is decided once while building the arena and read
// by both passes, so they cannot disagree. Finally the tree is shifted so
// the bounding box starts at Options.Margin.
//
// Geometry lives in a table parallel to the arena; tree nodes are never
// written to. Identical trees and options always give identical geometry.
//
// # Serialization
//
// [Export] and [Import] convert a [Result] to and from a JSON [Document], so
// layouts can be cached and rendered later without the source analysis.
package layout
