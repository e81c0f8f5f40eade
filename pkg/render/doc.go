// Package render draws laid-out trees as node-link diagrams.
//
// # Overview
//
// [Renderer.Render] is a stateless draw pass. Given a [layout.Result] and a
// [viewport.Viewport] it:
//
//  1. clears the [Surface] in device pixels
//  2. applies the viewport transform scaled by the device pixel ratio
//  3. draws every edge
//  4. draws every node box on top
//
// Edges follow the strategy of their parent: straight lines below row
// parents, orthogonal gutter paths beside column parents (see [EdgePath]).
// Boxes are rounded rectangles with a bold primary label and, when the
// node's label differs from its type, a smaller secondary line.
//
// # Surfaces
//
// A [Surface] is anything that can stroke polylines, draw rounded boxes and
// centered text under a uniform-scale transform. Implementations:
//
//   - [svg]: SVG documents, one per frame
//   - [raster]: RGBA images via fogleman/gg, encoded as PNG
//   - [Recorder]: headless recording, for hit-testing hosts and tests
//
// # Other Outputs
//
// The [nodelink] subpackage lays the same tree out with Graphviz for
// comparison, and [ToPDF] converts any SVG frame to PDF with rsvg-convert.
//
//	svgBytes := svg.Frame(res, vp, renderer, 800, 600)
//	pdf, err := render.ToPDF(ctx, svgBytes)
//
// [layout.Result]: github.com/matzehuels/astlens/pkg/layout.Result
// [viewport.Viewport]: github.com/matzehuels/astlens/pkg/viewport.Viewport
// [svg]: github.com/matzehuels/astlens/pkg/render/svg
// [raster]: github.com/matzehuels/astlens/pkg/render/raster
// [nodelink]: github.com/matzehuels/astlens/pkg/render/nodelink
package render
