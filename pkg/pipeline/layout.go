package pipeline

import (
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/tree"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// =============================================================================
// Build and Layout
// =============================================================================

// Build merges the analysis document into one tree. Nil means the document
// held nothing to draw.
func Build(a tree.Analysis) *tree.Node {
	return a.Tree()
}

// GenerateLayout computes the layout for root without caching.
func GenerateLayout(root *tree.Node, opts Options) (*layout.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	return layout.Compute(root, opts.Layout), nil
}

// FrameViewport returns the viewport used for frame output: opts.Viewport
// when set, otherwise one fitted to the whole tree.
func FrameViewport(res *layout.Result, opts Options) *viewport.Viewport {
	opts.SetRenderDefaults()
	vp := viewport.New(viewport.WithScaleRange(opts.MinScale, opts.MaxScale))
	switch {
	case opts.Viewport != nil:
		vp.SetState(*opts.Viewport)
	case !res.Empty():
		vp.FitToBounds(res.Bounds(), geom.Size{W: opts.Width, H: opts.Height}, opts.FitMargin)
	}
	return vp
}
