package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/render/nodelink"
	"github.com/matzehuels/astlens/pkg/render/raster"
	"github.com/matzehuels/astlens/pkg/render/svg"
	"github.com/matzehuels/astlens/pkg/tree"
)

// RenderFromLayout renders res in every requested format without caching.
func RenderFromLayout(ctx context.Context, res *layout.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svgData []byte // shared by svg and pdf

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			if svgData == nil {
				svgData = renderSVG(res, opts)
			}
			data = svgData
		case FormatPNG:
			data, err = renderPNG(res, opts)
		case FormatPDF:
			if svgData == nil {
				svgData = renderSVG(res, opts)
			}
			data, err = render.ToPDF(ctx, svgData)
		case FormatDOT:
			dot := nodelink.ToDOT(res.Root(), nodelink.Options{Style: opts.Style, Detailed: opts.Detailed})
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatJSON:
			data, err = layout.MarshalDocument(res)
		case FormatOutline:
			data = []byte(tree.OutlineString(res.Root()))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderSVG(res *layout.Result, opts Options) []byte {
	r := opts.Renderer()
	if !opts.IsFrame() {
		return svg.Document(res, r)
	}
	w, h := deviceSize(opts)
	return svg.Frame(res, FrameViewport(res, opts), r, w, h)
}

func renderPNG(res *layout.Result, opts Options) ([]byte, error) {
	r := opts.Renderer()
	if !opts.IsFrame() {
		return raster.Document(res, r, opts.PixelRatio)
	}
	w, h := deviceSize(opts)
	return raster.Frame(res, FrameViewport(res, opts), r, w, h)
}

func deviceSize(opts Options) (int, int) {
	return int(math.Ceil(opts.Width * opts.PixelRatio)), int(math.Ceil(opts.Height * opts.PixelRatio))
}
