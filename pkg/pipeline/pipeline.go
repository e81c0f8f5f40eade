// Package pipeline provides the build → layout → render pipeline shared by
// the CLI and the HTTP viewer.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: merge the analysis document's AST and tokens into one tree
//  2. Layout: compute row/column geometry for the tree
//  3. Render: generate output in the requested formats
//
// Layouts and artifacts are cached by content hash, so re-rendering an
// unchanged analysis with unchanged options costs two cache reads.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg", "png"}}
//	result, err := runner.Execute(ctx, analysis, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	res, err := runner.ComputeLayout(ctx, root, opts)
//	artifacts, err := runner.Render(ctx, res, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/astlens/pkg/cache"
	"github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/tree"
	"github.com/matzehuels/astlens/pkg/viewer"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultPixelRatio is the default device pixel ratio of raster output.
	DefaultPixelRatio = 1.0

	// DefaultFitMargin is the total screen margin left around a fitted tree.
	DefaultFitMargin = viewer.DefaultFitMargin
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatDOT     = "dot"
	FormatJSON    = "json"
	FormatOutline = "outline"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON, FormatOutline}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch format {
	case FormatDOT:
		return "dot.svg"
	case FormatJSON:
		return "layout.json"
	case FormatOutline:
		return "txt"
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout layout.Options `json:"layout"`

	// Render options
	Formats []string     `json:"formats,omitempty"`
	Style   render.Style `json:"style"`
	// Width and Height select frame output: the tree is drawn through a
	// viewport into a Width×Height canvas. When either is zero the whole
	// tree is drawn at scale 1 on a canvas sized to fit it.
	Width      float64         `json:"width,omitempty"`
	Height     float64         `json:"height,omitempty"`
	PixelRatio float64         `json:"pixel_ratio,omitempty"`
	FitMargin  float64         `json:"fit_margin,omitempty"`
	MinScale   float64         `json:"min_scale,omitempty"`
	MaxScale   float64         `json:"max_scale,omitempty"`
	Viewport   *viewport.State `json:"viewport,omitempty"` // frame pan/zoom; nil fits the tree
	Detailed   bool            `json:"detailed,omitempty"` // child counts in dot labels
	Refresh    bool            `json:"refresh,omitempty"`  // bypass cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the merged tree. Nil when the analysis was empty.
	Tree *tree.Node

	// TreeHash is the content hash of the tree.
	TreeHash string

	// Layout is the computed or cached layout.
	Layout *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Depth      int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return ValidateFormats([]string{format})
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	return errors.ValidateFormats(formats, ValidFormats)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the options for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation. A zero
// Layout means the default layout; otherwise only zero sizes are filled.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	o.Layout.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.Layout.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Style.SetDefaults()
	if o.PixelRatio == 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	if o.FitMargin == 0 {
		o.FitMargin = DefaultFitMargin
	}
	if o.MinScale == 0 {
		o.MinScale = viewport.DefaultMinScale
	}
	if o.MaxScale == 0 {
		o.MaxScale = viewport.DefaultMaxScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.Style.Validate(); err != nil {
		return err
	}
	if o.MinScale <= 0 || o.MaxScale < o.MinScale {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid scale range [%g, %g]", o.MinScale, o.MaxScale)
	}
	if o.IsFrame() {
		return errors.ValidateSurfaceSize(o.Width, o.Height, o.PixelRatio)
	}
	if o.PixelRatio <= 0 || o.PixelRatio > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "pixel ratio must be in (0, 8], got %g", o.PixelRatio)
	}
	return nil
}

// IsFrame reports whether output is a fixed-size frame rather than the
// whole document.
func (o *Options) IsFrame() bool {
	return o.Width > 0 && o.Height > 0
}

// Renderer returns a renderer for the options' style and pixel ratio.
func (o *Options) Renderer() render.Renderer {
	return render.Renderer{Style: o.Style, PixelRatio: o.PixelRatio}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Threshold: o.Layout.Threshold,
		Options:   cache.HashJSON(o.Layout),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		PixelRatio: o.PixelRatio,
		Style:      cache.HashJSON(o.Style),
	}
	if format == FormatDOT {
		k.Viewport = fmt.Sprintf("detailed=%t", o.Detailed)
	}
	if o.IsFrame() {
		k.Width, k.Height = deviceSize(*o)
		k.Viewport += fmt.Sprintf("size=%gx%g margin=%g scale=[%g,%g]", o.Width, o.Height, o.FitMargin, o.MinScale, o.MaxScale)
		if o.Viewport != nil {
			k.Viewport += fmt.Sprintf(" pan=(%g,%g) scale=%g", o.Viewport.PanX, o.Viewport.PanY, o.Viewport.Scale)
		}
	}
	return k
}
