package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/astlens/pkg/cache"
	"github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/tree"
	"github.com/matzehuels/astlens/pkg/viewport"
)

func sampleAnalysis() tree.Analysis {
	return tree.Analysis{
		AST: tree.New("Program", "",
			tree.New("VarDecl", "x", tree.Leaf("Number", "1")),
			tree.New("Print", "", tree.Leaf("Identifier", "x")),
		),
		Tokens: []tree.Token{
			{Type: "VAR", Lexeme: "var", Line: 1, Column: 1},
			{Type: "ID", Lexeme: "x", Line: 1, Column: 5},
			{Type: "PRINT", Lexeme: "print", Line: 2, Column: 1},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"outline", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
}

func TestExtension(t *testing.T) {
	for format, want := range map[string]string{
		FormatSVG:     "svg",
		FormatPNG:     "png",
		FormatDOT:     "dot.svg",
		FormatJSON:    "layout.json",
		FormatOutline: "txt",
	} {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts.Layout
	firstStyle := opts.Style

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Layout != first {
		t.Error("Layout changed on second call")
	}
	if opts.Style != firstStyle {
		t.Error("Style changed on second call")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()
	if opts.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v, want defaults", opts.Layout)
	}

	// A partial layout keeps its threshold, even zero.
	opts = Options{Layout: layout.Options{BoxWidth: 100}}
	opts.SetLayoutDefaults()
	if opts.Layout.Threshold != 0 || opts.Layout.BoxWidth != 100 || opts.Layout.BoxHeight != layout.DefaultBoxHeight {
		t.Errorf("Layout = %+v", opts.Layout)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.PixelRatio != DefaultPixelRatio || opts.FitMargin != DefaultFitMargin {
		t.Errorf("PixelRatio=%v FitMargin=%v", opts.PixelRatio, opts.FitMargin)
	}
	if opts.MinScale != viewport.DefaultMinScale || opts.MaxScale != viewport.DefaultMaxScale {
		t.Errorf("scale range = [%v, %v]", opts.MinScale, opts.MaxScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateForRender(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad scale range", Options{MinScale: 2, MaxScale: 1}, errors.ErrCodeInvalidConfig},
		{"huge frame", Options{Width: 20000, Height: 10}, errors.ErrCodeInvalidInput},
		{"bad pixel ratio", Options{PixelRatio: 9}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	doc := Options{}
	doc.SetRenderDefaults()
	frame := doc
	frame.Width, frame.Height = 800, 600

	if doc.ArtifactKeyOpts("svg") == frame.ArtifactKeyOpts("svg") {
		t.Error("frame and document output share a key")
	}
	moved := frame
	moved.Viewport = &viewport.State{PanX: 10, Scale: 1}
	if moved.ArtifactKeyOpts("svg") == frame.ArtifactKeyOpts("svg") {
		t.Error("viewport state not part of the key")
	}
	detailed := doc
	detailed.Detailed = true
	if detailed.ArtifactKeyOpts("dot") == doc.ArtifactKeyOpts("dot") {
		t.Error("detailed flag not part of the dot key")
	}

	// Fractional sizes render at a different device size.
	wider := frame
	wider.Width = 800.4
	k := wider.ArtifactKeyOpts("png")
	if k == frame.ArtifactKeyOpts("png") {
		t.Error("800 and 800.4 wide frames share a key")
	}
	if k.Width != 801 || k.Height != 600 {
		t.Errorf("key size = %dx%d, want device size 801x600", k.Width, k.Height)
	}
}

func TestRunnerTruncatesLabelsByDefault(t *testing.T) {
	long := "AVeryLongNodeTypeNameThatExceedsEighteen"
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), tree.Analysis{AST: tree.Leaf(long, "")}, Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	svg := res.Artifacts["svg"]
	if bytes.Contains(svg, []byte(long)) {
		t.Error("full label drawn without truncation")
	}
	if !bytes.Contains(svg, []byte("AVeryLongNodeType…")) {
		t.Error("truncated label missing")
	}
}

func TestRenderFromLayout(t *testing.T) {
	ctx := context.Background()
	root := Build(sampleAnalysis())
	res, err := GenerateLayout(root, Options{})
	if err != nil {
		t.Fatalf("GenerateLayout: %v", err)
	}

	artifacts, err := RenderFromLayout(ctx, res, Options{Formats: []string{"svg", "png", "json", "outline"}})
	if err != nil {
		t.Fatalf("RenderFromLayout: %v", err)
	}

	if !bytes.HasPrefix(artifacts["svg"], []byte("<svg")) {
		t.Errorf("svg output: %.60s", artifacts["svg"])
	}
	if _, err := png.Decode(bytes.NewReader(artifacts["png"])); err != nil {
		t.Errorf("png output: %v", err)
	}
	back, err := layout.UnmarshalDocument(artifacts["json"])
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	if back.Len() != res.Len() {
		t.Errorf("json round trip has %d nodes, want %d", back.Len(), res.Len())
	}
	if outline := string(artifacts["outline"]); !strings.HasPrefix(outline, "Analysis\n  Program\n") {
		t.Errorf("outline output:\n%s", outline)
	}
}

func TestRenderFrame(t *testing.T) {
	root := Build(sampleAnalysis())
	opts := Options{Formats: []string{"png"}, Width: 320, Height: 200, PixelRatio: 2}
	res, _ := GenerateLayout(root, opts)

	artifacts, err := RenderFromLayout(context.Background(), res, opts)
	if err != nil {
		t.Fatalf("RenderFromLayout: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(artifacts["png"]))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 400 {
		t.Errorf("frame size = %v, want 640x400", b)
	}
}

func TestFrameViewport(t *testing.T) {
	res := layout.Compute(tree.New("Program", "", tree.Leaf("A", ""), tree.Leaf("B", "")), layout.DefaultOptions())

	vp := FrameViewport(res, Options{Width: 800, Height: 600})
	if vp.Scale() != viewport.DefaultMaxScale {
		t.Errorf("fitted scale = %v, want %v", vp.Scale(), viewport.DefaultMaxScale)
	}

	state := viewport.State{PanX: 5, PanY: 6, Scale: 1.5}
	vp = FrameViewport(res, Options{Width: 800, Height: 600, Viewport: &state})
	if vp.State() != state {
		t.Errorf("state = %+v, want %+v", vp.State(), state)
	}
}

func TestRunnerCachesLayoutAndArtifacts(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{"svg", "outline"}}
	first, err := r.Execute(ctx, sampleAnalysis(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run hit cache: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != tree.Count(first.Tree) || first.TreeHash == "" {
		t.Errorf("stats = %+v hash = %q", first.Stats, first.TreeHash)
	}

	second, err := r.Execute(ctx, sampleAnalysis(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run missed cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}
	for i := 0; i < first.Layout.Len(); i++ {
		if first.Layout.Geometry(i) != second.Layout.Geometry(i) {
			t.Fatalf("cached geometry of node %d differs", i)
		}
	}

	// A different threshold is a different layout.
	opts.Layout = layout.DefaultOptions()
	opts.Layout.Threshold = 1
	third, err := r.Execute(ctx, sampleAnalysis(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("threshold change served a cached layout")
	}

	// Refresh bypasses reads.
	opts.Refresh = true
	fourth, err := r.Execute(ctx, sampleAnalysis(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.LayoutHit || fourth.CacheInfo.RenderHit {
		t.Error("refresh read from cache")
	}
}

func TestRunnerEmptyAnalysis(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), tree.Analysis{}, Options{Formats: []string{"svg", "outline"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Tree != nil || !res.Layout.Empty() {
		t.Error("empty analysis produced a tree")
	}
	if len(res.Artifacts["outline"]) != 0 {
		t.Errorf("outline = %q, want empty", res.Artifacts["outline"])
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte("<svg")) {
		t.Error("empty analysis should still render a blank svg")
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), sampleAnalysis(), Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(ctx, sampleAnalysis(), Options{}); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`
[layout]
threshold = 5
box_width = 200

[viewport]
fit_margin = 60

[style]
fill = "#e0f2fe"
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Layout.Threshold != 5 || cfg.Layout.BoxWidth != 200 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Indent != 200+layout.DefaultGutter {
		t.Errorf("indent = %v, want it to follow the box width", cfg.Layout.Indent)
	}
	if cfg.Layout.BoxHeight != layout.DefaultBoxHeight {
		t.Error("absent key lost its default")
	}
	if cfg.Viewport.FitMargin != 60 || cfg.Viewport.MaxScale != viewport.DefaultMaxScale {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Style.Fill != "#e0f2fe" || cfg.Style.Stroke == "" {
		t.Errorf("style = %+v", cfg.Style)
	}

	opts := cfg.Options()
	if opts.Layout.Threshold != 5 || opts.FitMargin != 60 {
		t.Errorf("options = %+v", opts)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"syntax", "[layout\nthreshold = 3"},
		{"unknown key", "[layout]\nthreshhold = 3"},
		{"bad color", "[style]\nfill = \"blue-ish\""},
		{"negative threshold", "[layout]\nthreshold = -1"},
		{"indent in gutter", "[layout]\nindent = 100"},
		{"scale range", "[viewport]\nmin_scale = 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig(tt.text); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astlens.toml")
	if err := os.WriteFile(path, []byte("[layout]\nthreshold = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Layout.Threshold != 2 {
		t.Errorf("threshold = %d", cfg.Layout.Threshold)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestShippedExamples(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "examples", "astlens.toml"))
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	a, err := tree.ReadAnalysisFile(filepath.Join("..", "..", "examples", "analysis", "factorial.json"))
	if err != nil {
		t.Fatalf("example analysis: %v", err)
	}

	opts := cfg.Options()
	opts.Formats = []string{FormatSVG, FormatOutline}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), a, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	outline := string(res.Artifacts[FormatOutline])
	for _, want := range []string{"FunctionDecl factorial", "Tokens", "Line 5"} {
		if !strings.Contains(outline, want) {
			t.Errorf("outline missing %q", want)
		}
	}
}
