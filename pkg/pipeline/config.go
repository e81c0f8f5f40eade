package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/viewport"
)

// =============================================================================
// Config - TOML Configuration File
// =============================================================================

// Config is the on-disk configuration:
//
//	[layout]
//	threshold = 4
//	indent    = 200
//
//	[viewport]
//	width      = 1280
//	height     = 720
//	fit_margin = 60
//
//	[style]
//	fill = "#e0f2fe"
//
// Keys that are absent keep their defaults.
type Config struct {
	Layout   layout.Options `toml:"layout"`
	Viewport ViewportConfig `toml:"viewport"`
	Style    render.Style   `toml:"style"`
}

// ViewportConfig configures frames and the interactive viewers.
type ViewportConfig struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	PixelRatio float64 `toml:"pixel_ratio"`
	FitMargin  float64 `toml:"fit_margin"`
	MinScale   float64 `toml:"min_scale"`
	MaxScale   float64 `toml:"max_scale"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Viewport: ViewportConfig{
			PixelRatio: DefaultPixelRatio,
			FitMargin:  DefaultFitMargin,
			MinScale:   viewport.DefaultMinScale,
			MaxScale:   viewport.DefaultMaxScale,
		},
		Style: render.DefaultStyle(),
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are
// rejected so that typos do not pass silently.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(string(data))
}

// ParseConfig decodes TOML text over the defaults and validates the result.
func ParseConfig(text string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	// A wider box pushes the default indent into the gutter. Follow the box
	// unless the file sets the indent itself.
	if !md.IsDefined("layout", "indent") {
		cfg.Layout.Indent = max(layout.DefaultIndent, cfg.Layout.BoxWidth+cfg.Layout.Gutter)
	}
	cfg.Style.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := c.Style.Validate(); err != nil {
		return err
	}
	v := c.Viewport
	if v.MinScale <= 0 || v.MaxScale < v.MinScale {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: invalid scale range [%g, %g]", v.MinScale, v.MaxScale)
	}
	if v.FitMargin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: fit_margin must not be negative")
	}
	if v.Width < 0 || v.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: width and height must not be negative")
	}
	return nil
}

// Options converts the configuration to pipeline options. Callers apply
// command-line flags on top.
func (c Config) Options() Options {
	return Options{
		Layout:     c.Layout,
		Style:      c.Style,
		Width:      c.Viewport.Width,
		Height:     c.Viewport.Height,
		PixelRatio: c.Viewport.PixelRatio,
		FitMargin:  c.Viewport.FitMargin,
		MinScale:   c.Viewport.MinScale,
		MaxScale:   c.Viewport.MaxScale,
	}
}
