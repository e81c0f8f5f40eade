package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/astlens/pkg/buildinfo"
	"github.com/matzehuels/astlens/pkg/cache"
	"github.com/matzehuels/astlens/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "astlens"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "astlens draws syntax trees and token streams as one diagram",
		Long: `astlens merges a syntax tree and its token stream into one tree, lays it
out with rows for narrow parents and columns for wide ones, and renders it
to files, a terminal explorer or a browser viewer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the cache backend of a command.
type cacheFlags struct {
	noCache bool
	redis   string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redis, "redis", "", "use a Redis cache at this address instead of the local cache")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), nil
	case f.redis != "":
		c.Logger.Debug("using redis cache", "addr", f.redis)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: f.redis, Prefix: appName + ":"})
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/astlens/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// optionFlags are the layout and frame flags shared by the pipeline
// commands. They override the config file, which overrides the defaults.
type optionFlags struct {
	config     string
	width      float64
	height     float64
	pixelRatio float64
	threshold  int
	detailed   bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "TOML config file with [layout], [viewport] and [style] sections")
	cmd.Flags().Float64Var(&f.width, "width", 0, "frame width in pixels (0 draws the whole tree)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "frame height in pixels (0 draws the whole tree)")
	cmd.Flags().Float64Var(&f.pixelRatio, "pixel-ratio", pipeline.DefaultPixelRatio, "device pixels per screen pixel for png output")
	cmd.Flags().IntVar(&f.threshold, "threshold", 0, "largest child count still laid out as a row")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show child counts in dot output")
}

// options loads the config file, if any, and applies the flags the user set.
func (f *optionFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	cfg := pipeline.DefaultConfig()
	if f.config != "" {
		loaded, err := pipeline.LoadConfig(f.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		cfg = loaded
	}
	opts := cfg.Options()

	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("pixel-ratio") {
		opts.PixelRatio = f.pixelRatio
	}
	if flags.Changed("threshold") {
		opts.Layout.Threshold = f.threshold
	}
	opts.Detailed = f.detailed
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
