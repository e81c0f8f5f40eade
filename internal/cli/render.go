package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astlens/pkg/pipeline"
	"github.com/matzehuels/astlens/pkg/tree"
)

// renderCommand creates the render command: analysis document in, files out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		refresh    bool
		flags      optionFlags
		cf         cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "render [analysis.json]",
		Short: "Render an analysis document to svg, png, pdf, dot, json or outline",
		Long: `Render an analysis document.

The input is a JSON document with an optional "ast" syntax tree and a flat
"tokens" list. Both are merged into one tree, laid out and written in each
requested format:

  svg      the whole tree, or a frame when --width and --height are set
  png      raster of the same picture at --pixel-ratio
  pdf      vector PDF converted from the svg
  dot      Graphviz node-link drawing of the merged tree
  json     the layout document, reusable with 'visualize'
  outline  indented text outline

Layouts and artifacts are cached locally (or in Redis with --redis).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr)
			opts.Refresh = refresh
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, cf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, outline (comma-separated)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results and recompute")
	flags.register(cmd)
	cf.register(cmd)

	return cmd
}

// runRender loads the analysis, runs the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, cf cacheFlags) error {
	a, err := tree.ReadAnalysisFile(input)
	if err != nil {
		return fmt.Errorf("load analysis %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cf)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, a, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		nodes:     result.Stats.NodeCount,
		depth:     result.Stats.Depth,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	prog.done("Render complete")
	return nil
}
