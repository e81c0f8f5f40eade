package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astlens/pkg/layout"
	"github.com/matzehuels/astlens/pkg/pipeline"
	"github.com/matzehuels/astlens/pkg/tree"
)

// layoutCommand creates the layout command for computing reusable layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  optionFlags
		cf     cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [analysis.json]",
		Short: "Compute the layout of an analysis document",
		Long: `Compute the layout of an analysis document.

The layout command merges the syntax tree and tokens into one tree and
positions every node. The output is a layout.json file (the same document
as 'render -f json') that 'visualize' renders without laying out again.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, cf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)
	cf.register(cmd)

	return cmd
}

// runLayout loads the analysis, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, cf cacheFlags) error {
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
	root := runner.Build(ctx, a)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	res, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + "." + pipeline.Extension(pipeline.FormatJSON)
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	defer out.Close()
	if err := layout.WriteDocument(res, out); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Len(), tree.Depth(root), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
