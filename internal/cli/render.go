package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
)

// renderCommand runs the whole pipeline from a dataset or saved state to
// rendered files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)
	flags := newLayoutFlags()

	cmd := &cobra.Command{
		Use:   "render [dataset.json|state.json]",
		Short: "Render a budget visualization",
		Long: `Render a budget visualization.

Takes a dataset or a saved state, applies the layout flags and draws the
selected panel: "budget" (left and right side by side, the default), "left",
"right" or "comparison". SVG is drawn natively; DOT and PNG go through
Graphviz with every bubble pinned at its layout position. JSON writes the
state document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(flags.opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, json (comma-separated)")
	cmd.Flags().StringVarP(&flags.opts.Panel, "panel", "p", pipeline.PanelBudget, "panel to draw: budget, left, right, comparison")
	cmd.Flags().StringVar(&flags.opts.Title, "title", "", "document title (svg)")
	cmd.Flags().BoolVar(&flags.opts.HideLinks, "no-links", false, "omit parent-child links")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags *layoutFlags, output string) error {
	source, err := readSource(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := flags.apply(c.Config)
	opts.Source = source
	opts.SourceName = input
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Panel))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		stats:     result.Stats,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stats     pipeline.Stats
	cacheHit  bool
}

// writeArtifacts writes one file per format. A single format goes to the
// output path verbatim ("-" is stdout); several share the output as base.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "-" {
		_, err := os.Stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	paths := artifactPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		if err := os.WriteFile(paths[format], p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered")
	for _, format := range p.formats {
		printFile(paths[format])
	}
	printStats(p.stats.NodeCount, p.stats.LinkCount, p.cacheHit)
	return nil
}

func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := outputBase(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
