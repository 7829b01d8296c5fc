package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
)

// layoutCommand computes a visualization and writes its state document.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	flags := newLayoutFlags()

	cmd := &cobra.Command{
		Use:   "layout [dataset.json|state.json]",
		Short: "Compute a visualization layout",
		Long: `Compute a visualization layout.

Loads a dataset (or a saved state), selects the revision and language,
replays the requested expansions in order and writes the resulting state
document. The state can be rendered with 'render', explored with 'explore'
or stored with 'state save'.

Expansions name a panel and a node id, e.g. --expand left/revenue
--expand right/health. A bare id addresses the left panel.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.state.json, - for stdout)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags *layoutFlags, output string) error {
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
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data := result.Artifacts[pipeline.FormatJSON]
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = outputBase("", input) + ".state.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}
