package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/dataset"
)

// prepareCommand normalizes a dataset without laying it out.
func (c *CLI) prepareCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "prepare [dataset.json]",
		Short: "Normalize a budget dataset",
		Long: `Normalize a budget dataset.

Merges planned and actual fill amounts, expands every revisioned value to
one entry per revision and fills missing parent amounts with the sum of
their children. The result is the document the visualization loads; use
"-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrepare(cmd.Context(), args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.prepared.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runPrepare(ctx context.Context, input, output string, noCache bool) error {
	source, err := readSource(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	data, cached, err := runner.PrepareWithCacheInfo(ctx, source, false)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", input, err)
	}
	prog.done("Prepared " + input)

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = outputBase("", input) + ".prepared.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	ds, err := dataset.Parse(data)
	if err != nil {
		return err
	}
	printSuccess("Dataset prepared")
	printFile(output)
	printKeyValue("Revisions", fmt.Sprint(len(ds.Meta.Revisions)))
	printStats(0, 0, cached)
	printNewline()
	printNextStep("Lay out", appName+" layout "+output)
	return nil
}
