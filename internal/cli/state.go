package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/store"
)

// stateCommand groups the saved-state subcommands.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Save, load and list visualization states",
		Long: `Save, load and list visualization states.

States are stored per visualization id in the backend configured under
[store] (file, sqlite or mongo).`,
	}

	cmd.AddCommand(c.stateSaveCommand())
	cmd.AddCommand(c.stateLoadCommand())
	cmd.AddCommand(c.stateListCommand())

	return cmd
}

func (c *CLI) stateSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save [visualization-id] [state.json]",
		Short: "Store a state document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				data, err := readSource(args[1])
				if err != nil {
					return err
				}
				doc, err := graph.UnmarshalState(data)
				if err != nil {
					return fmt.Errorf("%s: %w", args[1], err)
				}
				id, err := st.Save(ctx, args[0], doc)
				if err != nil {
					return err
				}
				printSuccess("Saved state %s", StyleHighlight.Render(id))
				printNextStep("Load it", appName+" state load "+args[0]+" "+id)
				return nil
			})
		},
	}
}

func (c *CLI) stateLoadCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "load [visualization-id] [state-id]",
		Short: "Write a stored state document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				doc, err := st.Load(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return graph.WriteState(doc, os.Stdout)
				}
				if err := graph.WriteStateFile(doc, output); err != nil {
					return err
				}
				printSuccess("Loaded state")
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) stateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [visualization-id]",
		Short: "List stored states, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				states, err := st.List(ctx, args[0])
				if err != nil {
					return err
				}
				if len(states) == 0 {
					printInfo("No saved states for %s", args[0])
					return nil
				}
				fmt.Fprintln(stdout, stateTable(states))
				return nil
			})
		},
	}
}

func (c *CLI) withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(ctx, st)
}

func stateTable(states []store.Summary) string {
	rows := make([][]string, len(states))
	for i, s := range states {
		rows[i] = []string{s.ID, s.CreatedAt.Local().Format(time.DateTime), fmt.Sprintf("%d B", s.Size)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("State", "Saved", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleDim
		}).
		Render()
}
