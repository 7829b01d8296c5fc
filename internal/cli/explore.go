package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/i18n"
	"github.com/matzehuels/budgetbubbles/pkg/panel"
	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
	"github.com/matzehuels/budgetbubbles/pkg/visualization"
)

// exploreCommand opens a visualization in the terminal.
func (c *CLI) exploreCommand() *cobra.Command {
	var output string
	flags := newLayoutFlags()

	cmd := &cobra.Command{
		Use:   "explore [dataset.json|state.json]",
		Short: "Browse a visualization interactively",
		Long: `Browse a visualization interactively.

Lists the visible bubbles of each panel as a tree. Expand and collapse
items, move through revisions and switch the display language; the amounts
and fill levels follow. Press s to write the current state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "state file written by s (default: <input>.state.json)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, flags *layoutFlags, output string) error {
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
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase("", input) + ".state.json"
	}
	m := newExploreModel(result.Visualization, output)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}
	if em, ok := final.(exploreModel); ok && em.savedTo != "" {
		printSuccess("State saved")
		printFile(em.savedTo)
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive panel browser
// =============================================================================

var (
	exploreTabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorGray)
	exploreActiveTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorCyan).Underline(true)
	exploreSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreAmountStyle    = lipgloss.NewStyle().Foreground(colorWhite).Width(10).Align(lipgloss.Right)
	exploreFillStyle      = lipgloss.NewStyle().Foreground(colorGray)
)

// exploreRow is one visible bubble with its tree depth.
type exploreRow struct {
	node  *bubble.Node
	depth int
}

type exploreModel struct {
	vis      *visualization.Visualization
	panels   []*panel.Panel
	focus    int
	cursor   int
	offset   int
	height   int
	langs    []string
	langIdx  int
	output   string
	savedTo  string
	status   string
	rows     []exploreRow
	saveFunc func(graph.StateDocument, string) error
}

func newExploreModel(vis *visualization.Visualization, output string) exploreModel {
	langs := append([]string{i18n.Default}, i18n.Languages()...)
	m := exploreModel{
		vis:      vis,
		panels:   vis.Panels(),
		height:   20,
		langs:    langs,
		output:   output,
		saveFunc: graph.WriteStateFile,
	}
	for i, l := range langs {
		if l == vis.Language() {
			m.langIdx = i
		}
	}
	m.refresh()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "tab":
			m.focus = (m.focus + 1) % len(m.panels)
			m.cursor, m.offset = 0, 0
			m.refresh()
		case "enter", " ":
			m.toggle()
		case "left", "h":
			m.vis.SetRevision(m.vis.Revision() - 1)
			m.refresh()
		case "right", "l":
			m.vis.SetRevision(m.vis.Revision() + 1)
			m.refresh()
		case "L":
			m.langIdx = (m.langIdx + 1) % len(m.langs)
			m.vis.SetLanguage(m.langs[m.langIdx])
			m.refresh()
		case "c":
			if m.vis.ToggleComparison() {
				m.status = "comparison shown"
			} else {
				m.status = "comparison hidden"
			}
		case "s":
			if err := m.saveFunc(m.vis.SaveState(time.Now()), m.output); err != nil {
				m.status = "save failed: " + err.Error()
			} else {
				m.savedTo = m.output
				m.status = "saved " + m.output
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

func (m *exploreModel) move(delta int) {
	if len(m.rows) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *exploreModel) toggle() {
	if len(m.rows) == 0 {
		return
	}
	n := m.rows[m.cursor].node
	p := m.panels[m.focus]
	if !p.Toggle(n.ID) {
		m.status = n.Label + " has no sub-items"
		return
	}
	m.refresh()
}

// refresh rebuilds the rows of the focused panel in tree order, keeping
// the cursor on the same node when it is still visible.
func (m *exploreModel) refresh() {
	var selected string
	if m.cursor < len(m.rows) {
		selected = m.rows[m.cursor].node.ID
	}
	m.rows = visibleRows(m.panels[m.focus])
	for i, r := range m.rows {
		if r.node.ID == selected {
			m.cursor = i
		}
	}
	m.move(0)
}

// visibleRows walks the panel's tree and returns the live nodes. Children
// of hidden items (the comparison root) are listed at the parent's depth.
func visibleRows(p *panel.Panel) []exploreRow {
	tree := p.Tree()
	if tree == nil || tree.Root == nil {
		return nil
	}
	var rows []exploreRow
	var walk func(it *dataset.Item, depth int)
	walk = func(it *dataset.Item, depth int) {
		n, ok := p.Node(it.ID)
		if !ok {
			for _, child := range it.Children {
				if _, shown := p.Node(child.ID); shown {
					walk(child, depth)
				}
			}
			return
		}
		rows = append(rows, exploreRow{node: n, depth: depth})
		if n.Expanded {
			for _, child := range it.Children {
				walk(child, depth+1)
			}
		}
	}
	walk(tree.Root, 0)
	return rows
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Budget bubbles"))
	b.WriteString("  ")
	b.WriteString(m.revisionLabel())
	b.WriteString(StyleDim.Render("  lang "))
	b.WriteString(StyleValue.Render(languageName(m.langs[m.langIdx])))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.panels))
	for i, p := range m.panels {
		label := fmt.Sprintf("%s (%d)", p.Name, p.Len())
		if i == m.focus {
			tabs[i] = exploreActiveTabStyle.Render(label)
		} else {
			tabs[i] = exploreTabStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(StyleDim.Render("  (empty panel)"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("↑/↓ move  ⏎ expand/collapse  ⇥ panel  ←/→ revision  L language  c comparison  s save  q quit"))
	return b.String()
}

func (m exploreModel) revisionLabel() string {
	labels := m.vis.RevisionLabels()
	if len(labels) == 0 {
		return StyleDim.Render("no revisions")
	}
	rev := m.vis.Revision()
	return StyleHighlight.Render(labels[rev]) + StyleDim.Render(fmt.Sprintf(" (%d/%d)", rev+1, len(labels)))
}

func (m exploreModel) renderRow(r exploreRow, selected bool) string {
	n := r.node
	marker := "•"
	switch {
	case n.Expanded:
		marker = "▾"
	case n.Expandable():
		marker = "▸"
	}
	cursor := "  "
	if selected {
		cursor = "› "
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color)).Render("●")
	label := strings.Repeat("  ", r.depth) + marker + " " + n.Label
	if selected {
		label = exploreSelectedStyle.Render(label)
	}

	line := cursor + swatch + " " + exploreAmountStyle.Render(n.FormattedAmount) + "  " + label
	if n.HasFill {
		line += exploreFillStyle.Render("  fill " + n.FormattedFill)
	}
	return line
}

func languageName(lang string) string {
	if lang == i18n.Default {
		return "default"
	}
	return lang
}
