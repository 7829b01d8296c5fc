package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/visualization"
)

const exploreDataset = `{
	"meta": {"revisions": [{"id": "2023", "label": "Budget 2023"}, {"id": "2024", "label": "Budget 2024"}]},
	"left": {
		"id": "rev", "label": "Revenue",
		"children": [
			{"id": "tax", "label": "Taxes", "amount": [700, 800], "children": [
				{"id": "vat", "label": "VAT", "amount": [700, 800]}
			]},
			{"id": "other", "label": "Other", "amount": 100}
		]
	},
	"right": {"id": "exp", "label": "Spending", "amount": [600, 900]},
	"comparison": {"id": "cmp", "children": [
		{"id": "gdp", "label": "GDP", "amount": 5000},
		{"id": "eu", "label": "EU funds", "amount": 300}
	]}
}`

func newTestExplore(t *testing.T) exploreModel {
	t.Helper()
	vis := visualization.New(visualization.Options{Iterations: 10})
	if err := vis.LoadDocument(context.Background(), []byte(exploreDataset)); err != nil {
		t.Fatal(err)
	}
	return newExploreModel(vis, "out.state.json")
}

func press(m exploreModel, keys ...string) exploreModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(exploreModel)
	}
	return m
}

func rowIDs(m exploreModel) string {
	ids := make([]string, len(m.rows))
	for i, r := range m.rows {
		ids[i] = strings.Repeat(">", r.depth) + r.node.ID
	}
	return strings.Join(ids, ",")
}

func TestExploreExpandCollapse(t *testing.T) {
	m := newTestExplore(t)
	if got := rowIDs(m); got != "rev" {
		t.Fatalf("initial rows = %s, want rev", got)
	}

	m = press(m, "enter")
	if got := rowIDs(m); got != "rev,>tax,>other" {
		t.Fatalf("after expanding root rows = %s", got)
	}

	m = press(m, "down", "enter")
	if got := rowIDs(m); got != "rev,>tax,>>vat,>other" {
		t.Fatalf("after expanding tax rows = %s", got)
	}
	if m.rows[m.cursor].node.ID != "tax" {
		t.Errorf("cursor moved to %s, want tax", m.rows[m.cursor].node.ID)
	}

	m = press(m, "down", "enter")
	if !strings.Contains(m.status, "no sub-items") {
		t.Errorf("status = %q, want leaf notice", m.status)
	}

	m = press(m, "up", "enter")
	if got := rowIDs(m); got != "rev,>tax,>other" {
		t.Errorf("after collapsing tax rows = %s", got)
	}
}

func TestExplorePanelsAndRevision(t *testing.T) {
	m := newTestExplore(t)

	m = press(m, "tab", "tab")
	if got := rowIDs(m); got != "gdp,eu" {
		t.Errorf("comparison rows = %s, want gdp,eu", got)
	}

	if m.vis.Revision() != 1 {
		t.Fatalf("Revision() = %d, want 1", m.vis.Revision())
	}
	m = press(m, "left")
	if m.vis.Revision() != 0 {
		t.Errorf("Revision() after left = %d, want 0", m.vis.Revision())
	}
	if !strings.Contains(m.View(), "Budget 2023") {
		t.Error("view does not show the selected revision label")
	}
}

func TestExploreLanguageAndSave(t *testing.T) {
	m := newTestExplore(t)
	var saved graph.StateDocument
	m.saveFunc = func(doc graph.StateDocument, path string) error {
		saved = doc
		return nil
	}

	m = press(m, "L")
	if m.vis.Language() == "" {
		t.Error("language not switched")
	}

	m = press(m, "s")
	if m.savedTo != "out.state.json" || saved.Type != graph.DocumentTypeState {
		t.Errorf("savedTo = %q, saved type %q", m.savedTo, saved.Type)
	}

	m.saveFunc = func(graph.StateDocument, string) error { return errors.New("disk full") }
	m = press(m, "s")
	if !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q, want save error", m.status)
	}
}
