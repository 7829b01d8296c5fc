package cli

import (
	"bytes"
	"strings"
	"testing"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		nodes, links int
		cached       bool
		want         []string
		absent       []string
	}{
		{7, 4, true, []string{"7 bubbles", "4 links", "cached"}, []string{"fresh"}},
		{1, 0, false, []string{"1 bubble", "fresh"}, []string{"links", "1 bubbles"}},
		{3, 1, false, []string{"3 bubbles", "1 link"}, []string{"1 links"}},
	}
	for _, tt := range tests {
		buf := captureStdout(t)
		printStats(tt.nodes, tt.links, tt.cached)
		out := buf.String()
		for _, s := range tt.want {
			if !strings.Contains(out, s) {
				t.Errorf("printStats(%d, %d, %v) = %q, missing %q", tt.nodes, tt.links, tt.cached, out, s)
			}
		}
		for _, s := range tt.absent {
			if strings.Contains(out, s) {
				t.Errorf("printStats(%d, %d, %v) = %q, unexpected %q", tt.nodes, tt.links, tt.cached, out, s)
			}
		}
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("Wrote %s", "budget.svg")
	printFile("out/budget.svg")
	printNextStep("Render", "budgetbubbles render budget.state.json")

	out := buf.String()
	for _, s := range []string{iconSuccess, "Wrote budget.svg", "out/budget.svg", "budgetbubbles render budget.state.json"} {
		if !strings.Contains(out, s) {
			t.Errorf("output %q missing %q", out, s)
		}
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("got %d lines, want 3", n)
	}
}
