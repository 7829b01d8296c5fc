package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
)

func nodes(radii ...float64) []*bubble.Node {
	out := make([]*bubble.Node, len(radii))
	for i, r := range radii {
		out[i] = &bubble.Node{ID: string(rune('a' + i)), Radius: r}
	}
	return out
}

func positions(ns []*bubble.Node) [][2]float64 {
	out := make([][2]float64, len(ns))
	for i, n := range ns {
		out[i] = [2]float64{n.X, n.Y}
	}
	return out
}

func TestOrdered(t *testing.T) {
	e := New(200, 400)
	ns := nodes(10, 50, 20)
	e.Ordered(ns)

	// Sorted: b(50), c(20), a(10). Row 1 holds b (0..100) and c (130..170);
	// a would end at 220 > 200 and wraps.
	want := map[string][2]float64{
		"b": {50, 50},
		"c": {150, 50},
		"a": {10, 50 + 50 + 30 + 10},
	}
	for _, n := range ns {
		if got := [2]float64{n.X, n.Y}; got != want[n.ID] {
			t.Errorf("%s at %v, want %v", n.ID, got, want[n.ID])
		}
		if n.PX != n.X || n.PY != n.Y {
			t.Errorf("%s has non-zero velocity after Ordered", n.ID)
		}
	}
	if ns[0].ID != "a" || ns[1].ID != "b" || ns[2].ID != "c" {
		t.Error("Ordered reordered the input slice")
	}
}

func TestOrderedIdempotent(t *testing.T) {
	e := New(300, 300)
	ns := nodes(30, 30, 12, 80, 5, 44)
	e.Ordered(ns)
	first := positions(ns)
	e.Ordered(ns)
	if second := positions(ns); !equalPositions(first, second, 0) {
		t.Errorf("second Ordered moved nodes:\n%v\n%v", first, second)
	}
}

func TestRelaxDeterministic(t *testing.T) {
	run := func() [][2]float64 {
		e := New(600, 400)
		ns := nodes(40, 30, 25, 10, 10, 5)
		links := []bubble.Link{{Source: ns[0], Target: ns[3]}, {Source: ns[0], Target: ns[4]}}
		e.Ordered(ns)
		if steps := e.Relax(ns, links); steps != DefaultIterations {
			t.Fatalf("Relax ran %d steps, want %d", steps, DefaultIterations)
		}
		return positions(ns)
	}
	a, b := run(), run()
	if !equalPositions(a, b, 0) {
		t.Errorf("Relax is not deterministic:\n%v\n%v", a, b)
	}
	for _, p := range a {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			t.Fatalf("NaN position: %v", a)
		}
	}
}

func TestRunsFixedStepCount(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		settle     bool
	}{
		{"relax default", DefaultIterations, false},
		{"settle default", DefaultIterations, true},
		// SettleAlpha cools below 0.005 after ~300 steps; the count still holds
		{"settle long", 500, true},
		{"relax long", 1000, false},
		{"zero", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(400, 400)
			e.Iterations = tt.iterations
			ns := nodes(20, 10, 5)
			e.Ordered(ns)
			var steps int
			if tt.settle {
				steps = e.Settle(ns, nil)
			} else {
				steps = e.Relax(ns, nil)
			}
			if steps != tt.iterations {
				t.Errorf("ran %d steps, want %d", steps, tt.iterations)
			}
		})
	}
}

func TestRelaxPinsFixedNodes(t *testing.T) {
	e := New(500, 500)
	ns := nodes(30, 30, 30)
	e.Ordered(ns)
	ns[1].Fixed = true
	x, y := ns[1].X, ns[1].Y
	e.Relax(ns, nil)
	if ns[1].X != x || ns[1].Y != y {
		t.Errorf("fixed node moved from (%v,%v) to (%v,%v)", x, y, ns[1].X, ns[1].Y)
	}
}

func TestRelaxRepels(t *testing.T) {
	e := New(1000, 1000)
	e.Gravity = 0
	ns := nodes(20, 20)
	ns[0].MoveTo(495, 500)
	ns[1].MoveTo(505, 500)
	e.Relax(ns, nil)
	if d := ns[1].X - ns[0].X; d <= 10 {
		t.Errorf("charged nodes did not separate: distance %v", d)
	}
}

func TestExpandedNodesDoNotRepel(t *testing.T) {
	e := New(1000, 1000)
	e.Gravity = 0
	ns := nodes(20, 20)
	ns[0].Expanded, ns[1].Expanded = true, true
	ns[0].MoveTo(495, 500)
	ns[1].MoveTo(505, 500)
	e.Relax(ns, nil)
	if ns[0].X != 495 || ns[1].X != 505 {
		t.Errorf("uncharged nodes moved: %v", positions(ns))
	}
}

func TestLinkPullsTowardRadius(t *testing.T) {
	e := New(1000, 1000)
	e.Gravity = 0
	e.Charge = 0
	parent := &bubble.Node{ID: "p", Radius: 50, Expanded: true}
	child := &bubble.Node{ID: "c", Radius: 10}
	parent.MoveTo(500, 500)
	child.MoveTo(800, 500)
	e.Relax([]*bubble.Node{parent, child}, []bubble.Link{{Source: parent, Target: child}})
	if d := math.Hypot(child.X-parent.X, child.Y-parent.Y); d >= 300 {
		t.Errorf("link did not pull nodes together: distance %v", d)
	}
}

func TestRelaxIgnoresDanglingLinks(t *testing.T) {
	e := New(100, 100)
	ns := nodes(5)
	stray := &bubble.Node{ID: "stray"}
	e.Relax(ns, []bubble.Link{{Source: ns[0], Target: stray}})
	if math.IsNaN(ns[0].X) {
		t.Error("dangling link corrupted the layout")
	}
	if e.Relax(nil, nil) != 0 {
		t.Error("empty node set should not step")
	}
}

func TestPositionChildren(t *testing.T) {
	e := New(100, 100)
	parent := &bubble.Node{Radius: 10}
	parent.MoveTo(50, 50)
	children := nodes(1, 1, 1, 1)
	e.PositionChildren(parent, children)

	want := [][2]float64{{60, 50}, {50, 60}, {40, 50}, {50, 40}}
	if got := positions(children); !equalPositions(got, want, 1e-9) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

func TestInitialize(t *testing.T) {
	e := New(400, 300)
	ns := nodes(60, 40, 20)
	e.Initialize(ns)
	for _, n := range ns {
		if n.X < -n.Radius || n.X > e.Width+n.Radius {
			t.Errorf("%s drifted off canvas: x=%v", n.ID, n.X)
		}
	}
}

func equalPositions(a, b [][2]float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i][0]-b[i][0]) > tol || math.Abs(a[i][1]-b[i][1]) > tol {
			return false
		}
	}
	return true
}
