package layout

import (
	"math"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
)

// Relax runs the force simulation from the current positions at the
// engine's full temperature.
func (e *Engine) Relax(nodes []*bubble.Node, links []bubble.Link) int {
	return e.run(nodes, links, e.Alpha)
}

// Settle runs the force simulation at a low temperature, for small edits
// such as expanding one bubble.
func (e *Engine) Settle(nodes []*bubble.Node, links []bubble.Link) int {
	return e.run(nodes, links, e.SettleAlpha)
}

// simulation is the per-run working set. Links whose endpoints are not in
// the node set are dropped.
type simulation struct {
	nodes   []*bubble.Node
	links   [][2]int
	weights []float64
	charges []float64
}

func (e *Engine) newSimulation(nodes []*bubble.Node, links []bubble.Link) *simulation {
	s := &simulation{
		nodes:   nodes,
		weights: make([]float64, len(nodes)),
		charges: make([]float64, len(nodes)),
	}
	index := make(map[*bubble.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
		n.PX, n.PY = n.X, n.Y
		if !n.Expanded {
			s.charges[i] = e.Charge * n.Radius
		}
	}
	for _, l := range links {
		si, ok := index[l.Source]
		if !ok {
			continue
		}
		ti, ok := index[l.Target]
		if !ok {
			continue
		}
		s.links = append(s.links, [2]int{si, ti})
		s.weights[si]++
		s.weights[ti]++
	}
	return s
}

// run advances the simulation exactly e.Iterations steps, cooling alpha
// after each, and returns the number of steps taken.
func (e *Engine) run(nodes []*bubble.Node, links []bubble.Link, alpha float64) int {
	if len(nodes) == 0 {
		return 0
	}
	s := e.newSimulation(nodes, links)
	for range e.Iterations {
		alpha *= alphaDecay
		e.tick(s, alpha)
	}
	return max(e.Iterations, 0)
}

func (e *Engine) tick(s *simulation, alpha float64) {
	nodes := s.nodes

	for _, l := range s.links {
		src, dst := nodes[l[0]], nodes[l[1]]
		dx, dy := dst.X-src.X, dst.Y-src.Y
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			continue
		}
		d := math.Sqrt(d2)
		k := alpha * e.LinkStrength * (d - dst.Radius) / d
		dx, dy = dx*k, dy*k

		ws, wt := s.weights[l[0]], s.weights[l[1]]
		share := 0.5
		if ws+wt > 0 {
			share = ws / (ws + wt)
		}
		dst.X -= dx * share
		dst.Y -= dy * share
		src.X += dx * (1 - share)
		src.Y += dy * (1 - share)
	}

	if k := alpha * e.Gravity; k != 0 {
		cx, cy := e.Width/2, e.Height/2
		for _, n := range nodes {
			n.X += (cx - n.X) * k
			n.Y += (cy - n.Y) * k
		}
	}

	for i, o := range nodes {
		if o.Fixed {
			continue
		}
		for j, p := range nodes {
			if i == j || s.charges[j] == 0 {
				continue
			}
			dx, dy := p.X-o.X, p.Y-o.Y
			dn := dx*dx + dy*dy
			if dn == 0 {
				continue
			}
			k := alpha * s.charges[j] / dn
			o.PX -= dx * k
			o.PY -= dy * k
		}
	}

	for _, n := range nodes {
		if n.Fixed {
			n.X, n.Y = n.PX, n.PY
			continue
		}
		x, y := n.X, n.Y
		n.X -= (n.PX - x) * e.Friction
		n.Y -= (n.PY - y) * e.Friction
		n.PX, n.PY = x, y
	}
}
