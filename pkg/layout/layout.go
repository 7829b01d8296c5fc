// Package layout places bubble nodes in a fixed-size canvas.
//
// Two strategies share one coordinate space. [Engine.Ordered] packs bubbles
// into rows by decreasing size and is fully deterministic. [Engine.Relax]
// runs a fixed number of steps of a force simulation (Verlet integration
// with link springs, centering gravity and pairwise repulsion) seeded from
// the current positions. Neither uses randomness, so equal inputs always
// give equal layouts.
package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
)

// Simulation defaults.
const (
	DefaultIterations   = 200
	DefaultAlpha        = 0.5
	DefaultSettleAlpha  = 0.1
	DefaultGravity      = 0.2
	DefaultCharge       = -30.0
	DefaultLinkStrength = 0.1
	DefaultFriction     = 0.9
	DefaultGutter       = 30.0

	alphaDecay = 0.99
)

// Engine holds the canvas size and simulation parameters. The zero value
// is not useful; construct engines with [New].
type Engine struct {
	Width, Height float64

	// Iterations is the number of simulation steps per run.
	Iterations int
	// Alpha is the initial temperature of [Engine.Relax]; SettleAlpha that
	// of [Engine.Settle], which runs after small structural edits.
	Alpha       float64
	SettleAlpha float64

	Gravity      float64
	Charge       float64 // per unit of radius
	LinkStrength float64
	Friction     float64

	HGutter, VGutter float64
}

// New returns an engine for a width x height canvas with default
// parameters.
func New(width, height float64) *Engine {
	return &Engine{
		Width:        width,
		Height:       height,
		Iterations:   DefaultIterations,
		Alpha:        DefaultAlpha,
		SettleAlpha:  DefaultSettleAlpha,
		Gravity:      DefaultGravity,
		Charge:       DefaultCharge,
		LinkStrength: DefaultLinkStrength,
		Friction:     DefaultFriction,
		HGutter:      DefaultGutter,
		VGutter:      DefaultGutter,
	}
}

// Ordered packs nodes into rows, largest first. A new row starts when the
// next circle does not fit in the remaining width; each row sits below the
// previous one's tallest circle plus the vertical gutter. The order of the
// nodes slice is left unchanged.
func (e *Engine) Ordered(nodes []*bubble.Node) {
	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, func(a, b *bubble.Node) int {
		return cmp.Compare(b.Radius, a.Radius)
	})

	curX, curY, nextRow := e.Width+1, 0.0, 0.0
	for _, n := range sorted {
		r := n.Radius
		if curX+2*r > e.Width {
			curY = nextRow + r
			nextRow = curY + r + e.VGutter
			curX = 0
		}
		n.MoveTo(curX+r, curY)
		curX += 2*r + e.HGutter
	}
}

// Initialize computes the initial placement of a fresh node set: an
// ordered layout relaxed by the force simulation.
func (e *Engine) Initialize(nodes []*bubble.Node) {
	e.Ordered(nodes)
	e.Relax(nodes, nil)
}

// PositionChildren seeds children evenly around the parent's perimeter,
// child i at angle 2πi/n.
func (e *Engine) PositionChildren(parent *bubble.Node, children []*bubble.Node) {
	n := float64(len(children))
	for i, c := range children {
		angle := 2 * math.Pi * float64(i) / n
		c.MoveTo(parent.X+parent.Radius*math.Cos(angle), parent.Y+parent.Radius*math.Sin(angle))
	}
}
