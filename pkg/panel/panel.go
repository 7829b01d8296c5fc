// Package panel manages the live bubble graph of one visualization panel.
//
// A [Panel] owns the prepared data tree, the visible nodes and links, and
// one expansion handle per expanded node. All structural edits (load,
// expand, collapse, restore) build new slices and swap them in at the end,
// so a caller never observes a half-applied edit.
//
// A Panel is not safe for concurrent use.
package panel

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	"github.com/matzehuels/budgetbubbles/pkg/layout"
)

// Panel is one bubble graph view.
type Panel struct {
	Name string

	mapper *bubble.Mapper
	engine *layout.Engine
	logger *log.Logger

	tree       *dataset.Tree
	nodes      []*bubble.Node
	links      []bubble.Link
	byID       map[string]*bubble.Node
	expansions map[string]*Expansion
}

// Expansion records exactly what one expand inserted, so the matching
// collapse removes that set and nothing else.
type Expansion struct {
	Parent *bubble.Node
	Nodes  []*bubble.Node
	Links  []bubble.Link
}

// Option configures a Panel.
type Option func(*Panel)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

// New returns an empty panel projecting through m and laid out by e.
func New(name string, m *bubble.Mapper, e *layout.Engine, opts ...Option) *Panel {
	p := &Panel{
		Name:       name,
		mapper:     m,
		engine:     e,
		logger:     log.New(io.Discard),
		byID:       map[string]*bubble.Node{},
		expansions: map[string]*Expansion{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadOptions controls how [Panel.Load] seeds the graph.
type LoadOptions struct {
	// NoRoot shows the root's children instead of the root itself.
	NoRoot bool
}

// Load replaces the panel content with tree and computes the initial
// placement. No links are created.
func (p *Panel) Load(tree *dataset.Tree, opts LoadOptions) {
	var items []*dataset.Item
	if tree != nil && tree.Root != nil {
		if opts.NoRoot {
			items = tree.Root.Children
		} else {
			items = []*dataset.Item{tree.Root}
		}
	}

	nodes := make([]*bubble.Node, 0, len(items))
	for _, it := range items {
		nodes = append(nodes, p.mapper.CreateNode(tree, it))
	}
	p.engine.Initialize(nodes)

	p.swap(tree, nodes, nil, map[string]*Expansion{})
	p.logger.Debug("loaded panel", "panel", p.Name, "nodes", len(nodes), "noRoot", opts.NoRoot)
}

// Tree returns the prepared data tree, or nil before the first load.
func (p *Panel) Tree() *dataset.Tree { return p.tree }

// Mapper returns the mapper nodes are projected with.
func (p *Panel) Mapper() *bubble.Mapper { return p.mapper }

// Engine returns the layout engine.
func (p *Panel) Engine() *layout.Engine { return p.engine }

// Nodes returns the live nodes in insertion order. The slice is a copy; the
// nodes are shared.
func (p *Panel) Nodes() []*bubble.Node { return slices.Clone(p.nodes) }

// Links returns the live links in insertion order.
func (p *Panel) Links() []bubble.Link { return slices.Clone(p.links) }

// Node returns the live node with the given id.
func (p *Panel) Node(id string) (*bubble.Node, bool) {
	n, ok := p.byID[id]
	return n, ok
}

// Expansion returns the handle of an expanded node.
func (p *Panel) Expansion(id string) (*Expansion, bool) {
	e, ok := p.expansions[id]
	return e, ok
}

// Len returns the number of live nodes.
func (p *Panel) Len() int { return len(p.nodes) }

// Revise recomputes every node for the mapper's current revision and
// language. Positions and flags are kept.
func (p *Panel) Revise() {
	for _, n := range p.nodes {
		p.mapper.ReviseNode(p.tree, n)
	}
}

// PinOrdered re-lays the panel with the ordered layout and fixes every
// node in place.
func (p *Panel) PinOrdered() {
	p.engine.Ordered(p.nodes)
	for _, n := range p.nodes {
		n.Fixed = true
	}
}

// Move drags a node to (x, y) and pins it there. A node dropped outside the
// canvas is released instead.
func (p *Panel) Move(id string, x, y float64) bool {
	n, ok := p.byID[id]
	if !ok {
		return false
	}
	n.MoveTo(x, y)
	e := p.engine
	n.Fixed = x >= 0 && y >= 0 && x <= e.Width && y <= e.Height
	return true
}

// Release unpins a node so the next relaxation may move it.
func (p *Panel) Release(id string) bool {
	n, ok := p.byID[id]
	if !ok {
		return false
	}
	n.Fixed = false
	return true
}

// Relax runs a full-strength relaxation over the live graph.
func (p *Panel) Relax() {
	p.engine.Relax(p.nodes, p.links)
}

func (p *Panel) swap(tree *dataset.Tree, nodes []*bubble.Node, links []bubble.Link, expansions map[string]*Expansion) {
	byID := make(map[string]*bubble.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	p.tree = tree
	p.nodes = nodes
	p.links = links
	p.byID = byID
	p.expansions = expansions
}
