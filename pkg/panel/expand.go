package panel

import (
	"maps"
	"slices"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
)

// Expand reveals the children of the node with the given id. The children
// are seeded on the parent's perimeter, linked to the parent (except when
// the parent is the tree root) and the layout is settled.
//
// Expand is a no-op returning false when the node is unknown, already
// expanded or its item has no children.
func (p *Panel) Expand(id string) (*Expansion, bool) {
	parent, ok := p.byID[id]
	if !ok || parent.Expanded || !parent.Expandable() {
		return nil, false
	}

	children := make([]*bubble.Node, 0, len(parent.Item.Children))
	for _, it := range parent.Item.Children {
		children = append(children, p.mapper.CreateNode(p.tree, it))
	}
	p.engine.PositionChildren(parent, children)

	exp := &Expansion{Parent: parent, Nodes: children}
	if !p.tree.IsRoot(parent.Item) {
		exp.Links = make([]bubble.Link, len(children))
		for i, c := range children {
			exp.Links[i] = bubble.Link{Source: parent, Target: c}
		}
	}

	nodes := append(slices.Clone(p.nodes), children...)
	links := append(slices.Clone(p.links), exp.Links...)
	expansions := maps.Clone(p.expansions)
	expansions[id] = exp

	parent.Expanded = true
	p.engine.Settle(nodes, links)
	p.swap(p.tree, nodes, links, expansions)

	p.logger.Debug("expanded node", "panel", p.Name, "id", id, "children", len(children))
	return exp, true
}

// Collapse hides everything the node's expansion inserted, recursively
// collapsing expanded descendants first. The node itself stays, with
// Expanded and Fixed reset. Links touching a removed node are dropped too.
//
// Collapse is a no-op returning false when the node is unknown or not
// expanded.
func (p *Panel) Collapse(id string) bool {
	node, ok := p.byID[id]
	if !ok || !node.Expanded {
		return false
	}

	expansions := maps.Clone(p.expansions)
	removed := make(map[*bubble.Node]bool)
	removedLinks := make(map[bubble.Link]bool)

	var drop func(n *bubble.Node)
	drop = func(n *bubble.Node) {
		exp, ok := expansions[n.ID]
		if !ok || exp.Parent != n {
			return
		}
		delete(expansions, n.ID)
		for _, c := range exp.Nodes {
			drop(c)
			removed[c] = true
		}
		for _, l := range exp.Links {
			removedLinks[l] = true
		}
	}
	drop(node)

	nodes := slices.DeleteFunc(slices.Clone(p.nodes), func(n *bubble.Node) bool {
		return removed[n]
	})
	links := slices.DeleteFunc(slices.Clone(p.links), func(l bubble.Link) bool {
		return removedLinks[l] || removed[l.Source] || removed[l.Target]
	})

	node.Expanded = false
	node.Fixed = false
	p.swap(p.tree, nodes, links, expansions)

	p.logger.Debug("collapsed node", "panel", p.Name, "id", id, "removed", len(removed))
	return true
}

// Toggle expands a collapsed node or collapses an expanded one and reports
// whether anything changed.
func (p *Panel) Toggle(id string) bool {
	n, ok := p.byID[id]
	if !ok {
		return false
	}
	if n.Expanded {
		return p.Collapse(id)
	}
	_, ok = p.Expand(id)
	return ok
}
