package panel

import (
	"github.com/matzehuels/budgetbubbles/pkg/bubble"
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

// Save snapshots the panel: a clone of the data tree, the layout state of
// every live node, the links by id and the mapper context.
func (p *Panel) Save() graph.PanelState {
	s := graph.PanelState{
		Nodes: make([]graph.NodeState, len(p.nodes)),
		Links: make([]graph.LinkState, len(p.links)),
		DataMapper: graph.MapperState{
			Lang:            p.mapper.Language,
			Revision:        p.mapper.Revision,
			SizeScaleFactor: p.mapper.ScaleFactor,
		},
	}
	if p.tree != nil {
		s.Data = dataset.Clone(p.tree.Root)
	}
	for i, n := range p.nodes {
		s.Nodes[i] = graph.NodeState{ID: n.ID, Expanded: n.Expanded, Fixed: n.Fixed, X: n.X, Y: n.Y}
	}
	for i, l := range p.links {
		s.Links[i] = graph.LinkState{SourceID: l.Source.ID, TargetID: l.Target.ID}
	}
	return s
}

// Restore replaces the panel content with a saved state. The data is
// cloned and re-indexed, nodes are recreated from their items and given
// their saved positions and flags, and expansion handles are recovered from
// the tree: an expanded node owns those of its item's children that are
// live. Nodes or links naming unknown ids are skipped.
//
// The mapper's revision and scale are taken from the state; its language is
// left as configured.
func (p *Panel) Restore(s graph.PanelState, meta *dataset.Meta) {
	if s.DataMapper.SizeScaleFactor > 0 {
		p.mapper.ScaleFactor = s.DataMapper.SizeScaleFactor
	}
	p.mapper.Revision = s.DataMapper.Revision

	tree := dataset.Prepare(dataset.Clone(s.Data), meta)

	nodes := make([]*bubble.Node, 0, len(s.Nodes))
	byID := make(map[string]*bubble.Node, len(s.Nodes))
	for _, ns := range s.Nodes {
		item, ok := tree.Lookup(ns.ID)
		if !ok {
			p.logger.Debug("skipping saved node", "panel", p.Name, "id", ns.ID)
			continue
		}
		n := p.mapper.CreateNode(tree, item)
		n.MoveTo(ns.X, ns.Y)
		n.Expanded = ns.Expanded
		n.Fixed = ns.Fixed
		nodes = append(nodes, n)
		byID[n.ID] = n
	}

	links := make([]bubble.Link, 0, len(s.Links))
	for _, ls := range s.Links {
		src, ok := byID[ls.SourceID]
		if !ok {
			continue
		}
		dst, ok := byID[ls.TargetID]
		if !ok {
			continue
		}
		links = append(links, bubble.Link{Source: src, Target: dst})
	}

	expansions := make(map[string]*Expansion)
	for _, n := range nodes {
		if !n.Expanded || n.Item == nil {
			continue
		}
		exp := &Expansion{Parent: n}
		for _, child := range n.Item.Children {
			if c, ok := byID[child.ID]; ok {
				exp.Nodes = append(exp.Nodes, c)
			}
		}
		for _, l := range links {
			if l.Source == n {
				exp.Links = append(exp.Links, l)
			}
		}
		expansions[n.ID] = exp
	}

	p.swap(tree, nodes, links, expansions)
	p.logger.Debug("restored panel", "panel", p.Name, "nodes", len(nodes), "links", len(links))
}
