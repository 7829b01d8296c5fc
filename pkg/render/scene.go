package render

import (
	"github.com/matzehuels/budgetbubbles/pkg/bubble"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/panel"
)

// Layer is one panel inside a scene, offset from the scene origin.
type Layer struct {
	Name             string
	OffsetX, OffsetY float64
	Width, Height    float64
	Nodes            []*bubble.Node
	Links            []bubble.Link
}

// Scene is a drawable snapshot of one or more panels.
type Scene struct {
	Width, Height float64
	Layers        []Layer
	Zoom          graph.ZoomState
}

// FromPanel snapshots a single panel.
func FromPanel(p *panel.Panel) Scene {
	return Stage(p)
}

// Stage snapshots panels laid out left to right.
func Stage(panels ...*panel.Panel) Scene {
	s := Scene{Zoom: graph.IdentityZoom()}
	for _, p := range panels {
		e := p.Engine()
		s.Layers = append(s.Layers, Layer{
			Name:    p.Name,
			OffsetX: s.Width,
			Width:   e.Width,
			Height:  e.Height,
			Nodes:   p.Nodes(),
			Links:   p.Links(),
		})
		s.Width += e.Width
		s.Height = max(s.Height, e.Height)
	}
	return s
}

// WithZoom returns a copy of the scene drawn under z.
func (s Scene) WithZoom(z graph.ZoomState) Scene {
	s.Zoom = z
	return s
}

// Len counts the nodes across all layers.
func (s Scene) Len() int {
	n := 0
	for _, l := range s.Layers {
		n += len(l.Nodes)
	}
	return n
}
