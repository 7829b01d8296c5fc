package bubble

import "github.com/matzehuels/budgetbubbles/pkg/dataset"

// Node is the visual projection of one data item at the mapper's current
// revision and language. Position and the Fixed and Expanded flags belong to
// the panel and layout; every other field is derived and recomputed by
// [Mapper.ReviseNode].
type Node struct {
	ID    string
	Item  *dataset.Item
	Label string
	Color string

	Radius          float64
	Amount          float64
	HasAmount       bool
	FormattedAmount string

	FillAmount    float64
	HasFill       bool
	FillHeight    float64
	FormattedFill string

	InitialAmount          float64
	FormattedInitialAmount string
	Description            string
	URL                    string

	X, Y   float64 // current position
	PX, PY float64 // previous position, used by the force integrator

	Fixed    bool
	Expanded bool
}

// Expandable reports whether the node's item has children to reveal.
func (n *Node) Expandable() bool {
	return n.Item != nil && len(n.Item.Children) > 0
}

// MoveTo places the node at (x, y) with zero velocity.
func (n *Node) MoveTo(x, y float64) {
	n.X, n.Y = x, y
	n.PX, n.PY = x, y
}

// Link is a structural edge from an expanded parent to one of its children.
type Link struct {
	Source *Node
	Target *Node
}
