package graph

import (
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
)

// =============================================================================
// Constants
// =============================================================================

// DocumentTypeState is the discriminator of saved state documents.
const DocumentTypeState = "state"

// Zoom bounds shared by every stage.
const (
	MinZoom = 0.5
	MaxZoom = 30.0
)

// =============================================================================
// PanelState - One Panel Snapshot
// =============================================================================

// PanelState is the serializable snapshot of one panel. Restoring it
// reproduces the same node ids, positions, flags and links.
type PanelState struct {
	Data       *dataset.Item `json:"data"`
	Nodes      []NodeState   `json:"nodes"`
	Links      []LinkState   `json:"links"`
	DataMapper MapperState   `json:"dataMapper"`
}

// IsEmpty reports whether the panel held no data.
func (s *PanelState) IsEmpty() bool { return s.Data == nil }

// NodeState is the layout state of one live node.
type NodeState struct {
	ID       string  `json:"id"`
	Expanded bool    `json:"expanded"`
	Fixed    bool    `json:"fixed"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// LinkState is a link between two live nodes, by id.
type LinkState struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// MapperState is the projection context a panel was saved with.
type MapperState struct {
	Lang            string  `json:"lang"`
	Revision        int     `json:"revision"`
	SizeScaleFactor float64 `json:"sizeScaleFactor"`
}

// =============================================================================
// StateDocument - Three-Panel Visualization Snapshot
// =============================================================================

// StateDocument bundles the three panels of a visualization with the
// dataset metadata and view settings.
type StateDocument struct {
	Type       string       `json:"type"`
	Timestamp  int64        `json:"timestamp"` // milliseconds since the Unix epoch
	Meta       dataset.Meta `json:"meta"`
	Left       PanelState   `json:"left"`
	Right      PanelState   `json:"right"`
	Comparison PanelState   `json:"comparison"`
	Zoom       ZoomStates   `json:"zoom"`
	Visibility Visibility   `json:"visibility"`
}

// Panel returns the named panel state, or nil for unknown names.
func (d *StateDocument) Panel(name string) *PanelState {
	switch name {
	case dataset.PanelLeft:
		return &d.Left
	case dataset.PanelRight:
		return &d.Right
	case dataset.PanelComparison:
		return &d.Comparison
	}
	return nil
}

// ZoomStates holds the zoom of the budget stage (left and right panels) and
// of the comparison stage.
type ZoomStates struct {
	Budget     ZoomState `json:"budget"`
	Comparison ZoomState `json:"comparison"`
}

// ZoomState is a uniform scale followed by a translation.
type ZoomState struct {
	Scale     float64    `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// IdentityZoom is the zoom of a freshly loaded stage.
func IdentityZoom() ZoomState { return ZoomState{Scale: 1} }

// Visibility records which optional stages are shown.
type Visibility struct {
	Comparison bool `json:"comparison"`
}
