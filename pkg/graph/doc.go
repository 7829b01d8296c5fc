// Package graph provides serialization types for bubble graphs and saved
// visualization states.
//
// This package defines the wire format for a panel's node-link graph and for
// the state document that bundles three panels, used for state files, API
// responses, caching and the state store.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [PanelState], [StateDocument]: serialization types (this package)
//   - pkg/panel.Panel: live nodes, links and expansion handles
//   - pkg/visualization.Visualization: the three panels and zoom state
//
// Panels convert with Save/Restore; nothing here knows about layout.
//
// # Panel State
//
// A panel state records the normalized data tree plus, per live node, only
// what cannot be recomputed from the data:
//
//	{
//	  "data": {"id": "root", "amount": [100, 200], "children": [...]},
//	  "nodes": [{"id": "root", "expanded": true, "fixed": false, "x": 310, "y": 240}],
//	  "links": [{"sourceId": "root", "targetId": "a"}],
//	  "dataMapper": {"lang": "et", "revision": 1, "sizeScaleFactor": 0.1414}
//	}
//
// # State Documents
//
// A state document is discriminated by "type": "state":
//
//	doc, _ := graph.ReadStateFile("state.json")
//	graph.WriteStateFile(doc, "copy.json")
//	if graph.IsStateDocument(raw) { ... }
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct values.
package graph
