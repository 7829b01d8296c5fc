package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	"github.com/matzehuels/budgetbubbles/pkg/revision"
)

func sampleDoc() StateDocument {
	return StateDocument{
		Type:      DocumentTypeState,
		Timestamp: 1700000000000,
		Meta:      dataset.Meta{Revisions: []dataset.Revision{{ID: "m1", Label: "Jan"}}},
		Left: PanelState{
			Data: &dataset.Item{
				ID:       "root",
				Amount:   revision.List(100.0),
				Children: []*dataset.Item{{ID: "a", Amount: revision.List(40.0)}},
			},
			Nodes: []NodeState{
				{ID: "root", Expanded: true, X: 10, Y: 20},
				{ID: "a", Fixed: true, X: 30.5, Y: 40},
			},
			Links:      []LinkState{{SourceID: "root", TargetID: "a"}},
			DataMapper: MapperState{Lang: "et", Revision: 0, SizeScaleFactor: 0.1},
		},
		Zoom: ZoomStates{
			Budget:     ZoomState{Scale: 2, Translate: [2]float64{5, -5}},
			Comparison: IdentityZoom(),
		},
		Visibility: Visibility{Comparison: true},
	}
}

func TestStateRoundTrip(t *testing.T) {
	doc := sampleDoc()
	data, err := MarshalState(doc)
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}
	got, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}

	if got.Timestamp != doc.Timestamp {
		t.Errorf("Timestamp = %d, want %d", got.Timestamp, doc.Timestamp)
	}
	if len(got.Left.Nodes) != 2 || got.Left.Nodes[1] != doc.Left.Nodes[1] {
		t.Errorf("Nodes = %+v, want %+v", got.Left.Nodes, doc.Left.Nodes)
	}
	if len(got.Left.Links) != 1 || got.Left.Links[0] != doc.Left.Links[0] {
		t.Errorf("Links = %+v", got.Left.Links)
	}
	if got.Left.DataMapper != doc.Left.DataMapper {
		t.Errorf("DataMapper = %+v, want %+v", got.Left.DataMapper, doc.Left.DataMapper)
	}
	if got.Zoom != doc.Zoom || !got.Visibility.Comparison {
		t.Errorf("Zoom/Visibility = %+v/%+v", got.Zoom, got.Visibility)
	}
	if got.Left.Data == nil || len(got.Left.Data.Children) != 1 {
		t.Fatalf("Data = %+v", got.Left.Data)
	}
	if !got.Right.IsEmpty() {
		t.Error("Right should be empty")
	}
}

func TestStateWireFormat(t *testing.T) {
	data, err := MarshalState(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"type": "state"`, `"sourceId": "root"`, `"dataMapper"`, `"sizeScaleFactor": 0.1`, `"visibility"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("output missing %s:\n%s", key, data)
		}
	}
}

func TestUnmarshalStateRejectsOtherTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Dataset", `{"meta": {}, "left": {"id": "x"}}`},
		{"WrongType", `{"type": "dataset"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalState([]byte(tt.input))
			if !errors.Is(err, ErrNotStateDocument) {
				t.Errorf("err = %v, want ErrNotStateDocument", err)
			}
		})
	}

	if _, err := UnmarshalState([]byte(`{`)); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("syntax error = %v, want decode error", err)
	}
}

func TestIsStateDocument(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`{"type": "state"}`, true},
		{`{"meta": {}}`, false},
		{`[1, 2]`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		if got := IsStateDocument([]byte(tt.input)); got != tt.want {
			t.Errorf("IsStateDocument(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	doc := sampleDoc()
	doc.Type = ""
	if err := WriteStateFile(doc, path); err != nil {
		t.Fatalf("WriteStateFile: %v", err)
	}
	got, err := ReadStateFile(path)
	if err != nil {
		t.Fatalf("ReadStateFile: %v", err)
	}
	if got.Type != DocumentTypeState {
		t.Errorf("Type = %q, want %q", got.Type, DocumentTypeState)
	}
	if _, err := ReadStateFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStateDocumentPanel(t *testing.T) {
	doc := sampleDoc()
	if doc.Panel(dataset.PanelLeft) != &doc.Left {
		t.Error("Panel(left) does not alias Left")
	}
	if doc.Panel("middle") != nil {
		t.Error("Panel(middle) should be nil")
	}
}
