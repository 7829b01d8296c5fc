package revision

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		value  Value[float64]
		idx    int
		want   float64
		wantOK bool
	}{
		{"ScalarAnyIndex", Scalar(7.0), 42, 7, true},
		{"ListInRange", List(1.0, 2, 3), 1, 2, true},
		{"ListClampsPastEnd", List(1.0, 2, 3), 5, 3, true},
		{"ListClampsNegative", List(1.0, 2, 3), -1, 1, true},
		{"EmptyList", List[float64](), 0, 0, false},
		{"Unset", Value[float64]{}, 0, 0, false},
		{"ByIDNeedsDensify", ByID(map[string]float64{"a": 1}), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Resolve(tt.idx)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%d) ok = %v, want %v", tt.idx, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve(%d) = %v, want %v", tt.idx, got, tt.want)
			}
		})
	}
}

func TestDensify(t *testing.T) {
	ids := []string{"r0", "r1", "r2"}

	tests := []struct {
		name  string
		value Value[float64]
		first float64
		want  []float64
		kind  Kind
	}{
		{"ForwardFillSingle", ByID(map[string]float64{"r0": 5}), 0, []float64{5, 5, 5}, KindList},
		{"ForwardFillGap", ByID(map[string]float64{"r0": 5, "r2": 9}), 0, []float64{5, 5, 9}, KindList},
		{"MissingFirstUsesDefault", ByID(map[string]float64{"r1": 4}), 0, []float64{0, 4, 4}, KindList},
		{"MissingFirstCustomDefault", ByID(map[string]float64{"r2": 4}), -1, []float64{-1, -1, 4}, KindList},
		{"ShortListExtends", List(1.0, 2), 0, []float64{1, 2, 2}, KindList},
		{"LongListTruncates", List(1.0, 2, 3, 4), 0, []float64{1, 2, 3}, KindList},
		{"ScalarPassesThrough", Scalar(3.0), 0, []float64{3}, KindScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.value.Densify(ids, tt.first)
			if got.Kind() != tt.kind {
				t.Fatalf("kind = %v, want %v", got.Kind(), tt.kind)
			}
			if !slices.Equal(got.Values(), tt.want) {
				t.Errorf("values = %v, want %v", got.Values(), tt.want)
			}
		})
	}
}

func TestDensifyColorDefault(t *testing.T) {
	v := ByID(map[string]string{"r1": "red"}).Densify([]string{"r0", "r1", "r2"}, "black")
	want := []string{"black", "red", "red"}
	if !slices.Equal(v.List(), want) {
		t.Errorf("colors = %v, want %v", v.List(), want)
	}
}

func TestDensifyWithoutRevisions(t *testing.T) {
	v := ByID(map[string]float64{"r0": 1})
	if got := v.Densify(nil, 0); got.Kind() != KindByID {
		t.Errorf("kind = %v, want %v", got.Kind(), KindByID)
	}
}

func TestDensifyDoesNotAlias(t *testing.T) {
	src := List(1.0, 2)
	dense := src.Densify([]string{"a", "b", "c"}, 0)
	list := dense.List()
	list[0] = 99
	if got, _ := dense.Resolve(0); got != 1 {
		t.Errorf("dense value mutated through accessor: got %v", got)
	}
	if got, _ := src.Resolve(0); got != 1 {
		t.Errorf("source value mutated: got %v", got)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		want  []float64
	}{
		{`7`, KindScalar, []float64{7}},
		{`[1, 2]`, KindList, []float64{1, 2}},
		{`[]`, KindList, []float64{}},
		{`{"b": 2, "a": 1}`, KindByID, []float64{1, 2}},
		{`null`, KindUnset, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var v Value[float64]
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Fatalf("kind = %v, want %v", v.Kind(), tt.kind)
			}
			if got := v.Values(); !slices.Equal(got, tt.want) {
				t.Errorf("values = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalJSONTypeMismatch(t *testing.T) {
	var v Value[float64]
	if err := json.Unmarshal([]byte(`"abc"`), &v); err == nil {
		t.Error("expected error for string into numeric value")
	}
}

func TestMarshalJSONKeepsShape(t *testing.T) {
	type doc struct {
		A Value[float64] `json:"a"`
		B Value[float64] `json:"b"`
		C Value[string]  `json:"c"`
		D Value[float64] `json:"d"`
	}
	in := doc{
		A: Scalar(1.5),
		B: List(1.0, 2),
		C: ByID(map[string]string{"m1": "red"}),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"a":1.5,"b":[1,2],"c":{"m1":"red"},"d":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestMap(t *testing.T) {
	v := Map(List(1.0, 4), func(x float64) float64 { return x * 2 })
	if got := v.Values(); !slices.Equal(got, []float64{2, 8}) {
		t.Errorf("Map = %v, want [2 8]", got)
	}
	if Map(Value[float64]{}, func(x float64) int { return 1 }).IsSet() {
		t.Error("Map of unset value should stay unset")
	}
}
