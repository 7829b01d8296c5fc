package dataset

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Revision is one snapshot of the budget, such as a year or an amendment.
type Revision struct {
	ID     string
	Label  string
	Labels map[string]string // localized labels keyed by language
}

// LabelFor returns the label for lang, falling back to the plain label and
// then to the id.
func (r Revision) LabelFor(lang string) string {
	if s, ok := r.Labels[lang]; ok && lang != "" {
		return s
	}
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// UnmarshalJSON reads {id, label, label_<lang>...}.
func (r *Revision) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Revision{}
	for key, msg := range raw {
		switch {
		case key == FieldID:
			id, err := decodeID(msg)
			if err != nil {
				return fmt.Errorf("revision id: %w", err)
			}
			r.ID = id
		case key == FieldLabel:
			r.Label = rawText(msg)
		case strings.HasPrefix(key, FieldLabel+"_"):
			if r.Labels == nil {
				r.Labels = make(map[string]string)
			}
			r.Labels[strings.TrimPrefix(key, FieldLabel+"_")] = rawText(msg)
		}
	}
	return nil
}

// MarshalJSON writes the revision back in document form.
func (r Revision) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(r.Labels)+2)
	for lang, s := range r.Labels {
		out[FieldLabel+"_"+lang] = s
	}
	out[FieldID] = r.ID
	if r.Label != "" {
		out[FieldLabel] = r.Label
	}
	return json.Marshal(out)
}

// Meta is the dataset-wide metadata shared by every item of a tree.
type Meta struct {
	Revisions     []Revision `json:"revisions,omitempty"`
	Multiyear     bool       `json:"multiyear,omitempty"`
	ShowInfoPanel bool       `json:"show_info_panel,omitempty"`
}

// RevisionIDs returns the revision ids in order.
func (m *Meta) RevisionIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, len(m.Revisions))
	for i, r := range m.Revisions {
		ids[i] = r.ID
	}
	return ids
}

// LastRevision returns the index of the newest revision, or 0 when there
// are none.
func (m *Meta) LastRevision() int {
	if m == nil || len(m.Revisions) == 0 {
		return 0
	}
	return len(m.Revisions) - 1
}

// Clone returns a deep copy of m.
func (m Meta) Clone() Meta {
	c := m
	c.Revisions = make([]Revision, len(m.Revisions))
	for i, r := range m.Revisions {
		r.Labels = maps.Clone(r.Labels)
		c.Revisions[i] = r
	}
	if m.Revisions == nil {
		c.Revisions = nil
	}
	return c
}

// Text renders a resolved attribute for display. Strings are returned as
// is, numbers without trailing zeros, nil as the empty string.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func rawText(msg json.RawMessage) string {
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return ""
	}
	return Text(v)
}
