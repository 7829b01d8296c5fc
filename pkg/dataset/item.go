package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/matzehuels/budgetbubbles/pkg/revision"
)

// Well-known item fields. Anything else lands in [Item.Attrs].
const (
	FieldID                = "id"
	FieldAmount            = "amount"
	FieldFillAmount        = "fillAmount"
	FieldPlannedFillAmount = "plannedFillAmount"
	FieldActualFillAmount  = "actualFillAmount"
	FieldColor             = "color"
	FieldURL               = "url"
	FieldChildren          = "children"
	FieldLabel             = "label"
	FieldDescription       = "description"
)

// reservedPrefix marks runtime-only fields that are never read from or
// written to documents.
const reservedPrefix = "__"

// Item is one budget line in a data tree.
//
// Numeric and color fields are typed; labels, descriptions and any other
// attribute of the source document live in Attrs so they survive a
// load/save round trip. Children is nil for a leaf. An item that was given
// an explicit empty child list keeps a non-nil empty slice.
//
// Items carry no parent pointers. Use a [Tree] to navigate upward.
type Item struct {
	ID                string
	Amount            revision.Value[float64]
	FillAmount        revision.Value[float64]
	PlannedFillAmount revision.Value[float64]
	ActualFillAmount  revision.Value[float64]
	Color             revision.Value[string]
	URL               revision.Value[string]
	Attrs             map[string]revision.Value[any]
	Children          []*Item
}

// Attr returns the named free-form attribute.
func (it *Item) Attr(name string) (revision.Value[any], bool) {
	v, ok := it.Attrs[name]
	return v, ok && v.IsSet()
}

// SetAttr stores a free-form attribute, allocating the map on first use.
func (it *Item) SetAttr(name string, v revision.Value[any]) {
	if it.Attrs == nil {
		it.Attrs = make(map[string]revision.Value[any])
	}
	it.Attrs[name] = v
}

// Localized resolves field at revision idx, preferring field_<lang> when
// lang is non-empty and the localized attribute is set.
func (it *Item) Localized(field, lang string, idx int) (any, bool) {
	if lang != "" {
		if v, ok := it.Attr(field + "_" + lang); ok {
			if s, ok := v.Resolve(idx); ok {
				return s, true
			}
		}
	}
	if v, ok := it.Attr(field); ok {
		return v.Resolve(idx)
	}
	return nil, false
}

// IsLeaf reports whether the item has no children.
func (it *Item) IsLeaf() bool { return len(it.Children) == 0 }

// Clone returns a deep copy of the subtree rooted at it.
func Clone(it *Item) *Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Attrs = maps.Clone(it.Attrs)
	if it.Children != nil {
		c.Children = make([]*Item, len(it.Children))
		for i, child := range it.Children {
			c.Children[i] = Clone(child)
		}
	}
	return &c
}

// Walk visits every item of the subtree in post-order (children before
// their parent).
func Walk(root *Item, fn func(*Item)) {
	if root == nil {
		return
	}
	for _, c := range root.Children {
		Walk(c, fn)
	}
	fn(root)
}

// UnmarshalJSON decodes an item from its document form. Ids may be strings
// or numbers.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = Item{}
	for key, msg := range raw {
		var err error
		switch key {
		case FieldID:
			it.ID, err = decodeID(msg)
		case FieldAmount:
			err = json.Unmarshal(msg, &it.Amount)
		case FieldFillAmount:
			err = json.Unmarshal(msg, &it.FillAmount)
		case FieldPlannedFillAmount:
			err = json.Unmarshal(msg, &it.PlannedFillAmount)
		case FieldActualFillAmount:
			err = json.Unmarshal(msg, &it.ActualFillAmount)
		case FieldColor:
			err = json.Unmarshal(msg, &it.Color)
		case FieldURL:
			err = json.Unmarshal(msg, &it.URL)
		case FieldChildren:
			err = json.Unmarshal(msg, &it.Children)
		default:
			if strings.HasPrefix(key, reservedPrefix) {
				continue
			}
			var v revision.Value[any]
			if err = json.Unmarshal(msg, &v); err == nil {
				it.SetAttr(key, v)
			}
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON encodes the item in document form with sorted keys.
func (it *Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Attrs)+8)
	for k, v := range it.Attrs {
		if v.IsSet() {
			out[k] = v
		}
	}
	out[FieldID] = it.ID
	typed := []struct {
		name string
		set  bool
		v    json.Marshaler
	}{
		{FieldAmount, it.Amount.IsSet(), it.Amount},
		{FieldFillAmount, it.FillAmount.IsSet(), it.FillAmount},
		{FieldPlannedFillAmount, it.PlannedFillAmount.IsSet(), it.PlannedFillAmount},
		{FieldActualFillAmount, it.ActualFillAmount.IsSet(), it.ActualFillAmount},
		{FieldColor, it.Color.IsSet(), it.Color},
		{FieldURL, it.URL.IsSet(), it.URL},
	}
	for _, f := range typed {
		if f.set {
			out[f.name] = f.v
		}
	}
	if it.Children != nil {
		out[FieldChildren] = it.Children
	}
	return json.Marshal(out)
}

func decodeID(msg json.RawMessage) (string, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return "", nil
	}
	if msg[0] == '"' {
		var s string
		err := json.Unmarshal(msg, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", err
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}
