package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// Panel names used as keys in dataset and state documents.
const (
	PanelLeft       = "left"
	PanelRight      = "right"
	PanelComparison = "comparison"
)

// Dataset is the input document: shared metadata plus one data tree per
// panel. Any of the trees may be missing.
type Dataset struct {
	Meta       Meta  `json:"meta"`
	Left       *Item `json:"left,omitempty"`
	Right      *Item `json:"right,omitempty"`
	Comparison *Item `json:"comparison,omitempty"`
}

// Root returns the tree for the named panel.
func (d *Dataset) Root(panel string) *Item {
	switch panel {
	case PanelLeft:
		return d.Left
	case PanelRight:
		return d.Right
	case PanelComparison:
		return d.Comparison
	}
	return nil
}

// Trees holds the prepared index of each panel's tree.
type Trees struct {
	Left, Right, Comparison *Tree
}

// Prepare normalizes all three trees concurrently. The trees are disjoint
// and Meta is only read, so the passes do not interfere. The only error is
// the context's.
func (d *Dataset) Prepare(ctx context.Context) (Trees, error) {
	var trees Trees
	g, ctx := errgroup.WithContext(ctx)
	prepare := func(dst **Tree, root *Item) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			*dst = Prepare(root, &d.Meta)
			return nil
		})
	}
	prepare(&trees.Left, d.Left)
	prepare(&trees.Right, d.Right)
	prepare(&trees.Comparison, d.Comparison)
	if err := g.Wait(); err != nil {
		return Trees{}, err
	}
	return trees, nil
}

// Parse decodes a dataset document.
func Parse(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &d, nil
}

// Read decodes a dataset from r.
func Read(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// ReadFile decodes a dataset from the file at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Marshal encodes d as compact JSON.
func Marshal(d *Dataset) ([]byte, error) {
	return json.Marshal(d)
}

// Write encodes d as indented JSON.
func Write(d *Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteFile encodes d to the file at path.
func WriteFile(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
