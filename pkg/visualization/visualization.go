// Package visualization wires three bubble panels into one budget view.
//
// The left and right panels show the two sides of a budget (for example
// revenue and spending); the comparison panel shows reference amounts as a
// pinned row layout. All three share one [bubble.Mapper], so the revision
// slider, the language and the bubble scale apply everywhere and bubbles are
// comparable across panels.
package visualization

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/layout"
	"github.com/matzehuels/budgetbubbles/pkg/panel"
)

// Default canvas sizes. The budget stage holds the left and right panels
// side by side.
const (
	DefaultPanelWidth       = 600.0
	DefaultPanelHeight      = 600.0
	DefaultComparisonWidth  = 1200.0
	DefaultComparisonHeight = 300.0
)

// Options configures a Visualization.
type Options struct {
	PanelWidth       float64
	PanelHeight      float64
	ComparisonWidth  float64
	ComparisonHeight float64
	// Iterations is the force simulation step count; 0 keeps the engine default.
	Iterations int
	Language   string
	Logger     *log.Logger
}

func (o *Options) setDefaults() {
	if o.PanelWidth <= 0 {
		o.PanelWidth = DefaultPanelWidth
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = DefaultPanelHeight
	}
	if o.ComparisonWidth <= 0 {
		o.ComparisonWidth = DefaultComparisonWidth
	}
	if o.ComparisonHeight <= 0 {
		o.ComparisonHeight = DefaultComparisonHeight
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Visualization is the three-panel budget view. It is not safe for
// concurrent use.
type Visualization struct {
	Meta              dataset.Meta
	Left, Right       *panel.Panel
	Comparison        *panel.Panel
	ComparisonVisible bool

	mapper         *bubble.Mapper
	budgetZoom     *Zoom
	comparisonZoom *Zoom
	logger         *log.Logger
}

// New returns an empty visualization.
func New(opts Options) *Visualization {
	opts.setDefaults()
	m := bubble.NewMapper()
	m.SetLanguage(opts.Language)

	engine := func(w, h float64) *layout.Engine {
		e := layout.New(w, h)
		if opts.Iterations > 0 {
			e.Iterations = opts.Iterations
		}
		return e
	}
	withLogger := panel.WithLogger(opts.Logger)

	return &Visualization{
		Left:           panel.New(dataset.PanelLeft, m, engine(opts.PanelWidth, opts.PanelHeight), withLogger),
		Right:          panel.New(dataset.PanelRight, m, engine(opts.PanelWidth, opts.PanelHeight), withLogger),
		Comparison:     panel.New(dataset.PanelComparison, m, engine(opts.ComparisonWidth, opts.ComparisonHeight), withLogger),
		mapper:         m,
		budgetZoom:     newZoom(2*opts.PanelWidth, opts.PanelHeight),
		comparisonZoom: newZoom(opts.ComparisonWidth, opts.ComparisonHeight),
		logger:         opts.Logger,
	}
}

// Mapper returns the mapper shared by the panels.
func (v *Visualization) Mapper() *bubble.Mapper { return v.mapper }

// Panels returns the panels in display order.
func (v *Visualization) Panels() []*panel.Panel {
	return []*panel.Panel{v.Left, v.Right, v.Comparison}
}

// Panel returns a panel by name.
func (v *Visualization) Panel(name string) (*panel.Panel, bool) {
	for _, p := range v.Panels() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Load normalizes the dataset and shows it: left and right with their
// roots, comparison with the root's children pinned in a row layout. The
// bubble scale is calibrated on the left root and the newest revision is
// selected. Zoom is reset and the comparison stage hidden.
func (v *Visualization) Load(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()
	trees, err := ds.Prepare(ctx)
	if err != nil {
		return fmt.Errorf("prepare dataset: %w", err)
	}

	v.Meta = ds.Meta
	v.mapper.ScaleFactor = bubble.DefaultScaleFactor
	v.mapper.CalibrateScalingFactor(ds.Left)
	v.mapper.Revision = v.defaultRevision()

	v.Left.Load(trees.Left, panel.LoadOptions{})
	v.Right.Load(trees.Right, panel.LoadOptions{})
	v.Comparison.Load(trees.Comparison, panel.LoadOptions{NoRoot: true})
	v.Comparison.PinOrdered()

	v.ResetZoom()
	v.ComparisonVisible = false

	v.logger.Debug("loaded visualization",
		"revisions", len(v.Meta.Revisions),
		"scale", v.mapper.ScaleFactor,
		"duration", time.Since(start))
	return nil
}

func (v *Visualization) defaultRevision() int {
	if len(v.Meta.Revisions) == 0 {
		return bubble.LastRevision
	}
	return v.Meta.LastRevision()
}

// Revision returns the selected revision index.
func (v *Visualization) Revision() int { return v.mapper.Revision }

// SetRevision selects a revision, clamped to the dataset's range, and
// revises the left and right panels. The comparison panel keeps its pinned
// layout. It returns the index actually selected.
func (v *Visualization) SetRevision(idx int) int {
	if n := len(v.Meta.Revisions); n > 0 {
		idx = max(0, min(idx, n-1))
	} else {
		idx = max(0, idx)
	}
	v.mapper.Revision = idx
	v.Left.Revise()
	v.Right.Revise()
	return idx
}

// Language returns the display language.
func (v *Visualization) Language() string { return v.mapper.Language }

// SetLanguage switches labels and number formatting and revises every
// panel.
func (v *Visualization) SetLanguage(lang string) {
	v.mapper.SetLanguage(lang)
	for _, p := range v.Panels() {
		p.Revise()
	}
}

// RevisionLabels returns the slider labels in the display language.
func (v *Visualization) RevisionLabels() []string {
	labels := make([]string, len(v.Meta.Revisions))
	for i, r := range v.Meta.Revisions {
		labels[i] = r.LabelFor(v.mapper.Language)
	}
	return labels
}

// ToggleComparison shows or hides the comparison stage.
func (v *Visualization) ToggleComparison() bool {
	v.ComparisonVisible = !v.ComparisonVisible
	return v.ComparisonVisible
}

// SaveState snapshots the whole visualization.
func (v *Visualization) SaveState(now time.Time) graph.StateDocument {
	return graph.StateDocument{
		Type:       graph.DocumentTypeState,
		Timestamp:  now.UnixMilli(),
		Meta:       v.Meta.Clone(),
		Left:       v.Left.Save(),
		Right:      v.Right.Save(),
		Comparison: v.Comparison.Save(),
		Zoom: graph.ZoomStates{
			Budget:     v.budgetZoom.ZoomState,
			Comparison: v.comparisonZoom.ZoomState,
		},
		Visibility: graph.Visibility{Comparison: v.ComparisonVisible},
	}
}

// RestoreState replaces the visualization with a saved state. The selected
// revision is the left panel's; the display language is kept.
func (v *Visualization) RestoreState(doc graph.StateDocument) {
	v.Meta = doc.Meta.Clone()
	v.Left.Restore(doc.Left, &v.Meta)
	v.Right.Restore(doc.Right, &v.Meta)
	v.Comparison.Restore(doc.Comparison, &v.Meta)

	v.comparisonZoom.set(doc.Zoom.Comparison.Translate, doc.Zoom.Comparison.Scale)
	v.budgetZoom.set(doc.Zoom.Budget.Translate, doc.Zoom.Budget.Scale)
	v.ComparisonVisible = doc.Visibility.Comparison

	v.SetRevision(doc.Left.DataMapper.Revision)
	v.logger.Debug("restored visualization", "timestamp", doc.Timestamp, "revision", v.mapper.Revision)
}

// LoadDocument shows a raw document, which may be a dataset or a saved
// state.
func (v *Visualization) LoadDocument(ctx context.Context, data []byte) error {
	if graph.IsStateDocument(data) {
		doc, err := graph.UnmarshalState(data)
		if err != nil {
			return err
		}
		v.RestoreState(doc)
		return nil
	}
	ds, err := dataset.Parse(data)
	if err != nil {
		return err
	}
	return v.Load(ctx, ds)
}

// Stats summarizes the live graph.
type Stats struct {
	Nodes int
	Links int
}

// Stats counts live nodes and links across the panels.
func (v *Visualization) Stats() Stats {
	var s Stats
	for _, p := range v.Panels() {
		s.Nodes += p.Len()
		s.Links += len(p.Links())
	}
	return s
}
