// Package pipeline runs the load → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Load: decode the source document. A dataset is normalized (fill
//     merge, densification, aggregation); a saved state is taken as is.
//  2. Layout: build the three-panel visualization, select language and
//     revision, apply expansions and snapshot the result as a state
//     document.
//  3. Render: draw the requested panel as SVG, DOT, PNG or emit the state
//     document as JSON.
//
// Every stage is cached by content hash plus the options that shape its
// output, so repeating a request with the same source and options is a
// cache read.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:   data,
//	    Language: "et",
//	    Expand:   []string{"left/root", "left/education"},
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/budgetbubbles/pkg/cache"
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/visualization"
)

// =============================================================================
// Default Values
// =============================================================================

// LatestRevision selects the dataset's last revision.
const LatestRevision = -1

// Output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// SupportedFormats lists the output formats in documentation order.
var SupportedFormats = []string{FormatSVG, FormatDOT, FormatPNG, FormatJSON}

// Render targets. PanelBudget draws the left and right panels side by
// side.
const (
	PanelBudget     = "budget"
	PanelLeft       = dataset.PanelLeft
	PanelRight      = dataset.PanelRight
	PanelComparison = dataset.PanelComparison
)

// SupportedPanels lists the render targets.
var SupportedPanels = []string{PanelBudget, PanelLeft, PanelRight, PanelComparison}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. The JSON form is accepted by the HTTP
// server.
type Options struct {
	// Source is the raw dataset or saved state document.
	Source     []byte `json:"-"`
	SourceName string `json:"source,omitempty"`

	// Layout options
	Language         string   `json:"lang,omitempty"`
	Revision         int      `json:"revision"`
	Expand           []string `json:"expand,omitempty"` // "panel/id" or "id" (left panel)
	PanelWidth       float64  `json:"panel_width,omitempty"`
	PanelHeight      float64  `json:"panel_height,omitempty"`
	ComparisonWidth  float64  `json:"comparison_width,omitempty"`
	ComparisonHeight float64  `json:"comparison_height,omitempty"`
	Iterations       int      `json:"iterations,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Panel     string   `json:"panel,omitempty"`
	Title     string   `json:"title,omitempty"`
	HideLinks bool     `json:"hide_links,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`

	validated bool
}

// DefaultOptions returns options selecting the latest revision and SVG
// output of the budget stage.
func DefaultOptions() Options {
	return Options{Revision: LatestRevision}
}

// Expansion is a parsed "panel/id" expansion request.
type Expansion struct {
	Panel string
	ID    string
}

func (e Expansion) String() string { return e.Panel + "/" + e.ID }

// ParseExpansion parses "panel/id". A bare id addresses the left panel.
// Ids may contain slashes; only a known panel name is taken as prefix.
func ParseExpansion(s string) (Expansion, error) {
	if s == "" {
		return Expansion{}, bberrors.New(bberrors.ErrCodeInvalidInput, "empty expansion")
	}
	if panel, id, ok := strings.Cut(s, "/"); ok {
		switch panel {
		case PanelLeft, PanelRight, PanelComparison:
			if id == "" {
				return Expansion{}, bberrors.New(bberrors.ErrCodeInvalidInput, "expansion %q has no id", s)
			}
			return Expansion{Panel: panel, ID: id}, nil
		}
	}
	return Expansion{Panel: PanelLeft, ID: s}, nil
}

// Result holds the outputs of a pipeline run.
type Result struct {
	Visualization *visualization.Visualization
	State         graph.StateDocument

	// SourceHash and LayoutHash are content hashes of the input and of the
	// computed state document.
	SourceHash string
	LayoutHash string

	// Artifacts are rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timing and size information.
type Stats struct {
	NodeCount  int
	LinkCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks every format against SupportedFormats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := bberrors.ValidateFormat(f, SupportedFormats); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Source) == 0 {
		return bberrors.New(bberrors.ErrCodeInvalidInput, "source document is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout checks layout options and fills their defaults.
func (o *Options) ValidateForLayout() error {
	o.setRuntimeDefaults()
	if err := bberrors.ValidateLanguage(o.Language); err != nil {
		return err
	}
	if o.Revision < LatestRevision {
		return bberrors.New(bberrors.ErrCodeInvalidInput, "revision must be %d (latest) or an index", LatestRevision)
	}
	if o.Iterations < 0 {
		return bberrors.New(bberrors.ErrCodeInvalidInput, "iterations must not be negative")
	}
	for _, e := range o.Expand {
		if _, err := ParseExpansion(e); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForRender checks render options and fills their defaults.
func (o *Options) ValidateForRender() error {
	o.setRuntimeDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Panel == "" {
		o.Panel = PanelBudget
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := bberrors.ValidateFormat(o.Panel, SupportedPanels); err != nil {
		return bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "panel")
	}
	return nil
}

func (o *Options) setRuntimeDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

func (o *Options) visualizationOptions() visualization.Options {
	return visualization.Options{
		PanelWidth:       o.PanelWidth,
		PanelHeight:      o.PanelHeight,
		ComparisonWidth:  o.ComparisonWidth,
		ComparisonHeight: o.ComparisonHeight,
		Iterations:       o.Iterations,
		Language:         o.Language,
		Logger:           o.Logger,
	}
}

// LayoutKeyOpts returns the cache key options of the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Revision:   o.Revision,
		Language:   o.Language,
		Expand:     o.Expand,
		Width:      o.PanelWidth,
		Height:     o.PanelHeight,
		CompWidth:  o.ComparisonWidth,
		CompHeight: o.ComparisonHeight,
		Iterations: o.Iterations,
	}
}

// ArtifactKeyOpts returns the cache key options of one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Panel:  o.Panel,
		Title:  o.Title,
		Links:  !o.HideLinks,
	}
}

func (o *Options) sourceLabel() string {
	if o.SourceName != "" {
		return o.SourceName
	}
	return fmt.Sprintf("<%d bytes>", len(o.Source))
}
