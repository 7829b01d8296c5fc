package bubble

import (
	"math"

	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	"github.com/matzehuels/budgetbubbles/pkg/i18n"
)

const (
	// DefaultScaleFactor is used until [Mapper.CalibrateScalingFactor] runs.
	DefaultScaleFactor = 700.0

	// LastRevision selects the newest revision of any dataset: list values
	// clamp to their last element.
	LastRevision = 1_000_000_000

	scaleRatio = 0.010
)

// Mapper projects data items into bubble nodes. It carries the view
// context every projection depends on: the language, the revision index and
// the size scale. Panels of one visualization share a mapper so bubbles
// are comparable across panels.
//
// A Mapper is not safe for concurrent use.
type Mapper struct {
	Language    string
	Revision    int
	ScaleFactor float64

	tr *i18n.Translator
}

// NewMapper returns a mapper showing the last revision in the default
// language.
func NewMapper() *Mapper {
	return &Mapper{
		Revision:    LastRevision,
		ScaleFactor: DefaultScaleFactor,
		tr:          i18n.New(i18n.Default),
	}
}

// SetLanguage switches labels and number formatting to lang.
func (m *Mapper) SetLanguage(lang string) {
	m.Language = lang
	m.tr = i18n.New(lang)
}

// Translator returns the translator for the current language.
func (m *Mapper) Translator() *i18n.Translator {
	if m.tr == nil || m.tr.Language() != m.Language {
		m.tr = i18n.New(m.Language)
	}
	return m.tr
}

// CalibrateScalingFactor sizes bubbles relative to the dataset: the largest
// revision of root's amount gets a radius of 100.
func (m *Mapper) CalibrateScalingFactor(root *dataset.Item) {
	if root == nil {
		return
	}
	largest := math.Inf(-1)
	for _, v := range root.Amount.Values() {
		largest = math.Max(largest, v)
	}
	if largest <= 0 || math.IsInf(largest, 0) {
		return
	}
	m.ScaleFactor = math.Sqrt(largest) * scaleRatio
}

// FormatAmount formats v in the mapper's language.
func (m *Mapper) FormatAmount(v float64) string {
	return FormatAmount(v, m.Translator())
}

// CreateNode builds the node for item. The tree supplies the parent lookup
// used for coloring.
func (m *Mapper) CreateNode(t *dataset.Tree, item *dataset.Item) *Node {
	n := &Node{ID: item.ID, Item: item}
	m.ReviseNode(t, n)
	return n
}

// ReviseNode recomputes every derived field of n for the current revision,
// language and scale. Position, Fixed and Expanded are left alone.
func (m *Mapper) ReviseNode(t *dataset.Tree, n *Node) {
	item := n.Item
	if item == nil {
		return
	}
	rev := m.Revision

	n.Amount, n.HasAmount = item.Amount.Resolve(rev)
	n.Radius = m.radius(n.Amount, n.HasAmount)
	n.FormattedAmount = ""
	if n.HasAmount {
		n.FormattedAmount = m.FormatAmount(n.Amount)
	}

	n.FillAmount, n.HasFill = item.FillAmount.Resolve(rev)
	n.FillHeight, n.FormattedFill = 0, ""
	if n.HasFill {
		n.FillHeight = FillHeight(n.Radius, n.Amount, n.FillAmount)
		n.FormattedFill = m.FormatAmount(n.FillAmount)
	}

	n.InitialAmount, _ = item.Amount.Resolve(0)
	n.FormattedInitialAmount = m.FormatAmount(n.InitialAmount)

	n.Label = m.label(item)
	n.Color = m.color(t, item)
	n.Description = n.Label
	if v, ok := item.Localized(dataset.FieldDescription, m.Language, rev); ok {
		n.Description = dataset.Text(v)
	}
	n.URL, _ = item.URL.Resolve(rev)
}

func (m *Mapper) radius(amount float64, ok bool) float64 {
	if !ok || amount <= 0 || m.ScaleFactor <= 0 {
		return 0
	}
	return math.Sqrt(amount) / m.ScaleFactor
}

func (m *Mapper) label(item *dataset.Item) string {
	v, _ := item.Localized(dataset.FieldLabel, m.Language, m.Revision)
	return dataset.Text(v)
}

// color returns the item's own color at the current revision, or a palette
// color hashed from a label. The root and top-level items hash their own
// label; deeper items hash their parent's, so siblings share a color.
func (m *Mapper) color(t *dataset.Tree, item *dataset.Item) string {
	if c, ok := item.Color.Resolve(m.Revision); ok && c != "" {
		return c
	}
	source := item
	if t != nil {
		if p, ok := t.Parent(item); ok {
			if _, ok := t.Parent(p); ok {
				source = p
			}
		}
	}
	return PaletteColor(m.label(source))
}
