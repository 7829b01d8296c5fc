package dataset

import (
	"github.com/shopspring/decimal"

	"github.com/matzehuels/budgetbubbles/pkg/revision"
)

// Index-0 defaults used when an id-keyed value skips the first revision.
const (
	DefaultColor = "black"
	DefaultURL   = ""
)

// Prepare normalizes the tree rooted at root in place and returns its
// index. The passes run in a fixed order:
//
//  1. index the items (id and parent tables, shared meta)
//  2. merge planned and actual fill amounts into fillAmount
//  3. densify every revisioned field to one entry per revision
//  4. sum missing amount and fillAmount from the children, bottom-up
//
// Prepare never fails. Ragged or partial revisioned values are extended,
// truncated or forward-filled; parents with no children and no explicit
// amount keep the amount unset. Running Prepare twice is harmless.
func Prepare(root *Item, meta *Meta) *Tree {
	t := NewTree(root, meta)
	if root == nil {
		return t
	}
	mergeFillAmounts(t)
	densify(t)
	aggregate(root)
	return t
}

// mergeFillAmounts synthesizes fillAmount from plannedFillAmount and
// actualFillAmount. At every revision the actual value wins when defined.
func mergeFillAmounts(t *Tree) {
	ids := t.Meta.RevisionIDs()
	t.Walk(func(it *Item) {
		planned, actual := it.PlannedFillAmount, it.ActualFillAmount
		if !planned.IsSet() && !actual.IsSet() {
			return
		}
		it.PlannedFillAmount = revision.Value[float64]{}
		it.ActualFillAmount = revision.Value[float64]{}

		if len(ids) == 0 {
			if actual.IsSet() {
				it.FillAmount = actual
			} else {
				it.FillAmount = planned
			}
			return
		}

		merged := byRevision(planned, ids)
		for id, v := range byRevision(actual, ids) {
			merged[id] = v
		}
		it.FillAmount = revision.ByID(merged)
	})
}

// byRevision expands v to a map keyed by revision id. List entries past the
// revision count are dropped; scalars are defined at every revision.
func byRevision(v revision.Value[float64], ids []string) map[string]float64 {
	out := make(map[string]float64, len(ids))
	switch v.Kind() {
	case revision.KindScalar:
		s, _ := v.Scalar()
		for _, id := range ids {
			out[id] = s
		}
	case revision.KindList:
		for i, x := range v.List() {
			if i >= len(ids) {
				break
			}
			out[ids[i]] = x
		}
	case revision.KindByID:
		for id, x := range v.ByID() {
			out[id] = x
		}
	}
	return out
}

func densify(t *Tree) {
	ids := t.Meta.RevisionIDs()
	if len(ids) == 0 {
		return
	}
	t.Walk(func(it *Item) {
		it.Amount = it.Amount.Densify(ids, 0)
		it.FillAmount = it.FillAmount.Densify(ids, 0)
		it.PlannedFillAmount = it.PlannedFillAmount.Densify(ids, 0)
		it.ActualFillAmount = it.ActualFillAmount.Densify(ids, 0)
		it.Color = it.Color.Densify(ids, DefaultColor)
		it.URL = it.URL.Densify(ids, DefaultURL)
		for k, v := range it.Attrs {
			it.Attrs[k] = v.Densify(ids, any(0.0))
		}
	})
}

func aggregate(root *Item) {
	Walk(root, func(it *Item) {
		if len(it.Children) == 0 {
			return
		}
		if !it.Amount.IsSet() {
			it.Amount = sumChildren(it.Children, func(c *Item) revision.Value[float64] { return c.Amount })
		}
		if !it.FillAmount.IsSet() {
			it.FillAmount = sumChildren(it.Children, func(c *Item) revision.Value[float64] { return c.FillAmount })
		}
	})
}

func sumChildren(children []*Item, field func(*Item) revision.Value[float64]) revision.Value[float64] {
	total := field(children[0])
	for _, c := range children[1:] {
		total = Add(total, field(c))
	}
	return total
}

// Add sums two revisioned amounts. Scalars broadcast against lists, an
// unset operand is the identity, and lists of different lengths are summed
// up to the longer one with the shorter one clamped. Id-keyed values cannot
// be summed without revision ids and are treated as unset.
func Add(a, b revision.Value[float64]) revision.Value[float64] {
	if a.Kind() == revision.KindByID {
		a = revision.Value[float64]{}
	}
	if b.Kind() == revision.KindByID {
		b = revision.Value[float64]{}
	}
	switch {
	case !a.IsSet():
		return b
	case !b.IsSet():
		return a
	}
	if a.Kind() == revision.KindScalar && b.Kind() == revision.KindScalar {
		x, _ := a.Scalar()
		y, _ := b.Scalar()
		return revision.Scalar(sum(x, y))
	}
	n := max(listLen(a), listLen(b))
	out := make([]float64, n)
	for i := range out {
		x, okx := a.Resolve(i)
		y, oky := b.Resolve(i)
		switch {
		case okx && oky:
			out[i] = sum(x, y)
		case okx:
			out[i] = x
		default:
			out[i] = y
		}
	}
	return revision.List(out...)
}

func listLen(v revision.Value[float64]) int {
	if v.Kind() == revision.KindList {
		return v.Len()
	}
	return 0
}

func sum(x, y float64) float64 {
	return decimal.NewFromFloat(x).Add(decimal.NewFromFloat(y)).InexactFloat64()
}
