package bubble

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/budgetbubbles/pkg/i18n"
)

var magnitudes = []struct {
	limit  float64
	div    float64
	suffix string
}{
	{1e6, 1e3, "K"},
	{1e9, 1e6, "M"},
	{math.Inf(1), 1e9, "B"},
}

// FormatAmount renders an amount with a magnitude suffix: 950 → "950",
// 12500 → "12.5K", 1234567 → "1.235M". Precision shrinks as the scaled
// value grows so the text stays short. Languages with a decimal comma pad
// fractional values to five characters.
func FormatAmount(v float64, tr *i18n.Translator) string {
	if v < 0 {
		return "-" + FormatAmount(-v, tr)
	}
	if v < 1e3 {
		return strconv.FormatFloat(roundHalfUp(v), 'f', -1, 64)
	}
	for _, m := range magnitudes {
		if v < m.limit {
			return commaFormat(v/m.div, tr) + tr.Get(m.suffix)
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func commaFormat(v float64, tr *i18n.Translator) string {
	var places int32
	switch total := roundHalfUp(v); {
	case total >= 1000:
		places = 0
	case total >= 100:
		places = 1
	case total >= 10:
		places = 2
	default:
		places = 3
	}
	s := decimal.NewFromFloat(v).Round(places).String()
	if sep := tr.Get("."); sep != "." && strings.Contains(s, ".") {
		s = strings.Replace(s, ".", sep, 1)
		for len([]rune(s)) < 5 {
			s += "0"
		}
	}
	return s
}

// roundHalfUp rounds halves up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
