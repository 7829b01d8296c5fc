// Package i18n holds the display vocabulary used when formatting amounts.
//
// The table is tiny: magnitude suffixes ("K", "M", "B") and the decimal
// separator ("."). Languages not in the table fall back to their base
// language and then to the default (English) vocabulary.
package i18n

import (
	"maps"
	"slices"

	"golang.org/x/text/language"
)

// Default is the language used when none is configured.
const Default = ""

var translations = map[string]map[string]string{
	Default: {
		"K": "K",
		"M": "M",
		"B": "B",
		".": ".",
	},
	"hy": {
		"K": "հազ",
		"M": "մլն",
		"B": "մլրդ",
		".": ",",
	},
	"et": {
		".": ",",
	},
}

// Translator looks up words for one language.
type Translator struct {
	lang  string
	table map[string]string
}

// New returns a translator for lang. Region and script subtags are ignored
// ("et-EE" uses the "et" table); unknown languages use the default table.
func New(lang string) *Translator {
	key := Match(lang)
	return &Translator{lang: lang, table: translations[key]}
}

// Match returns the translation table key used for lang.
func Match(lang string) string {
	if _, ok := translations[lang]; ok {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return Default
	}
	base, _ := tag.Base()
	if _, ok := translations[base.String()]; ok {
		return base.String()
	}
	return Default
}

// Language returns the language the translator was created for.
func (t *Translator) Language() string { return t.lang }

// Get translates word. Words missing from the language fall back to the
// default vocabulary, then to the word itself.
func (t *Translator) Get(word string) string {
	if t != nil {
		if s, ok := t.table[word]; ok {
			return s
		}
	}
	if s, ok := translations[Default][word]; ok {
		return s
	}
	return word
}

// Languages lists the languages with their own vocabulary.
func Languages() []string {
	langs := slices.Sorted(maps.Keys(translations))
	return slices.DeleteFunc(langs, func(l string) bool { return l == Default })
}
