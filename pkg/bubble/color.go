package bubble

import "unicode/utf16"

// Palette is the 20-color categorical palette items are colored from when
// they do not define their own color.
var Palette = [20]string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// HashCode is the 32-bit polynomial string hash h = h*31 + c over UTF-16
// code units, wrapping on overflow.
func HashCode(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// PaletteColor maps a label to a palette entry. Equal labels always get
// the same color.
func PaletteColor(label string) string {
	n := int32(len(Palette))
	return Palette[((HashCode(label)%n)+n)%n]
}
