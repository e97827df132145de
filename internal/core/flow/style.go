// Package flow lays out flowed section text into lines and viewport-sized pages.
package flow

// Typeface names understood by FontMeasurer. CellMeasurer ignores the typeface.
const (
	TypefaceRegular    = "regular"
	TypefaceBold       = "bold"
	TypefaceItalic     = "italic"
	TypefaceBoldItalic = "bold-italic"
	TypefaceMono       = "mono"
)

// Typefaces lists every supported typeface name.
var Typefaces = []string{TypefaceRegular, TypefaceBold, TypefaceItalic, TypefaceBoldItalic, TypefaceMono}

// Style is the reader's text style. Pagination treats it as an opaque value:
// only the measurer looks inside it, and it is part of the memoization key.
type Style struct {
	TextColor   string  `yaml:"text_color"   json:"text_color"`
	BgColor     string  `yaml:"bg_color"     json:"bg_color"`
	Typeface    string  `yaml:"typeface"     json:"typeface"`
	TextSize    float64 `yaml:"text_size"    json:"text_size"`
	Padding     float64 `yaml:"padding"      json:"padding"`
	LineSpacing float64 `yaml:"line_spacing" json:"line_spacing"`
}
