package flow

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the horizontal advance of a run of text and the height of
// one line under a style. Implementations must be safe for concurrent use.
type Measurer interface {
	Advance(text []rune, style Style) float64
	LineHeight(style Style) float64
}

// CellMeasurer measures text in terminal cells.
type CellMeasurer struct{}

var _ Measurer = CellMeasurer{}

// Advance returns the display width of text in cells.
func (CellMeasurer) Advance(text []rune, _ Style) float64 {
	return float64(ansi.StringWidth(string(text)))
}

// LineHeight is one row plus whole rows of line spacing.
func (CellMeasurer) LineHeight(style Style) float64 {
	spacing := float64(int(style.LineSpacing))
	if spacing < 0 {
		spacing = 0
	}
	return 1 + spacing
}

// FontMeasurer measures text in points using the Go font family.
type FontMeasurer struct {
	dpi float64

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	typeface string
	size     float64
}

var _ Measurer = (*FontMeasurer)(nil)

// NewFontMeasurer creates a measurer rendering at dpi (72 when non-positive).
func NewFontMeasurer(dpi float64) *FontMeasurer {
	if dpi <= 0 {
		dpi = 72
	}
	return &FontMeasurer{
		dpi:   dpi,
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Advance returns the advance width of text in points.
func (m *FontMeasurer) Advance(text []rune, style Style) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	face := m.face(style)
	return fixedToFloat(font.MeasureString(face, string(text)))
}

// LineHeight returns the face's recommended line height scaled by
// 1 + style.LineSpacing.
func (m *FontMeasurer) LineHeight(style Style) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	face := m.face(style)
	spacing := style.LineSpacing
	if spacing < 0 {
		spacing = 0
	}
	return fixedToFloat(face.Metrics().Height) * (1 + spacing)
}

// face returns the cached face for style. Callers hold m.mu. A typeface that
// fails to parse falls back to the fixed 7x13 bitmap face.
func (m *FontMeasurer) face(style Style) font.Face {
	size := style.TextSize
	if size <= 0 {
		size = 12
	}
	key := faceKey{typeface: style.Typeface, size: size}
	if f, ok := m.faces[key]; ok {
		return f
	}

	var face font.Face = basicfont.Face7x13
	if parsed, err := m.parsed(style.Typeface); err == nil {
		if f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     m.dpi,
			Hinting: font.HintingNone,
		}); err == nil {
			face = f
		}
	}

	m.faces[key] = face
	return face
}

func (m *FontMeasurer) parsed(typeface string) (*opentype.Font, error) {
	if f, ok := m.fonts[typeface]; ok {
		return f, nil
	}

	data, err := typefaceData(typeface)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse typeface %q: %w", typeface, err)
	}
	m.fonts[typeface] = f
	return f, nil
}

func typefaceData(typeface string) ([]byte, error) {
	switch typeface {
	case "", TypefaceRegular:
		return goregular.TTF, nil
	case TypefaceBold:
		return gobold.TTF, nil
	case TypefaceItalic:
		return goitalic.TTF, nil
	case TypefaceBoldItalic:
		return gobolditalic.TTF, nil
	case TypefaceMono:
		return gomono.TTF, nil
	default:
		return nil, fmt.Errorf("unknown typeface %q", typeface)
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
