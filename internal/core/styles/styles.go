// Package styles provides the lipgloss v2 styles of the reader.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme is a palette with the reader's styles derived from it.
type Theme struct {
	Palette Palette

	Page        lipgloss.Style
	Edge        lipgloss.Style
	Status      lipgloss.Style
	StatusMuted lipgloss.Style
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	Selected    lipgloss.Style
	Help        lipgloss.Style
}

// NewTheme builds the named theme, falling back to DefaultTheme for unknown
// names. Non-empty textColor and bgColor override the palette's page colours.
func NewTheme(name, textColor, bgColor string) Theme {
	p, ok := GetPalette(name)
	if !ok {
		p = themes[DefaultTheme]
	}
	if c, err := colorful.Hex(textColor); err == nil {
		p.Foreground = c
	}
	if c, err := colorful.Hex(bgColor); err == nil {
		p.Background = c
	}

	return Theme{
		Palette: p,
		Page: lipgloss.NewStyle().
			Foreground(p.Foreground).
			Background(p.Background),
		Edge: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Shadow),
		Status: lipgloss.NewStyle().
			Foreground(p.Foreground).
			Background(p.Surface).
			Padding(0, 1),
		StatusMuted: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Surface),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Foreground(p.Foreground).
			Background(p.Background).
			Padding(1, 2),
		DialogTitle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Accent),
		Help: lipgloss.NewStyle().
			Foreground(p.Muted),
	}
}

// Shade blends the page background towards the shadow colour. amount 0 is
// the background, 1 the shadow. It tints the strip under a turning page.
func (t Theme) Shade(amount float64) color.Color {
	amount = min(max(amount, 0), 1)
	bg, ok := colorful.MakeColor(t.Palette.Background)
	if !ok {
		return t.Palette.Background
	}
	shadow, ok := colorful.MakeColor(t.Palette.Shadow)
	if !ok {
		return t.Palette.Background
	}
	return bg.BlendLab(shadow, amount).Clamped()
}
