package styles

import (
	"image/color"
	"sort"

	lipgloss "charm.land/lipgloss/v2"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Foreground color.Color
	Background color.Color
	Muted      color.Color
	Accent     color.Color
	Surface    color.Color
	Shadow     color.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "paper"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"paper": {
		Foreground: lipgloss.Color("#2b2b2b"),
		Background: lipgloss.Color("#fafaf7"),
		Muted:      lipgloss.Color("#8a8a85"),
		Accent:     lipgloss.Color("#3b6ea5"),
		Surface:    lipgloss.Color("#ecebe4"),
		Shadow:     lipgloss.Color("#b9b8b0"),
	},
	"sepia": {
		Foreground: lipgloss.Color("#5b4636"),
		Background: lipgloss.Color("#f4ecd8"),
		Muted:      lipgloss.Color("#9c8772"),
		Accent:     lipgloss.Color("#a0522d"),
		Surface:    lipgloss.Color("#e8dcc0"),
		Shadow:     lipgloss.Color("#c8b896"),
	},
	"night": {
		Foreground: lipgloss.Color("#c8c8c8"),
		Background: lipgloss.Color("#121212"),
		Muted:      lipgloss.Color("#6c6c6c"),
		Accent:     lipgloss.Color("#d7a65f"),
		Surface:    lipgloss.Color("#1f1f1f"),
		Shadow:     lipgloss.Color("#000000"),
	},
	"tokyo-night": {
		Foreground: lipgloss.Color("#c0caf5"),
		Background: lipgloss.Color("#1a1b26"),
		Muted:      lipgloss.Color("#565f89"),
		Accent:     lipgloss.Color("#7aa2f7"),
		Surface:    lipgloss.Color("#3b4261"),
		Shadow:     lipgloss.Color("#0f0f17"),
	},
	"gruvbox": {
		Foreground: lipgloss.Color("#ebdbb2"),
		Background: lipgloss.Color("#282828"),
		Muted:      lipgloss.Color("#665c54"),
		Accent:     lipgloss.Color("#83a598"),
		Surface:    lipgloss.Color("#3c3836"),
		Shadow:     lipgloss.Color("#1d2021"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}
