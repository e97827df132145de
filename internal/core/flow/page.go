package flow

// Line is one laid-out line: the half-open rune range [Start, End) of the
// section text and its vertical extent in measurer units.
type Line struct {
	Start  int
	End    int
	Top    float64
	Height float64
}

// Bottom returns the y coordinate just below the line.
func (l Line) Bottom() float64 {
	return l.Top + l.Height
}

// Page is a half-open rune range [Start, End) of a section together with its
// index within the section and the lines it holds.
type Page struct {
	Index int
	Start int
	End   int
	Lines []Line
}

// Contains reports whether char lies inside the page's range.
func (p Page) Contains(char int) bool {
	return char >= p.Start && char < p.End
}

// Len returns the number of runes on the page.
func (p Page) Len() int {
	return p.End - p.Start
}
