package book

import (
	"fmt"
	"math"
	"sort"

	"github.com/colonyops/folio/internal/core/flow"
)

// Position identifies a reading location: a rune offset inside one section
// of one book. It is a plain comparable value.
//
// A position is valid for a layout when 0 <= Section < SectionCount and
// 0 <= Char < SectionLength(Section); the only valid char of an empty
// section is 0. Operations on an invalid position panic: that is a caller
// bug, not a runtime condition.
type Position struct {
	BookID  string `json:"book_id"`
	Section int    `json:"section"`
	Char    int    `json:"char"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Section, p.Char)
}

// Valid reports whether p addresses a character of l.
func (p Position) Valid(l Layout) bool {
	if p.Section < 0 || p.Section >= l.SectionCount() {
		return false
	}
	n := l.SectionLength(p.Section)
	if n == 0 {
		return p.Char == 0
	}
	return p.Char >= 0 && p.Char < n
}

func (p Position) mustValid(l Layout) {
	if !p.Valid(l) {
		if p.Section < 0 || p.Section >= l.SectionCount() {
			mustSection(l, p.Section)
		}
		panic(fmt.Sprintf("book: char %d out of range for section %d of length %d",
			p.Char, p.Section, l.SectionLength(p.Section)))
	}
}

// Page returns the page of p's section that holds p.Char.
func (p Position) Page(l Layout) flow.Page {
	pages := l.SectionPages(p.Section)
	return pages[p.sectionPageIndex(l, pages)]
}

// SectionPageIndex returns the index of p's page within its section.
func (p Position) SectionPageIndex(l Layout) int {
	return p.sectionPageIndex(l, l.SectionPages(p.Section))
}

func (p Position) sectionPageIndex(l Layout, pages []flow.Page) int {
	p.mustValid(l)

	// Last page starting at or before the char. Under a degenerate viewport
	// the only page is [0,0) and every char maps to it.
	i := sort.Search(len(pages), func(i int) bool {
		return pages[i].Start > p.Char
	})
	return max(i-1, 0)
}

// PageIndex returns the index of p's page counted from the start of the book.
func (p Position) PageIndex(l Layout) int {
	idx := p.SectionPageIndex(l)
	for s := range p.Section {
		idx += l.SectionPageCount(s)
	}
	return idx
}

// MovedBy returns the position delta pages away, at the start of that page.
// ok is false when the move would leave the book. Moving by zero returns p
// unchanged.
func (p Position) MovedBy(l Layout, delta int) (Position, bool) {
	if delta == 0 {
		p.mustValid(l)
		return p, true
	}
	return FromPageIndex(l, p.PageIndex(l)+delta)
}

// ToPercent returns the fraction of the book's text that precedes p.
func (p Position) ToPercent(l Layout) float64 {
	p.mustValid(l)

	total := TextLength(l)
	if total == 0 {
		return 0
	}

	consumed := p.Char
	for s := range p.Section {
		consumed += l.SectionLength(s)
	}
	return float64(consumed) / float64(total)
}

// FromPageIndex returns the position at the start of the i-th page of the
// book. ok is false when i is outside [0, PageCount).
func FromPageIndex(l Layout, i int) (Position, bool) {
	if i < 0 {
		return Position{}, false
	}

	for s := range l.SectionCount() {
		n := l.SectionPageCount(s)
		if i < n {
			pages := l.SectionPages(s)
			return Position{BookID: l.BookID(), Section: s, Char: pages[i].Start}, true
		}
		i -= n
	}

	return Position{}, false
}

// FromPercent returns the position at the given fraction of the book's text.
// x must lie in [0, 1].
func FromPercent(l Layout, x float64) Position {
	if math.IsNaN(x) || x < 0 || x > 1 {
		panic(fmt.Sprintf("book: percent %v out of range [0, 1]", x))
	}

	total := TextLength(l)
	if total == 0 {
		return StartOf(l)
	}
	target := int(math.Floor(x*float64(total) + 1e-9))
	if target >= total {
		return EndOf(l)
	}

	for s := range l.SectionCount() {
		n := l.SectionLength(s)
		if target < n {
			return Position{BookID: l.BookID(), Section: s, Char: target}
		}
		target -= n
	}

	return EndOf(l)
}

// StartOf returns the first position of the book.
func StartOf(l Layout) Position {
	return StartOfSection(l, 0)
}

// EndOf returns the last character position of the book.
func EndOf(l Layout) Position {
	return EndOfSection(l, l.SectionCount()-1)
}

// StartOfSection returns the first position of section s.
func StartOfSection(l Layout, s int) Position {
	mustSection(l, s)
	return Position{BookID: l.BookID(), Section: s, Char: 0}
}

// EndOfSection returns the position of the last character of section s, or
// its start when the section is empty.
func EndOfSection(l Layout, s int) Position {
	mustSection(l, s)
	return Position{BookID: l.BookID(), Section: s, Char: max(l.SectionLength(s)-1, 0)}
}

// Clamp maps an arbitrary position (for example one restored from storage
// after the book changed) onto the nearest valid position of l.
func Clamp(l Layout, p Position) Position {
	if p.Section < 0 {
		return StartOf(l)
	}
	if p.Section >= l.SectionCount() {
		return EndOf(l)
	}
	n := l.SectionLength(p.Section)
	p.BookID = l.BookID()
	p.Char = min(max(p.Char, 0), max(n-1, 0))
	return p
}
