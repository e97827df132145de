// Package book holds the reading-position algebra over a paginated book:
// positions, page indexes, percentages and the section cache that backs them.
package book

import (
	"fmt"

	"github.com/colonyops/folio/internal/core/flow"
)

// Layout is a paginated view of a book. Positions never hold a reference to
// the book they describe; every position operation takes the Layout
// explicitly, so a position stays meaningful across re-pagination.
type Layout interface {
	BookID() string
	SectionCount() int
	// SectionLength returns the section's text length in runes.
	SectionLength(section int) int
	// SectionPages returns the section's pages; never empty.
	SectionPages(section int) []flow.Page
	// SectionPageCount returns len(SectionPages(section)), possibly without
	// laying the section out again.
	SectionPageCount(section int) int
}

// PageCount returns the number of pages in the whole book.
func PageCount(l Layout) int {
	total := 0
	for s := range l.SectionCount() {
		total += l.SectionPageCount(s)
	}
	return total
}

// TextLength returns the number of runes in the whole book.
func TextLength(l Layout) int {
	total := 0
	for s := range l.SectionCount() {
		total += l.SectionLength(s)
	}
	return total
}

// IsFirstPage reports whether p is on the first page of the book.
func IsFirstPage(l Layout, p Position) bool {
	return p.Section == 0 && p.SectionPageIndex(l) == 0
}

// IsLastPage reports whether p is on the last page of the book. Every section
// has at least one page, so only p's own section is laid out.
func IsLastPage(l Layout, p Position) bool {
	last := l.SectionCount() - 1
	return p.Section == last && p.SectionPageIndex(l) == l.SectionPageCount(last)-1
}

func mustSection(l Layout, section int) {
	if section < 0 || section >= l.SectionCount() {
		panic(fmt.Sprintf("book: section %d out of range [0, %d)", section, l.SectionCount()))
	}
}
