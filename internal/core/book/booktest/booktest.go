// Package booktest provides hand-built layouts for tests of packages that
// consume book.Layout.
package booktest

import (
	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/flow"
)

// Layout is a book.Layout over fixed page lists.
type Layout struct {
	ID      string
	Lengths []int
	Pages   [][]flow.Page
}

var _ book.Layout = (*Layout)(nil)

// Uniform builds sections of pagesPer pages of pageLen runes each.
func Uniform(sections, pagesPer, pageLen int) *Layout {
	sizes := make([][]int, sections)
	for s := range sizes {
		sizes[s] = make([]int, pagesPer)
		for i := range sizes[s] {
			sizes[s][i] = pageLen
		}
	}
	return New(sizes...)
}

// New builds one section per argument from its page lengths. A section with
// no page lengths is empty and gets the single page [0,0).
func New(sections ...[]int) *Layout {
	l := &Layout{ID: "test-book"}
	for _, sizes := range sections {
		pages := make([]flow.Page, 0, max(len(sizes), 1))
		start := 0
		for i, n := range sizes {
			pages = append(pages, flow.Page{Index: i, Start: start, End: start + n})
			start += n
		}
		if len(pages) == 0 {
			pages = append(pages, flow.Page{})
		}
		l.Pages = append(l.Pages, pages)
		l.Lengths = append(l.Lengths, start)
	}
	return l
}

// Page returns the position at the start of book page i. It panics when i is
// out of range.
func (l *Layout) Page(i int) book.Position {
	p, ok := book.FromPageIndex(l, i)
	if !ok {
		panic("booktest: page index out of range")
	}
	return p
}

func (l *Layout) BookID() string { return l.ID }

func (l *Layout) SectionCount() int { return len(l.Pages) }

func (l *Layout) SectionLength(s int) int { return l.Lengths[s] }

func (l *Layout) SectionPages(s int) []flow.Page { return l.Pages[s] }

func (l *Layout) SectionPageCount(s int) int { return len(l.Pages[s]) }
