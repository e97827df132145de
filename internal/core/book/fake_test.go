package book

import (
	"github.com/colonyops/folio/internal/core/flow"
)

// fakeLayout is a Layout with hand-built page lists.
type fakeLayout struct {
	id      string
	lengths []int
	pages   [][]flow.Page
}

var _ Layout = (*fakeLayout)(nil)

// newUniformLayout builds sections of pagesPer pages of pageLen runes each.
func newUniformLayout(sections, pagesPer, pageLen int) *fakeLayout {
	sizes := make([][]int, sections)
	for s := range sizes {
		sizes[s] = make([]int, pagesPer)
		for i := range sizes[s] {
			sizes[s][i] = pageLen
		}
	}
	return newLayout(sizes...)
}

// newLayout builds one section per argument; each int is a page length. A
// section with no page lengths is empty and gets the single page [0,0).
func newLayout(sections ...[]int) *fakeLayout {
	l := &fakeLayout{id: "book-1"}
	for _, sizes := range sections {
		var pages []flow.Page
		start := 0
		for i, n := range sizes {
			pages = append(pages, flow.Page{Index: i, Start: start, End: start + n})
			start += n
		}
		if len(pages) == 0 {
			pages = []flow.Page{{}}
		}
		l.pages = append(l.pages, pages)
		l.lengths = append(l.lengths, start)
	}
	return l
}

func (l *fakeLayout) BookID() string                 { return l.id }
func (l *fakeLayout) SectionCount() int              { return len(l.pages) }
func (l *fakeLayout) SectionLength(s int) int        { return l.lengths[s] }
func (l *fakeLayout) SectionPages(s int) []flow.Page { return l.pages[s] }
func (l *fakeLayout) SectionPageCount(s int) int     { return len(l.pages[s]) }
