package reader

import "github.com/colonyops/folio/internal/core/book"

// Status summarises the committed position for a status bar.
type Status struct {
	Title        string
	SectionTitle string
	Section      int
	Sections     int
	Page         int // 1-based page number in the book
	Pages        int // 0 until every section has been laid out
	Percent      float64
}

// Status returns the status of the committed position. Page numbers lay out
// the sections before the current one; the total is only reported once
// background layout has finished so the status bar never blocks on it.
func (s *Session) Status() Status {
	p := s.Position()
	st := Status{
		Title:        s.content.Title(),
		SectionTitle: s.content.SectionTitle(p.Section),
		Section:      p.Section,
		Sections:     s.display.SectionCount(),
		Page:         p.PageIndex(s.display) + 1,
		Percent:      p.ToPercent(s.display),
	}
	if s.display.LaidOut() == st.Sections {
		st.Pages = book.PageCount(s.display)
	}
	return st
}

// SectionInfo is one row of the overview.
type SectionInfo struct {
	Index   int
	Title   string
	Percent float64 // where the section starts
	Pages   int     // 0 while not laid out
	Current bool
}

// Overview lists every section with its start percent and known page count.
func (s *Session) Overview() []SectionInfo {
	cur := s.Position().Section
	n := s.display.SectionCount()
	out := make([]SectionInfo, n)
	for i := range n {
		out[i] = SectionInfo{
			Index:   i,
			Title:   s.content.SectionTitle(i),
			Percent: book.StartOfSection(s.display, i).ToPercent(s.display),
			Pages:   s.display.KnownPageCount(i),
			Current: i == cur,
		}
	}
	return out
}
