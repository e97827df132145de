package flow

import (
	"unicode"

	"github.com/go-text/typesetting/segmenter"
)

// BreakLines splits text into lines no wider than width. Lines end at Unicode
// line-break opportunities; a mandatory break (newline) always ends a line and
// a single segment wider than width is split between runes. Trailing
// whitespace does not count towards a line's width. The returned lines are
// contiguous and cover text exactly.
func BreakLines(text []rune, width float64, style Style, m Measurer) []Line {
	if len(text) == 0 {
		return nil
	}

	var (
		lines      []Line
		lineStart  int
		lineWidth  float64
		y          float64
		lineHeight = m.LineHeight(style)
	)

	emit := func(end int) {
		lines = append(lines, Line{Start: lineStart, End: end, Top: y, Height: lineHeight})
		y += lineHeight
		lineStart = end
		lineWidth = 0
	}

	var seg segmenter.Segmenter
	seg.Init(text)
	iter := seg.LineIterator()

	for iter.Next() {
		segment := iter.Line()
		segStart := segment.Offset
		segEnd := segStart + len(segment.Text)
		visEnd := segStart + visibleLen(segment.Text)
		visWidth := m.Advance(text[segStart:visEnd], style)

		if lineStart < segStart && lineWidth+visWidth > width {
			emit(segStart)
		}

		if lineStart == segStart && visWidth > width {
			pos := segStart
			for pos < visEnd {
				n := fitRunes(text[pos:visEnd], width, style, m)
				if pos+n >= visEnd {
					break
				}
				emit(pos + n)
				pos += n
			}
			lineWidth = m.Advance(text[lineStart:segEnd], style)
		} else {
			lineWidth += m.Advance(text[segStart:segEnd], style)
		}

		if segment.IsMandatoryBreak && segEnd > lineStart {
			emit(segEnd)
		}
	}

	if lineStart < len(text) {
		emit(len(text))
	}

	return lines
}

// visibleLen returns the length of runes without trailing whitespace.
func visibleLen(runes []rune) int {
	n := len(runes)
	for n > 0 && unicode.IsSpace(runes[n-1]) {
		n--
	}
	return n
}

// fitRunes returns how many leading runes of text fit in width, never less
// than one so that layout always makes progress.
func fitRunes(text []rune, width float64, style Style, m Measurer) int {
	var used float64
	for i := range text {
		used += m.Advance(text[i:i+1], style)
		if used > width {
			return max(i, 1)
		}
	}
	return len(text)
}

// Paginate groups lines into pages. A line joins the current page while its
// bottom minus the page's top stays within height; the first line that would
// overflow starts a new page at its own start offset. The last page always
// ends at textLen. With no lines the result is the single page [0, textLen).
func Paginate(lines []Line, height float64, textLen int) []Page {
	if len(lines) == 0 {
		return []Page{{Index: 0, Start: 0, End: textLen}}
	}

	var (
		pages     []Page
		pageStart = 0
		pageTop   = lines[0].Top
		first     = 0
	)

	for i, ln := range lines {
		if i > first && ln.Bottom()-pageTop > height {
			pages = append(pages, Page{
				Index: len(pages),
				Start: pageStart,
				End:   ln.Start,
				Lines: lines[first:i:i],
			})
			pageStart = ln.Start
			pageTop = ln.Top
			first = i
		}
	}

	return append(pages, Page{
		Index: len(pages),
		Start: pageStart,
		End:   textLen,
		Lines: lines[first:],
	})
}

// Layout paginates text for a viewport. A non-positive viewport dimension
// yields exactly one page spanning the empty string.
func Layout(text []rune, width, height float64, style Style, m Measurer) []Page {
	if width <= 0 || height <= 0 {
		return []Page{{Index: 0, Start: 0, End: 0}}
	}
	return Paginate(BreakLines(text, width, style, m), height, len(text))
}
