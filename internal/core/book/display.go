package book

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
)

// ErrEmptyBook is returned when content has no sections.
var ErrEmptyBook = errors.New("book has no sections")

// Content provides the flowed text of each section. Implementations must be
// safe for concurrent SectionText calls; background layout reads from
// worker goroutines.
type Content interface {
	ID() string
	SectionCount() int
	SectionText(section int) (string, error)
}

// DisplayOptions configures a Display.
type DisplayOptions struct {
	Measurer  flow.Measurer
	Viewport  flow.Viewport // outer size; padding is taken off inside
	Style     flow.Style
	CacheSize int
}

// Display binds content to a viewport, style and measurer. It implements
// Layout and is owned by a single reading screen; it is not safe for
// concurrent use.
type Display struct {
	content  Content
	measurer flow.Measurer
	outer    flow.Viewport
	inner    flow.Viewport
	style    flow.Style
	capacity int

	lengths    []int
	counts     []int // 0 = not laid out under the current generation
	laid       map[int][]flow.Page
	generation uint64
	cache      *SectionCache

	log zerolog.Logger
}

var _ Layout = (*Display)(nil)

// NewDisplay reads every section once to learn its length and prepares an
// empty section cache.
func NewDisplay(content Content, opts DisplayOptions) (*Display, error) {
	n := content.SectionCount()
	if n == 0 {
		return nil, ErrEmptyBook
	}

	lengths := make([]int, n)
	for s := range n {
		text, err := content.SectionText(s)
		if err != nil {
			return nil, fmt.Errorf("read section %d: %w", s, err)
		}
		lengths[s] = len([]rune(text))
	}

	m := opts.Measurer
	if m == nil {
		m = flow.CellMeasurer{}
	}

	d := &Display{
		content:  content,
		measurer: m,
		outer:    opts.Viewport,
		style:    opts.Style,
		capacity: opts.CacheSize,
		lengths:  lengths,
		log:      logging.BookComponent("display", content.ID()),
	}
	d.relayout()
	return d, nil
}

// BookID returns the content's identifier.
func (d *Display) BookID() string {
	return d.content.ID()
}

// SectionCount returns the number of sections.
func (d *Display) SectionCount() int {
	return len(d.lengths)
}

// SectionLength returns the rune length of section s.
func (d *Display) SectionLength(s int) int {
	mustSection(d, s)
	return d.lengths[s]
}

// SectionPages lays out section s (or reuses a cached layout).
func (d *Display) SectionPages(s int) []flow.Page {
	mustSection(d, s)
	r, _ := d.cache.Get(s)
	pages := r.Pages(d.inner, d.style)
	d.counts[s] = len(pages)
	return pages
}

// SectionPageCount returns the page count of s, laying it out only if the
// count is not known for the current viewport and style.
func (d *Display) SectionPageCount(s int) int {
	mustSection(d, s)
	if c := d.counts[s]; c > 0 {
		return c
	}
	return len(d.SectionPages(s))
}

// KnownPageCount returns the page count of s if it is already known under
// the current viewport and style, or 0.
func (d *Display) KnownPageCount(s int) int {
	mustSection(d, s)
	return d.counts[s]
}

// PageText returns the text of the page holding p.
func (d *Display) PageText(p Position) string {
	page := p.Page(d)
	r, _ := d.cache.Get(p.Section)
	return r.Text(page.Start, page.End)
}

// PageLines returns the page's lines without their line terminators.
func (d *Display) PageLines(section int, page flow.Page) []string {
	r, ok := d.cache.Get(section)
	if !ok {
		return nil
	}
	lines := make([]string, len(page.Lines))
	for i, ln := range page.Lines {
		lines[i] = strings.TrimRight(r.Text(ln.Start, ln.End), " \t\r\n")
	}
	return lines
}

// Resize changes the outer viewport. It returns false when nothing changed.
// A change starts a new layout generation with an empty cache.
func (d *Display) Resize(vp flow.Viewport) bool {
	if vp == d.outer {
		return false
	}
	d.outer = vp
	d.relayout()
	return true
}

// SetStyle changes the text style. It returns false when nothing changed.
func (d *Display) SetStyle(style flow.Style) bool {
	if style == d.style {
		return false
	}
	d.style = style
	d.relayout()
	return true
}

// Viewport returns the inner viewport pages are laid out in.
func (d *Display) Viewport() flow.Viewport {
	return d.inner
}

// Style returns the current style.
func (d *Display) Style() flow.Style {
	return d.style
}

// Generation identifies the current (viewport, style) layout.
func (d *Display) Generation() uint64 {
	return d.generation
}

// Cache exposes the section cache.
func (d *Display) Cache() *SectionCache {
	return d.cache
}

// LaidOut reports how many sections have a known page count.
func (d *Display) LaidOut() int {
	n := 0
	for _, c := range d.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

func (d *Display) relayout() {
	pad := max(d.style.Padding, 0)
	d.inner = flow.Viewport{
		Width:  d.outer.Width - 2*pad,
		Height: d.outer.Height - 2*pad,
	}
	d.generation++
	d.counts = make([]int, len(d.lengths))
	d.laid = make(map[int][]flow.Page)
	d.cache = NewSectionCache(len(d.lengths)-1, d.capacity, d.buildRenderer)

	d.log.Debug().
		Uint64("generation", d.generation).
		Float64("width", d.inner.Width).
		Float64("height", d.inner.Height).
		Msg("layout reset")
}

func (d *Display) buildRenderer(s int) *flow.Renderer {
	text, err := d.content.SectionText(s)
	if err != nil {
		d.log.Error().Err(err).Int("section", s).Msg("failed to read section text")
		text = ""
	}
	r := flow.NewRenderer(text, d.measurer)
	if pages, ok := d.laid[s]; ok {
		r.Seed(d.inner, d.style, pages)
	}
	d.log.Debug().Int("section", s).Msg("section renderer built")
	return r
}
