package flow

import "sync"

// Viewport is the area a page must fit in, in measurer units.
type Viewport struct {
	Width  float64
	Height float64
}

// Empty reports whether the viewport cannot hold any text.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

type layoutKey struct {
	viewport Viewport
	style    Style
}

// Renderer paginates one section's text and memoizes the result against the
// (viewport, style) pair it was computed for. Asking for a different pair
// recomputes the whole section.
type Renderer struct {
	text     []rune
	measurer Measurer

	mu     sync.Mutex
	key    layoutKey
	pages  []Page
	valid  bool
	builds int
}

// NewRenderer creates a renderer for text measured by m.
func NewRenderer(text string, m Measurer) *Renderer {
	return &Renderer{
		text:     []rune(text),
		measurer: m,
	}
}

// Len returns the section length in runes.
func (r *Renderer) Len() int {
	return len(r.text)
}

// Pages returns the pages of the section for the viewport and style.
func (r *Renderer) Pages(vp Viewport, style Style) []Page {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := layoutKey{viewport: vp, style: style}
	if r.valid && r.key == key {
		return r.pages
	}

	r.pages = Layout(r.text, vp.Width, vp.Height, style, r.measurer)
	r.key = key
	r.valid = true
	r.builds++
	return r.pages
}

// Seed installs pages computed elsewhere for the viewport and style, so a
// later Pages call with the same pair does not lay the section out again.
func (r *Renderer) Seed(vp Viewport, style Style, pages []Page) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.key = layoutKey{viewport: vp, style: style}
	r.pages = pages
	r.valid = true
}

// Text returns the runes in [start, end) as a string, clamped to the section.
func (r *Renderer) Text(start, end int) string {
	start = min(max(start, 0), len(r.text))
	end = min(max(end, start), len(r.text))
	return string(r.text[start:end])
}

// Builds returns how many times the section has been laid out.
func (r *Renderer) Builds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builds
}
