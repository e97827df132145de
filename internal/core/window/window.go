// Package window keeps the previous, current and next pages ready for
// display and recycles them as turns complete.
package window

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/internal/core/position"
	"github.com/colonyops/folio/internal/core/turn"
)

// Page is the content of one slot.
type Page struct {
	Position book.Position
	Page     flow.Page
	Lines    []string
}

// Loader produces the content for the page holding p.
type Loader func(p book.Position) Page

// DisplayLoader loads pages from a display.
func DisplayLoader(d *book.Display) Loader {
	return func(p book.Position) Page {
		page := p.Page(d)
		return Page{
			Position: p,
			Page:     page,
			Lines:    d.PageLines(p.Section, page),
		}
	}
}

// Slot names a window position.
type Slot int

const (
	Prev Slot = iota
	Current
	Next
)

func (s Slot) String() string {
	switch s {
	case Prev:
		return "prev"
	case Current:
		return "current"
	case Next:
		return "next"
	default:
		return "slot(?)"
	}
}

// Window holds three recyclable page slots. Outside a turn they show the
// anchor's previous page, the anchor's page and its next page. During a turn
// the Current slot is the animated page and Next is the page underneath it.
type Window struct {
	layout book.Layout
	load   Loader
	origin *position.Origin

	slots  [3]Page // overwritten in place on every load
	filled [3]bool
	head   int // index of Prev in slots
	anchor book.Position
	loads  int

	log zerolog.Logger
}

// New creates a window anchored at p. Changes tagged with origin that land on
// the window's own anchor are treated as already applied.
func New(layout book.Layout, load Loader, origin *position.Origin, p book.Position) *Window {
	w := &Window{
		layout: layout,
		load:   load,
		origin: origin,
		log:    logging.Component("window"),
	}
	w.Sync(p)
	return w
}

// Slot returns the content of s, or nil when the slot is empty. The page is
// owned by the window and is overwritten when its storage is recycled.
func (w *Window) Slot(s Slot) *Page {
	i := w.index(s)
	if !w.filled[i] {
		return nil
	}
	return &w.slots[i]
}

// Anchor returns the committed position the window is arranged around.
func (w *Window) Anchor() book.Position {
	return w.anchor
}

// Loads returns how many pages have been loaded so far.
func (w *Window) Loads() int {
	return w.loads
}

// SetLayout swaps the layout and reloads every slot around the anchor.
func (w *Window) SetLayout(l book.Layout, load Loader) {
	w.layout = l
	w.load = load
	w.Sync(book.Clamp(l, w.anchor))
}

// Sync anchors the window at p and reloads all three slots.
func (w *Window) Sync(p book.Position) {
	w.anchor = p
	w.head = 0
	w.fill(Prev, -1)
	w.fill(Current, 0)
	w.fill(Next, 1)

	w.log.Debug().Stringer("anchor", p).Msg("window synced")
}

// TurnChanged recycles slots for a turn transition. Register it as a
// controller listener ahead of anything that reads the slots.
func (w *Window) TurnChanged(tr turn.Transition) {
	switch tr.To.Kind {
	case turn.BeganTurnBack:
		// Old prev becomes the animated page over the old current.
		w.rotate(-1)
		w.fill(Prev, -2)
	case turn.Initial:
		if tr.Reset {
			w.abandon(tr.From)
			return
		}
		w.settle(tr.From)
	case turn.BeganTurnForward, turn.TurningBackwards, turn.TurningForwards,
		turn.CompletingTurnBack, turn.CompletingTurnForward,
		turn.CancellingTurnBack, turn.CancellingTurnForward:
	}
}

func (w *Window) settle(from turn.State) {
	switch from.Kind {
	case turn.CompletingTurnBack:
		if p, ok := w.anchor.MovedBy(w.layout, -1); ok {
			w.anchor = p
		}
	case turn.CompletingTurnForward:
		w.rotate(1)
		if p, ok := w.anchor.MovedBy(w.layout, 1); ok {
			w.anchor = p
		}
		w.fill(Next, 1)
	case turn.CancellingTurnBack, turn.BeganTurnBack, turn.TurningBackwards:
		// Undo the rotation made when the back turn began.
		w.rotate(1)
		w.fill(Next, 1)
	case turn.Initial, turn.CancellingTurnForward, turn.BeganTurnForward, turn.TurningForwards:
	}
}

// abandon restores the pre-turn slots for a turn that was reset without
// committing. Only back turns have rotated by then.
func (w *Window) abandon(from turn.State) {
	if from.Kind == turn.Initial || from.Forward() {
		return
	}
	w.rotate(1)
	w.fill(Next, 1)
}

// PositionChanged re-syncs the window for changes it did not cause.
func (w *Window) PositionChanged(c position.Change) {
	if c.Origin == w.origin && c.Position == w.anchor {
		return
	}
	w.Sync(c.Position)
}

func (w *Window) index(s Slot) int {
	return (w.head + int(s)) % 3
}

// rotate shifts the window by n pages: 1 moves every page one slot towards
// Prev, -1 one slot towards Next. The storage that wraps around must be
// refilled by the caller.
func (w *Window) rotate(n int) {
	w.head = ((w.head+n)%3 + 3) % 3
}

// fill loads the page offset pages from the anchor into s, or empties s when
// that page is outside the book.
func (w *Window) fill(s Slot, offset int) {
	i := w.index(s)
	p, ok := w.anchor.MovedBy(w.layout, offset)
	if !ok {
		w.slots[i] = Page{}
		w.filled[i] = false
		return
	}
	w.slots[i] = w.load(p)
	w.filled[i] = true
	w.loads++
}
