// Package reader wires the pagination core into a reading session: the
// display, the shared position, the page-turn controller, the page window and
// progress persistence.
package reader

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/internal/core/position"
	"github.com/colonyops/folio/internal/core/turn"
	"github.com/colonyops/folio/internal/core/window"
	"github.com/colonyops/folio/internal/data/stores"
)

// Content is a book as the session reads it.
type Content interface {
	book.Content
	Title() string
	SectionTitle(section int) string
}

// ProgressStore loads and saves committed positions.
type ProgressStore interface {
	Load(ctx context.Context, bookID string) (stores.Progress, error)
	Save(ctx context.Context, p stores.Progress) error
}

// Options configures a Session.
type Options struct {
	Measurer        flow.Measurer
	Viewport        flow.Viewport
	Style           flow.Style
	CacheSize       int
	FlingVelocity   float64
	HotZoneWidth    float64
	TurnDuration    time.Duration
	PrefetchWorkers int
	// OnOverview is called for taps outside the hot zones.
	OnOverview func()
	// Now is the animation clock; time.Now when nil.
	Now func() time.Time
}

// Session is one open book. It is owned by a single goroutine (the UI loop);
// only the functions returned by Prefetch run elsewhere.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	content   Content
	display   *book.Display
	positions *position.Broadcaster
	turns     *turn.Controller
	window    *window.Window
	store     ProgressStore
	seek      *position.Origin
	opts      Options

	anim        *turn.Animation
	unsubscribe []func()

	log zerolog.Logger
}

// Open builds a session for content and restores its saved position. A nil
// store disables persistence.
func Open(ctx context.Context, content Content, store ProgressStore, opts Options) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TurnDuration <= 0 {
		opts.TurnDuration = turn.DefaultDuration
	}

	display, err := book.NewDisplay(content, book.DisplayOptions{
		Measurer:  opts.Measurer,
		Viewport:  opts.Viewport,
		Style:     opts.Style,
		CacheSize: opts.CacheSize,
	})
	if err != nil {
		return nil, err
	}

	ctx = logging.WithScreenID(logging.WithBookID(ctx, content.ID()), uuid.NewString())
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ctx:     ctx,
		cancel:  cancel,
		content: content,
		display: display,
		store:   store,
		seek:    position.NewOrigin("seek"),
		opts:    opts,
		log:     logging.Component("reader"),
	}

	start := s.restore()
	s.positions = position.NewBroadcaster(start)
	s.turns = turn.NewController(display, s.positions, turn.Options{
		PageWidth:     display.Viewport().Width,
		FlingVelocity: opts.FlingVelocity,
		HotZoneWidth:  opts.HotZoneWidth,
		OnOverview:    opts.OnOverview,
	})
	s.window = window.New(display, window.DisplayLoader(display), s.turns.Origin(), start)

	// The window recycles slots before the session looks at the new state.
	s.turns.Listen(s.window.TurnChanged)
	s.turns.Listen(s.turnChanged)

	s.unsubscribe = append(s.unsubscribe,
		s.positions.Subscribe(s.window.PositionChanged),
		s.positions.Subscribe(func(position.Change) { s.updateFlags() }),
		s.positions.Subscribe(s.persist),
	)
	s.updateFlags()

	s.log.Debug().Ctx(s.ctx).Stringer("position", start).Msg("session opened")
	return s, nil
}

func (s *Session) restore() book.Position {
	start := book.StartOf(s.display)
	if s.store == nil {
		return start
	}

	saved, err := s.store.Load(s.ctx, s.content.ID())
	switch {
	case errors.Is(err, stores.ErrNotFound):
		return start
	case err != nil:
		s.log.Warn().Ctx(s.ctx).Err(err).Msg("failed to load progress, starting at the beginning")
		return start
	}

	p := book.Clamp(s.display, saved.Position)
	if p != saved.Position {
		s.log.Debug().Ctx(s.ctx).
			Stringer("saved", saved.Position).
			Stringer("clamped", p).
			Msg("saved position clamped into book")
	}
	return p
}

// Close stops background work and detaches observers. Pending layout results
// are dropped.
func (s *Session) Close() {
	s.cancel()
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}

// Content returns the open book.
func (s *Session) Content() Content { return s.content }

// Display returns the session's layout.
func (s *Session) Display() *book.Display { return s.display }

// Turns returns the page-turn controller.
func (s *Session) Turns() *turn.Controller { return s.turns }

// Window returns the page window.
func (s *Session) Window() *window.Window { return s.window }

// Position returns the committed position.
func (s *Session) Position() book.Position { return s.positions.Current() }

// Subscribe observes committed position changes.
func (s *Session) Subscribe(fn position.Observer) (unsubscribe func()) {
	return s.positions.Subscribe(fn)
}

// Drag, Release and Tap forward pointer input to the controller.
func (s *Session) Drag(dx, dy float64)    { s.turns.Drag(dx, dy) }
func (s *Session) Release(vx, vy float64) { s.turns.Release(vx, vy) }
func (s *Session) Tap(x, y float64)       { s.turns.Tap(x, y) }

// TurnForward and TurnBack run a full turn, as a hot-zone tap would.
func (s *Session) TurnForward() { s.turns.Turn(true) }

func (s *Session) TurnBack() { s.turns.Turn(false) }

// SeekPercent moves to the given fraction of the book; x is clamped to [0, 1].
func (s *Session) SeekPercent(x float64) {
	x = min(max(x, 0), 1)
	s.seekTo(book.FromPercent(s.display, x))
}

// SeekSection moves to the start of section i, clamped to the book.
func (s *Session) SeekSection(i int) {
	i = min(max(i, 0), s.display.SectionCount()-1)
	s.seekTo(book.StartOfSection(s.display, i))
}

// NextSection moves to the start of the following section, if any.
func (s *Session) NextSection() {
	if cur := s.Position().Section; cur+1 < s.display.SectionCount() {
		s.SeekSection(cur + 1)
	}
}

// PrevSection moves to the start of the current section, or of the previous
// section when already there.
func (s *Session) PrevSection() {
	p := s.Position()
	if p.SectionPageIndex(s.display) > 0 || p.Section == 0 {
		s.SeekSection(p.Section)
		return
	}
	s.SeekSection(p.Section - 1)
}

// JumpStart moves to the first page.
func (s *Session) JumpStart() { s.seekTo(book.StartOf(s.display)) }

// JumpEnd moves to the last page.
func (s *Session) JumpEnd() { s.seekTo(book.EndOf(s.display)) }

func (s *Session) seekTo(p book.Position) {
	s.turns.Reset()
	if !s.positions.Set(s.seek, p) {
		// Unchanged position: the reset may still have moved slots.
		s.window.Sync(p)
	}
}

// Resize changes the viewport. The committed position is kept and every page
// is laid out again. It returns false when nothing changed.
func (s *Session) Resize(vp flow.Viewport) bool {
	if !s.display.Resize(vp) {
		return false
	}
	s.relayout()
	return true
}

// SetStyle changes the text style, keeping the committed position.
func (s *Session) SetStyle(style flow.Style) bool {
	if !s.display.SetStyle(style) {
		return false
	}
	s.relayout()
	return true
}

func (s *Session) relayout() {
	s.turns.Reset()
	s.turns.SetLayout(s.display)
	s.turns.SetPageWidth(s.display.Viewport().Width)
	s.window.SetLayout(s.display, window.DisplayLoader(s.display))
	s.updateFlags()

	s.log.Debug().Ctx(s.ctx).
		Uint64("generation", s.display.Generation()).
		Stringer("position", s.Position()).
		Msg("relayout")
}

// Prefetch returns a function that lays out every section not yet laid out
// under the current viewport and style, or nil when there is nothing to do.
// The function may run on any goroutine; hand its result to ApplyLayout.
func (s *Session) Prefetch() func() (book.LayoutResult, error) {
	job := s.display.NewLayoutJob(s.opts.PrefetchWorkers)
	if job == nil {
		return nil
	}
	ctx := s.ctx
	return func() (book.LayoutResult, error) {
		return job.Run(ctx)
	}
}

// ApplyLayout installs a finished prefetch. Stale results are ignored.
func (s *Session) ApplyLayout(res book.LayoutResult) bool {
	if s.ctx.Err() != nil {
		return false
	}
	return s.display.Apply(res)
}

// Tick advances a running turn animation and reports whether it is still
// running. A finished animation is handed back to the controller, which
// commits completed turns.
func (s *Session) Tick(now time.Time) bool {
	if s.anim == nil {
		return false
	}
	if !s.anim.Done(now) {
		return true
	}
	s.turns.FinishAnimation()
	return s.anim != nil
}

// Reveal returns how much of the Current slot is visible, from 0 to 1, at now.
func (s *Session) Reveal(now time.Time) float64 {
	if s.anim != nil {
		return s.anim.Value(now)
	}
	return s.turns.State().Display()
}

// Animating reports whether a turn animation is running.
func (s *Session) Animating() bool {
	return s.anim != nil
}

func (s *Session) turnChanged(tr turn.Transition) {
	if tr.To.Animating() {
		a := turn.Animate(tr.To, s.opts.TurnDuration, s.opts.Now())
		s.anim = &a
		return
	}
	s.anim = nil
	if tr.To.Kind == turn.Initial {
		// A reset or cancelled turn does not change the position.
		s.updateFlags()
	}
}

func (s *Session) updateFlags() {
	p := s.positions.Current()
	s.turns.SetCanTurnBack(!book.IsFirstPage(s.display, p))
	s.turns.SetCanTurnForward(!book.IsLastPage(s.display, p))
}

func (s *Session) persist(c position.Change) {
	if s.store == nil {
		return
	}

	err := s.store.Save(s.ctx, stores.Progress{
		BookID:   s.content.ID(),
		Title:    s.content.Title(),
		Position: c.Position,
		Percent:  c.Position.ToPercent(s.display),
		Style:    s.display.Style(),
	})
	if err != nil {
		s.log.Error().Ctx(s.ctx).Err(err).Stringer("position", c.Position).Msg("failed to save progress")
	}
}
