package reader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/position"
	"github.com/colonyops/folio/internal/core/turn"
	"github.com/colonyops/folio/internal/core/window"
	"github.com/colonyops/folio/internal/data/stores"
	"github.com/colonyops/folio/internal/source"
)

// memStore is an in-memory ProgressStore.
type memStore struct {
	mu      sync.Mutex
	saved   map[string]stores.Progress
	saves   []stores.Progress
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{saved: map[string]stores.Progress{}}
}

func (m *memStore) Load(_ context.Context, id string) (stores.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return stores.Progress{}, m.loadErr
	}
	p, ok := m.saved[id]
	if !ok {
		return stores.Progress{}, stores.ErrNotFound
	}
	return p, nil
}

func (m *memStore) Save(_ context.Context, p stores.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, p)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[p.BookID] = p
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func testBook() *source.Book {
	return source.New("book-1", "Test Book", []source.Section{
		{Title: "One", Text: words(60)},
		{Title: "Two", Text: words(60)},
		{Title: "Three", Text: words(10)},
	})
}

type harness struct {
	s         *Session
	store     *memStore
	now       time.Time
	overviews int
}

func newHarness(t *testing.T, store *memStore) *harness {
	t.Helper()
	h := &harness{store: store, now: time.Unix(100, 0)}

	var ps ProgressStore
	if store != nil {
		ps = store
	}

	s, err := Open(context.Background(), testBook(), ps, Options{
		Viewport:     flow.Viewport{Width: 20, Height: 3},
		CacheSize:    2,
		TurnDuration: 200 * time.Millisecond,
		OnOverview:   func() { h.overviews++ },
		Now:          func() time.Time { return h.now },
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	h.s = s
	return h
}

// finish runs the current animation to its end.
func (h *harness) finish(t *testing.T) {
	t.Helper()
	require.True(t, h.s.Animating(), "expected a running animation")
	h.now = h.now.Add(time.Second)
	assert.False(t, h.s.Tick(h.now))
}

func (h *harness) page(t *testing.T, i int) book.Position {
	t.Helper()
	p, ok := book.FromPageIndex(h.s.Display(), i)
	require.True(t, ok)
	return p
}

func TestOpen_StartsAtBeginning(t *testing.T) {
	h := newHarness(t, newMemStore())

	assert.Equal(t, book.StartOf(h.s.Display()), h.s.Position())
	assert.False(t, h.s.Turns().CanTurnBack())
	assert.True(t, h.s.Turns().CanTurnForward())
	assert.Equal(t, h.s.Position(), h.s.Window().Anchor())
	assert.Nil(t, h.s.Window().Slot(window.Prev))
	assert.Zero(t, h.store.saveCount(), "opening does not save")
}

func TestOpen_EmptyBook(t *testing.T) {
	_, err := Open(context.Background(), source.New("x", "x", nil), nil, Options{})
	assert.ErrorIs(t, err, book.ErrEmptyBook)
}

func TestOpen_RestoresSavedPosition(t *testing.T) {
	store := newMemStore()
	store.saved["book-1"] = stores.Progress{
		BookID:   "book-1",
		Position: book.Position{BookID: "book-1", Section: 1, Char: 25},
	}

	h := newHarness(t, store)

	assert.Equal(t, book.Position{BookID: "book-1", Section: 1, Char: 25}, h.s.Position())
	assert.True(t, h.s.Turns().CanTurnBack())
}

func TestOpen_ClampsSavedPosition(t *testing.T) {
	store := newMemStore()
	store.saved["book-1"] = stores.Progress{
		BookID:   "book-1",
		Position: book.Position{BookID: "book-1", Section: 9, Char: 5000},
	}

	h := newHarness(t, store)

	assert.Equal(t, book.EndOf(h.s.Display()), h.s.Position())
	assert.False(t, h.s.Turns().CanTurnForward())
}

func TestOpen_LoadErrorStartsAtBeginning(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("disk on fire")

	h := newHarness(t, store)
	assert.Equal(t, book.StartOf(h.s.Display()), h.s.Position())
}

func TestSession_TapForwardCommitsAfterAnimation(t *testing.T) {
	h := newHarness(t, newMemStore())
	start := h.s.Position()

	h.s.TurnForward()
	assert.Equal(t, turn.CompletingTurnForward, h.s.Turns().State().Kind)
	assert.Equal(t, start, h.s.Position(), "not committed before the animation ends")
	assert.True(t, h.s.Tick(h.now), "animation still running")
	assert.InDelta(t, 1, h.s.Reveal(h.now), 1e-9)

	h.finish(t)

	want := h.page(t, 1)
	assert.Equal(t, want, h.s.Position())
	assert.Equal(t, want, h.s.Window().Anchor())
	assert.Equal(t, turn.Initial, h.s.Turns().State().Kind)
	assert.True(t, h.s.Turns().CanTurnBack())

	require.Equal(t, 1, h.store.saveCount())
	saved := h.store.saved["book-1"]
	assert.Equal(t, want, saved.Position)
	assert.Equal(t, "Test Book", saved.Title)
	assert.InDelta(t, want.ToPercent(h.s.Display()), saved.Percent, 1e-9)
}

func TestSession_RevealEasesTowardsTarget(t *testing.T) {
	h := newHarness(t, nil)

	h.s.TurnForward()
	h.now = h.now.Add(100 * time.Millisecond)

	v := h.s.Reveal(h.now)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestSession_TapBackReturnsToPreviousPage(t *testing.T) {
	h := newHarness(t, newMemStore())

	h.s.TurnForward()
	h.finish(t)
	h.s.TurnForward()
	h.finish(t)
	require.Equal(t, h.page(t, 2), h.s.Position())

	h.s.TurnBack()
	h.finish(t)

	assert.Equal(t, h.page(t, 1), h.s.Position())
	assert.Equal(t, h.page(t, 1), h.s.Window().Anchor())
	assert.Equal(t, 3, h.store.saveCount())
}

func TestSession_BackTapDisabledOnFirstPage(t *testing.T) {
	h := newHarness(t, newMemStore())

	h.s.TurnBack()
	assert.Equal(t, turn.Initial, h.s.Turns().State().Kind)
	assert.False(t, h.s.Animating())
	assert.Zero(t, h.overviews, "disabled hot zone does nothing")
}

func TestSession_CancelledDragKeepsPosition(t *testing.T) {
	h := newHarness(t, newMemStore())
	start := h.s.Position()

	h.s.Drag(-4, 0)
	assert.Equal(t, turn.TurningForwards, h.s.Turns().State().Kind)
	assert.InDelta(t, 0.8, h.s.Reveal(h.now), 1e-9)

	h.s.Release(0, 0)
	assert.Equal(t, turn.CancellingTurnForward, h.s.Turns().State().Kind)
	h.finish(t)

	assert.Equal(t, start, h.s.Position())
	assert.Zero(t, h.store.saveCount())
}

func TestSession_FlingCompletes(t *testing.T) {
	h := newHarness(t, nil)

	h.s.Drag(-2, 0)
	h.s.Release(-5, 0)
	h.finish(t)

	assert.Equal(t, h.page(t, 1), h.s.Position())
}

func TestSession_MiddleTapOpensOverview(t *testing.T) {
	h := newHarness(t, nil)

	h.s.Tap(10, 1)
	assert.Equal(t, 1, h.overviews)
	assert.Equal(t, turn.Initial, h.s.Turns().State().Kind)
}

func TestSession_Seeks(t *testing.T) {
	h := newHarness(t, newMemStore())
	d := h.s.Display()

	tests := []struct {
		name string
		do   func()
		want book.Position
	}{
		{"section", func() { h.s.SeekSection(1) }, book.StartOfSection(d, 1)},
		{"section clamped", func() { h.s.SeekSection(99) }, book.StartOfSection(d, 2)},
		{"start", h.s.JumpStart, book.StartOf(d)},
		{"end", h.s.JumpEnd, book.EndOf(d)},
		{"percent", func() { h.s.SeekPercent(0.5) }, book.FromPercent(d, 0.5)},
		{"percent clamped", func() { h.s.SeekPercent(-3) }, book.StartOf(d)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.do()
			assert.Equal(t, tt.want, h.s.Position())
			assert.Equal(t, tt.want, h.s.Window().Anchor())
			assert.Equal(t, !book.IsFirstPage(d, tt.want), h.s.Turns().CanTurnBack())
			assert.Equal(t, !book.IsLastPage(d, tt.want), h.s.Turns().CanTurnForward())
		})
	}
}

func TestSession_SeekToSamePositionDoesNotSave(t *testing.T) {
	h := newHarness(t, newMemStore())

	h.s.JumpStart()
	assert.Zero(t, h.store.saveCount())
}

func TestSession_SeekAbandonsDrag(t *testing.T) {
	h := newHarness(t, newMemStore())
	h.s.SeekSection(1)

	h.s.Drag(4, 0)
	require.Equal(t, turn.TurningBackwards, h.s.Turns().State().Kind)

	h.s.JumpEnd()

	assert.Equal(t, turn.Initial, h.s.Turns().State().Kind)
	assert.False(t, h.s.Animating())
	assert.Equal(t, book.EndOf(h.s.Display()), h.s.Window().Anchor())
	cur := h.s.Window().Slot(window.Current)
	require.NotNil(t, cur)
	assert.True(t, cur.Page.Contains(h.s.Position().Char) || cur.Page.Len() == 0)
}

func TestSession_SectionNavigation(t *testing.T) {
	h := newHarness(t, nil)
	d := h.s.Display()

	h.s.NextSection()
	assert.Equal(t, book.StartOfSection(d, 1), h.s.Position())

	h.s.TurnForward()
	h.finish(t)
	h.s.PrevSection()
	assert.Equal(t, book.StartOfSection(d, 1), h.s.Position(), "back to the section start first")

	h.s.PrevSection()
	assert.Equal(t, book.StartOfSection(d, 0), h.s.Position())

	h.s.PrevSection()
	assert.Equal(t, book.StartOfSection(d, 0), h.s.Position())

	h.s.SeekSection(2)
	h.s.NextSection()
	assert.Equal(t, book.StartOfSection(d, 2), h.s.Position())
}

func TestSession_ResizeKeepsPosition(t *testing.T) {
	h := newHarness(t, newMemStore())
	h.s.SeekSection(1)
	h.s.TurnForward()
	h.finish(t)
	before := h.s.Position()
	gen := h.s.Display().Generation()
	saves := h.store.saveCount()

	assert.False(t, h.s.Resize(flow.Viewport{Width: 20, Height: 3}))
	require.True(t, h.s.Resize(flow.Viewport{Width: 12, Height: 5}))

	assert.Greater(t, h.s.Display().Generation(), gen)
	assert.Equal(t, before, h.s.Position())
	assert.Equal(t, before, h.s.Window().Anchor())
	assert.Equal(t, saves, h.store.saveCount(), "relayout does not commit")

	cur := h.s.Window().Slot(window.Current)
	require.NotNil(t, cur)
	assert.True(t, cur.Page.Contains(before.Char))
}

func TestSession_RelayoutMidTurnKeepsWindowOnPosition(t *testing.T) {
	tests := []struct {
		name  string
		turn  func(s *Session)
		kind  turn.Kind
		apply func(s *Session) bool
	}{
		{
			name:  "resize during forward turn",
			turn:  (*Session).TurnForward,
			kind:  turn.CompletingTurnForward,
			apply: func(s *Session) bool { return s.Resize(flow.Viewport{Width: 12, Height: 5}) },
		},
		{
			name:  "resize during back turn",
			turn:  (*Session).TurnBack,
			kind:  turn.CompletingTurnBack,
			apply: func(s *Session) bool { return s.Resize(flow.Viewport{Width: 12, Height: 5}) },
		},
		{
			name: "style change during forward turn",
			turn: (*Session).TurnForward,
			kind: turn.CompletingTurnForward,
			apply: func(s *Session) bool {
				st := s.Display().Style()
				st.LineSpacing = 2
				return s.SetStyle(st)
			},
		},
		{
			name: "style change during back turn",
			turn: (*Session).TurnBack,
			kind: turn.CompletingTurnBack,
			apply: func(s *Session) bool {
				st := s.Display().Style()
				st.LineSpacing = 2
				return s.SetStyle(st)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newMemStore())
			h.s.SeekSection(1)
			h.s.TurnForward()
			h.finish(t)
			before := h.s.Position()
			saves := h.store.saveCount()

			tt.turn(h.s)
			require.Equal(t, tt.kind, h.s.Turns().State().Kind)
			require.True(t, tt.apply(h.s))

			assert.False(t, h.s.Animating())
			assert.Equal(t, before, h.s.Position())
			assert.Equal(t, h.s.Position(), h.s.Window().Anchor())
			assert.Equal(t, saves, h.store.saveCount())

			cur := h.s.Window().Slot(window.Current)
			require.NotNil(t, cur)
			assert.True(t, cur.Page.Contains(h.s.Position().Char))
			assert.Equal(t, h.s.Position().Section, cur.Position.Section)
		})
	}
}

func TestSession_KeyTurnsWithoutPageWidth(t *testing.T) {
	h := newHarness(t, newMemStore())
	require.True(t, h.s.Resize(flow.Viewport{}))
	require.Zero(t, h.s.Display().Viewport().Width)

	h.s.TurnForward()
	require.Equal(t, turn.CompletingTurnForward, h.s.Turns().State().Kind)
	h.finish(t)

	assert.Equal(t, 1, h.s.Position().Section, "every section is one page")
	assert.Zero(t, h.overviews, "keys turn instead of opening the overview")

	h.s.TurnBack()
	h.finish(t)
	assert.Equal(t, 0, h.s.Position().Section)
	assert.Zero(t, h.overviews)
}

func TestSession_SetStyle(t *testing.T) {
	h := newHarness(t, newMemStore())

	style := h.s.Display().Style()
	assert.False(t, h.s.SetStyle(style))

	style.Padding = 1
	assert.True(t, h.s.SetStyle(style))
	assert.Equal(t, style, h.s.Display().Style())

	h.s.TurnForward()
	h.finish(t)
	assert.Equal(t, style, h.store.saved["book-1"].Style)
}

func TestSession_PrefetchAndApply(t *testing.T) {
	h := newHarness(t, nil)

	assert.Zero(t, h.s.Status().Pages, "total unknown before layout")

	run := h.s.Prefetch()
	require.NotNil(t, run)
	res, err := run()
	require.NoError(t, err)
	require.True(t, h.s.ApplyLayout(res))

	assert.Nil(t, h.s.Prefetch(), "nothing left to lay out")
	assert.Equal(t, book.PageCount(h.s.Display()), h.s.Status().Pages)
}

func TestSession_StalePrefetchDiscarded(t *testing.T) {
	h := newHarness(t, nil)

	run := h.s.Prefetch()
	require.NotNil(t, run)
	h.s.Resize(flow.Viewport{Width: 30, Height: 3})

	res, err := run()
	require.NoError(t, err)
	assert.False(t, h.s.ApplyLayout(res))
}

func TestSession_CloseCancelsPrefetch(t *testing.T) {
	h := newHarness(t, nil)

	run := h.s.Prefetch()
	require.NotNil(t, run)
	h.s.Close()

	_, err := run()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.s.ApplyLayout(book.LayoutResult{Generation: h.s.Display().Generation()}))
}

func TestSession_SaveErrorDoesNotBlockTurns(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("read-only")
	h := newHarness(t, store)

	h.s.TurnForward()
	h.finish(t)

	assert.Equal(t, h.page(t, 1), h.s.Position())
	assert.Equal(t, 1, h.store.saveCount())
}

func TestSession_StatusAndOverview(t *testing.T) {
	h := newHarness(t, nil)
	h.s.SeekSection(1)

	st := h.s.Status()
	assert.Equal(t, "Test Book", st.Title)
	assert.Equal(t, "Two", st.SectionTitle)
	assert.Equal(t, 1, st.Section)
	assert.Equal(t, 3, st.Sections)
	assert.Equal(t, h.s.Display().SectionPageCount(0)+1, st.Page)
	assert.InDelta(t, h.s.Position().ToPercent(h.s.Display()), st.Percent, 1e-9)

	ov := h.s.Overview()
	require.Len(t, ov, 3)
	assert.Equal(t, "One", ov[0].Title)
	assert.Zero(t, ov[0].Percent)
	assert.True(t, ov[1].Current)
	assert.False(t, ov[0].Current)
	assert.Greater(t, ov[2].Percent, ov[1].Percent)
	assert.Positive(t, ov[1].Pages)
}

func TestSession_SubscribeSeesCommits(t *testing.T) {
	h := newHarness(t, nil)

	var got []book.Position
	unsub := h.s.Subscribe(func(c position.Change) { got = append(got, c.Position) })

	h.s.TurnForward()
	h.finish(t)
	unsub()
	h.s.JumpEnd()

	assert.Equal(t, []book.Position{h.page(t, 1)}, got)
}
