// Package tui implements the terminal reader.
package tui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/config"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/internal/core/styles"
	"github.com/colonyops/folio/internal/reader"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	statusHeight  = 1
)

type viewState int

const (
	stateReading viewState = iota
	stateOverview
)

// Options configures the reader UI.
type Options struct {
	Config   *config.Config
	Measurer flow.Measurer
	// Watcher reloads the style when the config file changes; may be nil.
	Watcher *reader.ConfigWatcher
	// Now is the animation clock; time.Now when nil.
	Now func() time.Time
}

// signals carries callbacks from the session back into the value-typed model.
type signals struct {
	overview bool
}

// pointer is an in-progress mouse gesture on the page.
type pointer struct {
	active bool
	moved  bool
	startX int
	lastX  int
	lastAt time.Time
	vx     float64 // page widths per second
}

// Model is the bubbletea model of the reader.
type Model struct {
	session  *reader.Session
	cfg      *config.Config
	theme    styles.Theme
	keys     KeyMap
	watcher  *reader.ConfigWatcher
	signals  *signals
	now      func() time.Time
	tick     time.Duration
	width    int
	height   int
	state    viewState
	overview *overviewDialog
	pointer  pointer
	ticking  bool
	notice   string
	quitting bool

	log zerolog.Logger
}

// tickMsg drives turn animations.
type tickMsg time.Time

// layoutDoneMsg carries a finished background layout.
type layoutDoneMsg struct {
	result book.LayoutResult
	err    error
}

// New opens content in a reading session and returns the model around it.
func New(ctx context.Context, content reader.Content, store reader.ProgressStore, opts Options) (Model, error) {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sig := &signals{}
	session, err := reader.Open(ctx, content, store, reader.Options{
		Measurer:        opts.Measurer,
		Viewport:        pageViewport(defaultWidth, defaultHeight),
		Style:           cfg.Style.Flow(),
		CacheSize:       cfg.Reader.CacheSize,
		FlingVelocity:   cfg.Reader.FlingVelocity,
		HotZoneWidth:    cfg.Reader.HotZoneWidth,
		TurnDuration:    cfg.Reader.TurnDuration,
		PrefetchWorkers: cfg.Reader.PrefetchWorkers,
		OnOverview:      func() { sig.overview = true },
		Now:             now,
	})
	if err != nil {
		return Model{}, err
	}

	tick := cfg.Reader.TickInterval
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}

	return Model{
		session: session,
		cfg:     cfg,
		theme:   styles.NewTheme(cfg.Style.Theme, cfg.Style.TextColor, cfg.Style.BgColor),
		keys:    DefaultKeyMap(),
		watcher: opts.Watcher,
		signals: sig,
		now:     now,
		tick:    tick,
		width:   defaultWidth,
		height:  defaultHeight,
		log:     logging.Component("tui"),
	}, nil
}

// Session returns the reading session.
func (m Model) Session() *reader.Session {
	return m.session
}

// Close releases the session.
func (m Model) Close() {
	m.session.Close()
}

func pageViewport(width, height int) flow.Viewport {
	return flow.Viewport{
		Width:  float64(max(width, 0)),
		Height: float64(max(height-statusHeight, 0)),
	}
}

// Init starts background layout and the config watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.prefetch()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Start())
	}
	return tea.Batch(cmds...)
}

func (m Model) prefetch() tea.Cmd {
	run := m.session.Prefetch()
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		res, err := run()
		return layoutDoneMsg{result: res, err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case layoutDoneMsg:
		return m.handleLayoutDone(msg)
	case tickMsg:
		return m.handleTick(time.Time(msg))
	case reader.ConfigChangedMsg:
		return m.handleConfigChanged(msg)
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case tea.MouseClickMsg:
		return m.handleMouseClick(msg.Mouse())
	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg.Mouse())
	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg.Mouse())
	}
	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	if !m.session.Resize(pageViewport(msg.Width, msg.Height)) {
		return m, nil
	}
	m.pointer = pointer{}
	if m.overview != nil {
		m.overview.refresh(m.session.Overview())
	}
	return m, m.prefetch()
}

func (m Model) handleLayoutDone(msg layoutDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Debug().Err(msg.err).Msg("background layout stopped")
		return m, nil
	}
	if m.session.ApplyLayout(msg.result) && m.overview != nil {
		m.overview.refresh(m.session.Overview())
	}
	return m, nil
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.session.Tick(now) {
		return m, m.tickCmd()
	}
	m.ticking = false
	return m, nil
}

func (m Model) handleConfigChanged(msg reader.ConfigChangedMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Start())
	}

	if msg.Err != nil {
		m.notice = "config: " + msg.Err.Error()
		return m, tea.Batch(cmds...)
	}

	m.cfg = msg.Config
	m.theme = styles.NewTheme(m.cfg.Style.Theme, m.cfg.Style.TextColor, m.cfg.Style.BgColor)
	m.notice = ""
	if m.session.SetStyle(m.cfg.Style.Flow()) {
		m.pointer = pointer{}
		cmds = append(cmds, m.prefetch())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.state == stateOverview {
		return m.handleOverviewKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Forward):
		m.session.TurnForward()
	case key.Matches(msg, m.keys.Back):
		m.session.TurnBack()
	case key.Matches(msg, m.keys.Start):
		m.session.JumpStart()
	case key.Matches(msg, m.keys.End):
		m.session.JumpEnd()
	case key.Matches(msg, m.keys.PrevSection):
		m.session.PrevSection()
	case key.Matches(msg, m.keys.NextSection):
		m.session.NextSection()
	case key.Matches(msg, m.keys.Overview):
		m.signals.overview = true
	default:
		if x, ok := percentKey(msg.String()); ok {
			m.session.SeekPercent(x)
		}
	}

	return m.afterInput()
}

func (m Model) handleOverviewKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.session.SeekSection(m.overview.selected())
		m.closeOverview()
	case key.Matches(msg, m.keys.Close):
		m.closeOverview()
	case key.Matches(msg, m.keys.Up):
		m.overview.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.overview.move(1)
	}
	return m, nil
}

func (m *Model) closeOverview() {
	m.state = stateReading
	m.overview = nil
}

func (m Model) handleMouseClick(ms tea.Mouse) (tea.Model, tea.Cmd) {
	if m.state != stateReading || ms.Button != tea.MouseLeft || ms.Y >= m.pageHeight() {
		return m, nil
	}
	m.pointer = pointer{active: true, startX: ms.X, lastX: ms.X, lastAt: m.now()}
	return m, nil
}

func (m Model) handleMouseMotion(ms tea.Mouse) (tea.Model, tea.Cmd) {
	if !m.pointer.active {
		return m, nil
	}
	dx := ms.X - m.pointer.lastX
	if dx == 0 {
		return m, nil
	}

	at := m.now()
	if dt := at.Sub(m.pointer.lastAt).Seconds(); dt > 0 {
		if w := m.session.Display().Viewport().Width; w > 0 {
			m.pointer.vx = float64(dx) / w / dt
		}
	}
	m.pointer.lastX = ms.X
	m.pointer.lastAt = at
	m.pointer.moved = true

	m.session.Drag(float64(dx), 0)
	return m.afterInput()
}

func (m Model) handleMouseRelease(ms tea.Mouse) (tea.Model, tea.Cmd) {
	if !m.pointer.active {
		return m, nil
	}
	p := m.pointer
	m.pointer = pointer{}

	if p.moved {
		m.session.Release(p.vx, 0)
	} else {
		x, y := m.pageCoords(ms)
		m.session.Tap(x, y)
	}
	return m.afterInput()
}

// pageCoords converts a screen cell into the padded page's coordinates, the
// space the controller measures hot zones in.
func (m Model) pageCoords(ms tea.Mouse) (float64, float64) {
	pad := max(m.session.Display().Style().Padding, 0)
	return float64(ms.X) - pad, float64(ms.Y) - pad
}

// afterInput opens a requested overview and starts the animation clock.
func (m Model) afterInput() (tea.Model, tea.Cmd) {
	if m.signals.overview {
		m.signals.overview = false
		m.state = stateOverview
		m.overview = newOverviewDialog(m.session.Overview())
	}

	if m.session.Animating() && !m.ticking {
		m.ticking = true
		return m, m.tickCmd()
	}
	return m, nil
}

func (m Model) pageHeight() int {
	return max(m.height-statusHeight, 0)
}

// View renders the reader.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.BackgroundColor = m.theme.Palette.Background
	return v
}
