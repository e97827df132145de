package turn

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/internal/core/position"
)

// Defaults used when Options leaves a field at zero.
const (
	DefaultFlingVelocity = 2.0
	DefaultHotZoneWidth  = 0.2
)

// Positions is the shared position a controller commits turns to.
type Positions interface {
	Current() book.Position
	Set(origin *position.Origin, p book.Position) bool
}

// Options configures a Controller.
type Options struct {
	// PageWidth converts drag distances into turn percents.
	PageWidth float64
	// FlingVelocity is the horizontal release speed, in page widths per
	// second, above which a turn completes regardless of its percent.
	FlingVelocity float64
	// HotZoneWidth is the fraction of the page width at either edge where a
	// tap turns the page.
	HotZoneWidth float64
	// OnOverview is called for a tap outside both hot zones.
	OnOverview func()
}

// Transition is delivered to listeners after every state change.
type Transition struct {
	From State
	To   State
	// Reset marks a turn abandoned by Reset. Nothing is committed, so a
	// Completing From state must be undone rather than settled.
	Reset bool
}

// Listener observes transitions.
type Listener func(Transition)

// Controller turns drag, release and tap input into turn states and commits
// completed turns to the shared position. Input and listener callbacks are
// processed one at a time: input issued from a listener is queued until the
// current event has been fully delivered.
type Controller struct {
	layout    book.Layout
	positions Positions
	origin    *position.Origin
	opts      Options

	state       State
	canForward  bool
	canBack     bool
	listeners   []Listener
	queue       []func()
	dispatching bool

	log zerolog.Logger
}

// NewController creates a controller in the Initial state. Both directions
// start enabled.
func NewController(layout book.Layout, positions Positions, opts Options) *Controller {
	if opts.FlingVelocity <= 0 {
		opts.FlingVelocity = DefaultFlingVelocity
	}
	if opts.HotZoneWidth <= 0 {
		opts.HotZoneWidth = DefaultHotZoneWidth
	}

	return &Controller{
		layout:     layout,
		positions:  positions,
		origin:     position.NewOrigin("turn"),
		opts:       opts,
		state:      Idle(),
		canForward: true,
		canBack:    true,
		log:        logging.Component("turn"),
	}
}

// Origin tags the position changes this controller commits.
func (c *Controller) Origin() *position.Origin {
	return c.origin
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// CanTurnForward reports whether forward turns are enabled.
func (c *Controller) CanTurnForward() bool {
	return c.canForward
}

// CanTurnBack reports whether back turns are enabled.
func (c *Controller) CanTurnBack() bool {
	return c.canBack
}

// Listen registers a listener. Listeners run in registration order.
func (c *Controller) Listen(l Listener) {
	c.listeners = append(c.listeners, l)
}

// SetLayout replaces the layout used to commit turns.
func (c *Controller) SetLayout(l book.Layout) {
	c.dispatch(func() { c.layout = l })
}

// SetPageWidth sets the width drags are measured against.
func (c *Controller) SetPageWidth(w float64) {
	c.dispatch(func() { c.opts.PageWidth = w })
}

// SetCanTurnForward enables or disables starting forward turns.
func (c *Controller) SetCanTurnForward(ok bool) {
	c.dispatch(func() { c.canForward = ok })
}

// SetCanTurnBack enables or disables starting back turns.
func (c *Controller) SetCanTurnBack(ok bool) {
	c.dispatch(func() { c.canBack = ok })
}

// Drag feeds a horizontal pointer movement of dx. Negative dx pulls the page
// towards the left edge, which turns forward.
func (c *Controller) Drag(dx, dy float64) {
	c.dispatch(func() { c.drag(dx) })
}

// Release ends a drag with the pointer velocity, in page widths per second.
func (c *Controller) Release(vx, vy float64) {
	c.dispatch(func() { c.release(vx) })
}

// Tap handles a tap at x, measured from the left edge of the page.
func (c *Controller) Tap(x, y float64) {
	c.dispatch(func() { c.tap(x) })
}

// Turn starts a full turn in one direction, as a hot-zone tap does, without
// depending on the page width.
func (c *Controller) Turn(forward bool) {
	c.dispatch(func() { c.turn(forward) })
}

// FinishAnimation ends a completing or cancelling animation. A completed turn
// is committed to the shared position after listeners have seen the return
// to Initial.
func (c *Controller) FinishAnimation() {
	c.dispatch(c.finish)
}

// Reset abandons any turn without committing it. Listeners see a plain return
// to Initial and must re-sync whatever they display.
func (c *Controller) Reset() {
	c.dispatch(func() {
		if c.state.Kind != Initial {
			c.emit(Idle(), true)
		}
	})
}

func (c *Controller) drag(dx float64) {
	w := c.opts.PageWidth
	if w <= 0 || dx == 0 {
		return
	}
	delta := dx / w

	switch c.state.Kind {
	case Initial:
		switch {
		case dx < 0 && c.canForward:
			c.transition(Began(true))
			c.transition(Turning(true, -delta))
		case dx > 0 && c.canBack:
			c.transition(Began(false))
			c.transition(Turning(false, delta))
		}
	case BeganTurnForward, TurningForwards:
		c.transition(Turning(true, c.state.Percent-delta))
	case BeganTurnBack, TurningBackwards:
		c.transition(Turning(false, c.state.Percent+delta))
	case CompletingTurnBack, CompletingTurnForward, CancellingTurnBack, CancellingTurnForward:
		// The animation owns the page until it finishes.
	}
}

func (c *Controller) release(vx float64) {
	if !c.state.Dragging() {
		return
	}

	forward := c.state.Forward()
	p := c.state.Percent

	switch {
	case math.Abs(vx) > c.opts.FlingVelocity:
		c.transition(Completing(forward, p))
	case p > 0.5:
		c.transition(Completing(forward, p))
	default:
		c.transition(Cancelling(forward, p))
	}
}

func (c *Controller) tap(x float64) {
	if c.state.Kind != Initial {
		return
	}

	w := c.opts.PageWidth
	zone := c.opts.HotZoneWidth * w

	switch {
	case w > 0 && x < zone:
		c.turn(false)
	case w > 0 && x > w-zone:
		c.turn(true)
	default:
		if c.opts.OnOverview != nil {
			c.opts.OnOverview()
		}
	}
}

func (c *Controller) turn(forward bool) {
	if c.state.Kind != Initial {
		return
	}
	if forward && !c.canForward || !forward && !c.canBack {
		return
	}
	c.transition(Began(forward))
	c.transition(Completing(forward, 0))
}

func (c *Controller) finish() {
	from := c.state
	if !from.Animating() {
		return
	}

	c.transition(Idle())

	if !from.Completes() {
		return
	}

	delta := -1
	if from.Forward() {
		delta = 1
	}

	cur := c.positions.Current()
	next, ok := cur.MovedBy(c.layout, delta)
	if !ok {
		c.log.Debug().Stringer("position", cur).Int("delta", delta).Msg("turn past the end of the book")
		return
	}
	c.positions.Set(c.origin, next)
}

func (c *Controller) transition(to State) {
	c.emit(to, false)
}

func (c *Controller) emit(to State, reset bool) {
	from := c.state
	if from == to {
		return
	}
	c.state = to

	c.log.Debug().Stringer("from", from).Stringer("to", to).Bool("reset", reset).Msg("turn transition")

	tr := Transition{From: from, To: to, Reset: reset}
	for _, l := range c.listeners {
		l(tr)
	}
}

// dispatch runs ev now, or after the running event when called re-entrantly.
func (c *Controller) dispatch(ev func()) {
	c.queue = append(c.queue, ev)
	if c.dispatching {
		return
	}

	c.dispatching = true
	defer func() { c.dispatching = false }()

	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		next()
	}
}
