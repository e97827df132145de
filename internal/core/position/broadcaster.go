// Package position holds the canonical reading position of a session and
// tells observers who changed it.
package position

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/logging"
)

// Origin identifies whoever issued a change. Origins compare by pointer, so
// two origins with the same name are still different origins.
type Origin struct {
	name string
}

// NewOrigin creates a new origin. The name only shows up in logs.
func NewOrigin(name string) *Origin {
	return &Origin{name: name}
}

func (o *Origin) String() string {
	if o == nil {
		return "<nil>"
	}
	return o.name
}

// Change is one accepted update of the current position.
type Change struct {
	Origin   *Origin
	Position book.Position
}

// Observer is called for every accepted change.
type Observer func(Change)

type subscriber struct {
	id int
	fn Observer
}

// Broadcaster owns the current position. Set publishes to observers
// synchronously and in order; a Set issued while a publication is running
// (from an observer or another goroutine) is queued behind it so that two
// publications never overlap.
type Broadcaster struct {
	mu          sync.Mutex
	current     book.Position
	subscribers []subscriber
	nextID      int
	pending     []Change
	publishing  bool

	log zerolog.Logger
}

// NewBroadcaster creates a broadcaster holding initial.
func NewBroadcaster(initial book.Position) *Broadcaster {
	return &Broadcaster{
		current: initial,
		log:     logging.Component("broadcaster"),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broadcaster) Subscribe(fn Observer) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers = append(b.subscribers, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subscribers {
			if s.id == id {
				b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Current returns the latest accepted position, including one whose
// publication is still queued.
func (b *Broadcaster) Current() book.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Set makes p the current position. It reports false, and publishes
// nothing, when p equals the current position.
func (b *Broadcaster) Set(origin *Origin, p book.Position) bool {
	b.mu.Lock()
	if p == b.current {
		b.mu.Unlock()
		return false
	}

	b.current = p
	b.pending = append(b.pending, Change{Origin: origin, Position: p})
	if b.publishing {
		b.mu.Unlock()
		return true
	}

	b.publishing = true
	b.mu.Unlock()

	b.drain()
	return true
}

func (b *Broadcaster) drain() {
	finished := false
	defer func() {
		if finished {
			return
		}
		// An observer panicked; let the next Set publish again.
		b.mu.Lock()
		b.publishing = false
		b.mu.Unlock()
	}()

	for {
		b.mu.Lock()
		if len(b.pending) == 0 {
			b.publishing = false
			b.mu.Unlock()
			finished = true
			return
		}
		c := b.pending[0]
		b.pending = b.pending[1:]
		subs := make([]subscriber, len(b.subscribers))
		copy(subs, b.subscribers)
		b.mu.Unlock()

		b.log.Debug().
			Stringer("origin", c.Origin).
			Stringer("position", c.Position).
			Msg("position changed")

		for _, s := range subs {
			s.fn(c)
		}
	}
}
