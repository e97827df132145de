// Package turn implements the page-turn gesture state machine.
package turn

import (
	"fmt"
	"math"
)

// Kind enumerates the turn states.
type Kind int

const (
	Initial Kind = iota
	BeganTurnBack
	BeganTurnForward
	TurningBackwards
	TurningForwards
	CompletingTurnBack
	CompletingTurnForward
	CancellingTurnBack
	CancellingTurnForward
)

func (k Kind) String() string {
	switch k {
	case Initial:
		return "initial"
	case BeganTurnBack:
		return "began-turn-back"
	case BeganTurnForward:
		return "began-turn-forward"
	case TurningBackwards:
		return "turning-backwards"
	case TurningForwards:
		return "turning-forwards"
	case CompletingTurnBack:
		return "completing-turn-back"
	case CompletingTurnForward:
		return "completing-turn-forward"
	case CancellingTurnBack:
		return "cancelling-turn-back"
	case CancellingTurnForward:
		return "cancelling-turn-forward"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is a turn state. Percent is how far the page has turned in the
// active direction; for completing and cancelling states it is the percent
// the animation starts from. Construct states with the functions below so the
// percent is always within [0, 1].
type State struct {
	Kind    Kind
	Percent float64
}

func clamp(p float64) float64 {
	switch {
	case p < 0 || math.IsNaN(p):
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Idle is the resting state.
func Idle() State { return State{Kind: Initial} }

// Began returns the state that starts a turn in the given direction.
func Began(forward bool) State {
	if forward {
		return State{Kind: BeganTurnForward}
	}
	return State{Kind: BeganTurnBack}
}

// Turning returns an in-progress drag in the given direction.
func Turning(forward bool, percent float64) State {
	if forward {
		return State{Kind: TurningForwards, Percent: clamp(percent)}
	}
	return State{Kind: TurningBackwards, Percent: clamp(percent)}
}

// Completing returns the animation that finishes a turn from percent.
func Completing(forward bool, from float64) State {
	if forward {
		return State{Kind: CompletingTurnForward, Percent: clamp(from)}
	}
	return State{Kind: CompletingTurnBack, Percent: clamp(from)}
}

// Cancelling returns the animation that undoes a turn from percent.
func Cancelling(forward bool, from float64) State {
	if forward {
		return State{Kind: CancellingTurnForward, Percent: clamp(from)}
	}
	return State{Kind: CancellingTurnBack, Percent: clamp(from)}
}

func (s State) String() string {
	switch s.Kind {
	case TurningBackwards, TurningForwards,
		CompletingTurnBack, CompletingTurnForward,
		CancellingTurnBack, CancellingTurnForward:
		return fmt.Sprintf("%s(%.3f)", s.Kind, s.Percent)
	default:
		return s.Kind.String()
	}
}

// Forward reports whether the state belongs to a forward turn.
func (s State) Forward() bool {
	switch s.Kind {
	case BeganTurnForward, TurningForwards, CompletingTurnForward, CancellingTurnForward:
		return true
	default:
		return false
	}
}

// Dragging reports whether the state follows the pointer.
func (s State) Dragging() bool {
	switch s.Kind {
	case BeganTurnBack, BeganTurnForward, TurningBackwards, TurningForwards:
		return true
	default:
		return false
	}
}

// Animating reports whether the state is a completing or cancelling animation.
func (s State) Animating() bool {
	switch s.Kind {
	case CompletingTurnBack, CompletingTurnForward, CancellingTurnBack, CancellingTurnForward:
		return true
	default:
		return false
	}
}

// Completes reports whether the state ends in a committed page change.
func (s State) Completes() bool {
	return s.Kind == CompletingTurnBack || s.Kind == CompletingTurnForward
}

// Display returns the visible fraction of the animated slot: the turned
// percent for back turns, which slide the previous page in, and its
// complement for forward turns, which slide the current page out.
func (s State) Display() float64 {
	switch s.Kind {
	case Initial:
		return 1
	case BeganTurnBack:
		return 0
	case BeganTurnForward:
		return 1
	case TurningBackwards, CompletingTurnBack, CancellingTurnBack:
		return s.Percent
	case TurningForwards, CompletingTurnForward, CancellingTurnForward:
		return 1 - s.Percent
	default:
		panic(fmt.Sprintf("turn: unknown kind %d", int(s.Kind)))
	}
}

// Target returns the display value an animating state ends at. For other
// states it equals Display.
func (s State) Target() float64 {
	switch s.Kind {
	case CompletingTurnBack, CancellingTurnForward:
		return 1
	case CompletingTurnForward, CancellingTurnBack:
		return 0
	default:
		return s.Display()
	}
}
