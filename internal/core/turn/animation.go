package turn

import (
	"math"
	"time"
)

// DefaultDuration is the length of a full-width turn animation.
const DefaultDuration = 250 * time.Millisecond

// Animation eases a display value from one end to the other. The duration is
// scaled by the distance covered, so finishing a nearly complete turn is
// quick.
type Animation struct {
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// Animate builds the animation for an animating state starting at now.
func Animate(s State, full time.Duration, now time.Time) Animation {
	if full <= 0 {
		full = DefaultDuration
	}
	from, to := s.Display(), s.Target()
	return Animation{
		From:     from,
		To:       to,
		Start:    now,
		Duration: time.Duration(float64(full) * math.Abs(to-from)),
	}
}

// Progress returns the linear progress in [0, 1] at now.
func (a Animation) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	t := float64(now.Sub(a.Start)) / float64(a.Duration)
	return min(max(t, 0), 1)
}

// Value returns the eased display value at now.
func (a Animation) Value(now time.Time) float64 {
	t := a.Progress(now)
	eased := 1 - math.Pow(1-t, 3)
	return a.From + (a.To-a.From)*eased
}

// Done reports whether the animation has reached its end at now.
func (a Animation) Done(now time.Time) bool {
	return a.Progress(now) >= 1
}
