package turn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnimate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := Animate(Completing(true, 0.5), time.Second, start)
	assert.InDelta(t, 0.5, a.From, 1e-12)
	assert.InDelta(t, 0.0, a.To, 1e-12)
	assert.Equal(t, 500*time.Millisecond, a.Duration, "scaled by distance")

	assert.InDelta(t, 0.5, a.Value(start), 1e-12)
	assert.False(t, a.Done(start))

	prev := a.Value(start)
	for ms := 50; ms <= 500; ms += 50 {
		v := a.Value(start.Add(time.Duration(ms) * time.Millisecond))
		assert.LessOrEqual(t, v, prev, "monotonic at %dms", ms)
		prev = v
	}

	end := start.Add(500 * time.Millisecond)
	assert.True(t, a.Done(end))
	assert.InDelta(t, 0.0, a.Value(end), 1e-12)
	assert.InDelta(t, 0.0, a.Value(end.Add(time.Hour)), 1e-12)
}

func TestAnimate_EasesOut(t *testing.T) {
	start := time.Now()
	a := Animate(Completing(false, 0), time.Second, start)

	// Ease-out covers more than half the distance in the first half.
	assert.Greater(t, a.Value(start.Add(500*time.Millisecond)), 0.5)
}

func TestAnimate_DefaultsAndZeroDistance(t *testing.T) {
	start := time.Now()

	a := Animate(Completing(false, 0), 0, start)
	assert.Equal(t, DefaultDuration, a.Duration)

	still := Animate(Completing(false, 1), time.Second, start)
	assert.True(t, still.Done(start))
	assert.InDelta(t, 1.0, still.Value(start), 1e-12)
}
