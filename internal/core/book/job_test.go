package book

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/flow"
)

func TestLayoutJob_RunAndApply(t *testing.T) {
	c := newMemContent(words(40), words(80), words(5))
	d := newTestDisplay(t, c, flow.Viewport{Width: 20, Height: 3})
	d.SectionPageCount(2)

	job := d.NewLayoutJob(2)
	require.NotNil(t, job)
	assert.Equal(t, []int{0, 1}, job.Sections())

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	require.True(t, d.Apply(res))
	assert.Equal(t, 3, d.LaidOut())

	want := flow.Layout([]rune(words(80)), 20, 3, flow.Style{}, flow.CellMeasurer{})
	assert.Equal(t, len(want), d.SectionPageCount(1))

	// Applied pages seed the renderer built on first access.
	reads := c.readCount(1)
	assert.Equal(t, want, d.SectionPages(1))
	r, ok := d.Cache().Peek(1)
	require.True(t, ok)
	assert.Equal(t, 0, r.Builds())
	assert.Equal(t, reads+1, c.readCount(1))

	assert.Nil(t, d.NewLayoutJob(2), "nothing left to lay out")
}

func TestLayoutJob_StaleResultDiscarded(t *testing.T) {
	d := newTestDisplay(t, newMemContent(words(40)), flow.Viewport{Width: 20, Height: 3})

	job := d.NewLayoutJob(0)
	require.NotNil(t, job)

	res, err := job.Run(context.Background())
	require.NoError(t, err)

	d.Resize(flow.Viewport{Width: 30, Height: 3})
	assert.False(t, d.Apply(res))
	assert.Equal(t, 0, d.LaidOut())
}

func TestLayoutJob_Cancelled(t *testing.T) {
	d := newTestDisplay(t, newMemContent(words(10), words(10)), flow.Viewport{Width: 20, Height: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.NewLayoutJob(1).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLayoutJob_ReadError(t *testing.T) {
	c := newMemContent("a", "b")
	d := newTestDisplay(t, c, flow.Viewport{Width: 20, Height: 3})

	boom := errors.New("boom")
	c.failOn = map[int]error{1: boom}

	_, err := d.NewLayoutJob(2).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
