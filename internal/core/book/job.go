package book

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/colonyops/folio/internal/core/flow"
)

// DefaultLayoutWorkers bounds background layout fan-out when none is configured.
const DefaultLayoutWorkers = 4

// LayoutJob lays out sections off the owner goroutine. It captures the
// display's viewport, style and generation when created and shares no
// mutable state with the display.
type LayoutJob struct {
	generation uint64
	content    Content
	measurer   flow.Measurer
	viewport   flow.Viewport
	style      flow.Style
	sections   []int
	workers    int
}

// LayoutResult carries finished page lists back to the owner.
type LayoutResult struct {
	Generation uint64
	Pages      map[int][]flow.Page
}

// NewLayoutJob creates a job for every section whose page count is unknown
// under the current generation. It returns nil when there is nothing to do.
func (d *Display) NewLayoutJob(workers int) *LayoutJob {
	var sections []int
	for s, c := range d.counts {
		if c == 0 {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultLayoutWorkers
	}

	return &LayoutJob{
		generation: d.generation,
		content:    d.content,
		measurer:   d.measurer,
		viewport:   d.inner,
		style:      d.style,
		sections:   sections,
		workers:    workers,
	}
}

// Generation returns the layout generation the job was planned for.
func (j *LayoutJob) Generation() uint64 {
	return j.generation
}

// Sections returns the sections the job lays out.
func (j *LayoutJob) Sections() []int {
	return j.sections
}

// Run lays out the job's sections. It stops early and returns ctx.Err()
// when ctx is cancelled; partial results are never returned.
func (j *LayoutJob) Run(ctx context.Context) (LayoutResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)

	results := make([][]flow.Page, len(j.sections))
	for i, s := range j.sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := j.content.SectionText(s)
			if err != nil {
				return fmt.Errorf("read section %d: %w", s, err)
			}
			results[i] = flow.Layout([]rune(text), j.viewport.Width, j.viewport.Height, j.style, j.measurer)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return LayoutResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return LayoutResult{}, err
	}

	res := LayoutResult{
		Generation: j.generation,
		Pages:      make(map[int][]flow.Page, len(j.sections)),
	}
	for i, s := range j.sections {
		res.Pages[s] = results[i]
	}
	return res, nil
}

// Apply installs a finished job's results. Results from an older generation
// are discarded and Apply returns false.
func (d *Display) Apply(res LayoutResult) bool {
	if res.Generation != d.generation {
		d.log.Debug().
			Uint64("result", res.Generation).
			Uint64("current", d.generation).
			Msg("discarding stale layout result")
		return false
	}

	for s, pages := range res.Pages {
		if s < 0 || s >= len(d.counts) || len(pages) == 0 {
			continue
		}
		d.counts[s] = len(pages)
		d.laid[s] = pages
		if r, ok := d.cache.Peek(s); ok {
			r.Seed(d.inner, d.style, pages)
		}
	}
	return true
}
