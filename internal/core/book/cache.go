package book

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/pkg/kv"
)

// DefaultCacheSize is the number of section renderers kept when none is configured.
const DefaultCacheSize = 2

// SectionCache lazily builds section renderers and keeps the most recently
// used ones. There is no invalidation: a new viewport or style gets a new cache.
type SectionCache struct {
	maxSection int
	build      func(section int) *flow.Renderer
	lru        *kv.LRU[int, *flow.Renderer]
	evictions  atomic.Int64

	log zerolog.Logger
}

// NewSectionCache creates a cache for sections [0, maxSection] holding at most
// capacity renderers. build is only ever called with an in-range index.
func NewSectionCache(maxSection, capacity int, build func(section int) *flow.Renderer) *SectionCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	c := &SectionCache{
		maxSection: maxSection,
		build:      build,
		log:        logging.Component("section-cache"),
	}
	c.lru = kv.NewLRU(capacity, kv.WithEvictHook(c.evicted))
	return c
}

func (c *SectionCache) evicted(section int, r *flow.Renderer) {
	c.evictions.Add(1)
	c.log.Debug().Int("section", section).Int("runes", r.Len()).Msg("section evicted")
}

// Get returns the renderer for section, building it on a miss. Indexes
// outside [0, maxSection] report absence without calling build.
func (c *SectionCache) Get(section int) (*flow.Renderer, bool) {
	if section < 0 || section > c.maxSection {
		return nil, false
	}
	return c.lru.GetOrCreate(section, c.build), true
}

// Peek returns the renderer for section only if it is already cached.
func (c *SectionCache) Peek(section int) (*flow.Renderer, bool) {
	if section < 0 || section > c.maxSection {
		return nil, false
	}
	return c.lru.Peek(section)
}

// Len returns the number of cached renderers.
func (c *SectionCache) Len() int {
	return c.lru.Len()
}

// Evictions returns how many renderers capacity pressure has dropped.
func (c *SectionCache) Evictions() int {
	return int(c.evictions.Load())
}

// Cached returns the cached section indexes, most recently used first.
func (c *SectionCache) Cached() []int {
	return c.lru.Keys()
}
