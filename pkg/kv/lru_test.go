package kv

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant[K comparable, V any](v V) func(K) V {
	return func(K) V { return v }
}

func TestLRU_GetOrCreate(t *testing.T) {
	c := NewLRU[int, string](2)
	calls := 0
	create := func(k int) string {
		calls++
		return "section " + strconv.Itoa(k)
	}

	assert.Equal(t, "section 1", c.GetOrCreate(1, create))
	assert.Equal(t, "section 1", c.GetOrCreate(1, create))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRU(2, WithEvictHook(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.GetOrCreate("a", constant[string](1))
	c.GetOrCreate("b", constant[string](2))
	c.GetOrCreate("a", constant[string](9)) // hit; b is now the oldest
	c.GetOrCreate("c", constant[string](3))

	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, []string{"c", "a"}, c.Keys())

	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, v, "a hit never rebuilds")
}

func TestLRU_PeekDoesNotTouchRecency(t *testing.T) {
	c := NewLRU[string, int](2)
	c.GetOrCreate("a", constant[string](1))
	c.GetOrCreate("b", constant[string](2))

	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.GetOrCreate("c", constant[string](3))
	_, ok = c.Peek("a")
	assert.False(t, ok, "a stayed oldest and should be evicted")

	_, ok = c.Peek("missing")
	assert.False(t, ok)
}

func TestLRU_DefaultCapacity(t *testing.T) {
	c := NewLRU[int, int](0)
	for i := range 5 {
		c.GetOrCreate(i, constant[int](i))
	}
	assert.Equal(t, DefaultCapacity, c.Len())
	assert.Equal(t, []int{4, 3}, c.Keys())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int, int](8)
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.GetOrCreate(n%16, constant[int](n))
			c.Peek(n % 16)
		}(i)
	}

	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}
