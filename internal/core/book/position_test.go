package book

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoSectionScenario(t *testing.T) {
	l := newUniformLayout(2, 20, 10)
	require.Equal(t, 40, PageCount(l))

	p, ok := FromPageIndex(l, 25)
	require.True(t, ok)
	assert.Equal(t, 1, p.Section)
	assert.Equal(t, 50, p.Char)
	assert.Equal(t, 25, p.PageIndex(l))
	assert.Equal(t, 5, p.SectionPageIndex(l))

	last, ok := FromPageIndex(l, 19)
	require.True(t, ok)
	next, ok := last.MovedBy(l, 1)
	require.True(t, ok)
	assert.Equal(t, Position{BookID: "book-1", Section: 1, Char: 0}, next)
	assert.Equal(t, 0, next.SectionPageIndex(l))
	assert.Equal(t, 20, next.PageIndex(l))
}

func TestFromPageIndex_RoundTrip(t *testing.T) {
	layouts := map[string]*fakeLayout{
		"uniform":       newUniformLayout(2, 20, 10),
		"uneven":        newLayout([]int{5, 7, 3}, []int{11}, []int{2, 2, 2, 2}),
		"empty section": newLayout([]int{10, 10}, nil, []int{10}),
	}

	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			n := PageCount(l)
			for i := range n {
				p, ok := FromPageIndex(l, i)
				require.True(t, ok, "page %d", i)
				assert.Equal(t, i, p.PageIndex(l), "page %d", i)
			}

			_, ok := FromPageIndex(l, -1)
			assert.False(t, ok)
			_, ok = FromPageIndex(l, n)
			assert.False(t, ok)
		})
	}
}

func TestMovedBy_ZeroIsIdentity(t *testing.T) {
	l := newLayout([]int{5, 7, 3}, nil, []int{11})

	for s := range l.SectionCount() {
		chars := max(l.SectionLength(s), 1)
		for c := range chars {
			p := Position{BookID: "book-1", Section: s, Char: c}
			got, ok := p.MovedBy(l, 0)
			require.True(t, ok)
			assert.Equal(t, p, got)
		}
	}
}

func TestMovedBy_ForwardTraversal(t *testing.T) {
	l := newLayout([]int{5, 7, 3}, nil, []int{11}, []int{1, 1})

	p := StartOf(l)
	var visited []int
	for {
		visited = append(visited, p.PageIndex(l))
		next, ok := p.MovedBy(l, 1)
		if !ok {
			break
		}
		p = next
	}

	want := make([]int, PageCount(l))
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, visited)
	assert.True(t, IsLastPage(l, p))
}

func TestMovedBy_BackwardTraversalMirrorsForward(t *testing.T) {
	l := newLayout([]int{5, 7, 3}, nil, []int{11}, []int{1, 1})

	var forward []Position
	for p, ok := StartOf(l), true; ok; p, ok = p.MovedBy(l, 1) {
		forward = append(forward, p)
	}

	// EndOf sits inside the last page, not at its start; normalise it first.
	end, ok := EndOf(l).MovedBy(l, 0)
	require.True(t, ok)
	start, ok := FromPageIndex(l, end.PageIndex(l))
	require.True(t, ok)

	var backward []Position
	for p, ok := start, true; ok; p, ok = p.MovedBy(l, -1) {
		backward = append(backward, p)
	}

	require.Len(t, backward, len(forward))
	for i := range forward {
		assert.Equal(t, forward[i], backward[len(backward)-1-i])
	}
	assert.True(t, IsFirstPage(l, backward[len(backward)-1]))
}

func TestMovedBy_CrossesSectionBackward(t *testing.T) {
	l := newUniformLayout(2, 20, 10)

	tests := []struct {
		name string
		from Position
		want Position
	}{
		{
			name: "from section start",
			from: Position{BookID: "book-1", Section: 1, Char: 0},
			want: Position{BookID: "book-1", Section: 0, Char: 190},
		},
		{
			name: "from inside first page",
			from: Position{BookID: "book-1", Section: 1, Char: 9},
			want: Position{BookID: "book-1", Section: 0, Char: 190},
		},
		{
			name: "from inside second page",
			from: Position{BookID: "book-1", Section: 1, Char: 15},
			want: Position{BookID: "book-1", Section: 1, Char: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.from.MovedBy(l, -1)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMovedBy_Boundaries(t *testing.T) {
	l := newUniformLayout(2, 20, 10)

	_, ok := StartOf(l).MovedBy(l, -1)
	assert.False(t, ok, "no page before the first")

	_, ok = EndOf(l).MovedBy(l, 1)
	assert.False(t, ok, "no page after the last")

	_, ok = StartOf(l).MovedBy(l, 40)
	assert.False(t, ok)

	p, ok := StartOf(l).MovedBy(l, 39)
	require.True(t, ok)
	assert.True(t, IsLastPage(l, p))
}

func TestBoundaryPositions(t *testing.T) {
	l := newLayout([]int{10, 10}, nil, []int{4})

	assert.Equal(t, Position{BookID: "book-1", Section: 0, Char: 0}, StartOf(l))
	assert.Equal(t, Position{BookID: "book-1", Section: 2, Char: 3}, EndOf(l))
	assert.Equal(t, Position{BookID: "book-1", Section: 0, Char: 19}, EndOfSection(l, 0))
	assert.Equal(t, Position{BookID: "book-1", Section: 1, Char: 0}, EndOfSection(l, 1))
	assert.Equal(t, Position{BookID: "book-1", Section: 1, Char: 0}, StartOfSection(l, 1))

	for _, p := range []Position{StartOf(l), EndOf(l), EndOfSection(l, 0), EndOfSection(l, 1)} {
		assert.True(t, p.Valid(l), "%v", p)
	}

	assert.Panics(t, func() { StartOfSection(l, 3) })
	assert.Panics(t, func() { EndOfSection(l, -1) })
}

func TestPage(t *testing.T) {
	l := newLayout([]int{5, 7, 3})

	tests := []struct {
		char      int
		wantIndex int
	}{
		{0, 0}, {4, 0}, {5, 1}, {11, 1}, {12, 2}, {14, 2},
	}

	for _, tt := range tests {
		p := Position{BookID: "book-1", Char: tt.char}
		page := p.Page(l)
		assert.Equal(t, tt.wantIndex, page.Index, "char %d", tt.char)
		assert.True(t, page.Contains(tt.char), "char %d", tt.char)
	}
}

func TestPage_PreconditionViolations(t *testing.T) {
	l := newLayout([]int{5, 7}, nil)

	tests := []struct {
		name string
		pos  Position
	}{
		{"char past section end", Position{Section: 0, Char: 12}},
		{"negative char", Position{Section: 0, Char: -1}},
		{"char in empty section", Position{Section: 1, Char: 1}},
		{"section out of range", Position{Section: 2, Char: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.pos.Valid(l))
			assert.Panics(t, func() { tt.pos.Page(l) })
			assert.Panics(t, func() { tt.pos.PageIndex(l) })
			assert.Panics(t, func() { tt.pos.MovedBy(l, 0) })
		})
	}
}

func TestDegenerateSectionMapsEveryCharToOnlyPage(t *testing.T) {
	l := newLayout([]int{5})
	l.pages[0] = l.pages[0][:1]
	l.pages[0][0].End = 0 // a single [0,0) page over text of length 5

	p := Position{BookID: "book-1", Char: 3}
	assert.Equal(t, 0, p.SectionPageIndex(l))
}

func TestPercent(t *testing.T) {
	l := newUniformLayout(2, 20, 10) // 400 runes

	assert.InDelta(t, 0.0, StartOf(l).ToPercent(l), 1e-9)
	assert.InDelta(t, 0.5, Position{Section: 1, Char: 0}.ToPercent(l), 1e-9)
	assert.InDelta(t, 399.0/400.0, EndOf(l).ToPercent(l), 1e-9)

	assert.Equal(t, StartOf(l), FromPercent(l, 0))
	assert.Equal(t, EndOf(l), FromPercent(l, 1))
	assert.Equal(t, Position{BookID: "book-1", Section: 1, Char: 0}, FromPercent(l, 0.5))
	assert.Equal(t, Position{BookID: "book-1", Section: 0, Char: 100}, FromPercent(l, 0.25))
}

func TestPercent_RoundTrip(t *testing.T) {
	l := newLayout([]int{3, 7, 9}, nil, []int{13, 1}, []int{6})

	for s := range l.SectionCount() {
		for c := range max(l.SectionLength(s), 1) {
			p := Position{BookID: "book-1", Section: s, Char: c}
			if l.SectionLength(s) == 0 {
				// An empty section shares its percent with the next section's start.
				continue
			}
			assert.Equal(t, p, FromPercent(l, p.ToPercent(l)), "%v", p)
		}
	}
}

func TestFromPercent_OutOfRangePanics(t *testing.T) {
	l := newUniformLayout(1, 2, 10)

	for _, x := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		assert.Panics(t, func() { FromPercent(l, x) }, "%v", x)
	}
}

func TestFromPercent_EmptyBookText(t *testing.T) {
	l := newLayout(nil)
	assert.Equal(t, StartOf(l), FromPercent(l, 0.7))
	assert.InDelta(t, 0.0, StartOf(l).ToPercent(l), 1e-9)
}

func TestClamp(t *testing.T) {
	l := newLayout([]int{10}, []int{4})

	assert.Equal(t, StartOf(l), Clamp(l, Position{Section: -3}))
	assert.Equal(t, EndOf(l), Clamp(l, Position{Section: 9, Char: 2}))
	assert.Equal(t, Position{BookID: "book-1", Section: 1, Char: 3}, Clamp(l, Position{BookID: "old", Section: 1, Char: 50}))
	assert.Equal(t, Position{BookID: "book-1", Section: 0, Char: 0}, Clamp(l, Position{Section: 0, Char: -5}))
}
