package counter

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, m *Map[string], counts map[string]int64) {
	t.Helper()
	for key, n := range counts {
		for i := int64(0); i < n; i++ {
			m.Increment(key)
		}
	}
}

func TestTopKDeterminism(t *testing.T) {
	m := newTestMap(t, 32, 8)
	fill(t, m, map[string]int64{"a": 5, "b": 5, "c": 3})

	got := m.TopK(2)
	require.Len(t, got, 2)
	assert.Equal(t, Entry[string]{Key: "a", Count: 5}, got[0])
	assert.Equal(t, Entry[string]{Key: "b", Count: 5}, got[1])
}

// All three entries tie at the cutoff; the two smallest keys must win,
// regardless of scan order.
func TestTopKBoundaryTies(t *testing.T) {
	m := newTestMap(t, 32, 8)
	fill(t, m, map[string]int64{"a": 5, "b": 5, "c": 5})

	got := m.TopK(2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Key)
	assert.Equal(t, "b", got[1].Key)
}

func TestTopKFewerLiveEntries(t *testing.T) {
	m := newTestMap(t, 32, 8)
	fill(t, m, map[string]int64{"x": 2, "y": 1})

	got := m.TopK(10)
	require.Len(t, got, 2)
	assert.Equal(t, Entry[string]{Key: "x", Count: 2}, got[0])
	assert.Equal(t, Entry[string]{Key: "y", Count: 1}, got[1])
}

func TestTopKNonPositive(t *testing.T) {
	m := newTestMap(t, 32, 8)
	fill(t, m, map[string]int64{"a": 1})

	assert.Empty(t, m.TopK(0))
	assert.Empty(t, m.TopK(-3))
}

func TestTopKSkipsRemoved(t *testing.T) {
	m := newTestMap(t, 32, 8)
	fill(t, m, map[string]int64{"a": 5, "b": 4, "c": 3})
	m.Remove("a")

	got := m.TopK(2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Key)
	assert.Equal(t, "c", got[1].Key)
}

// Cross-check the bounded selection against a full sort over many random
// count distributions, with heavy tie pressure from the small count range.
func TestTopKMatchesReferenceSort(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		m := newTestMap(t, 8, 8)
		counts := make(map[string]int64)
		for i := 0; i < 200; i++ {
			key := fmt.Sprintf("w%03d", i)
			counts[key] = rand.Int64N(6) + 1
		}
		fill(t, m, counts)

		expected := make([]Entry[string], 0, len(counts))
		for key, n := range counts {
			expected = append(expected, Entry[string]{Key: key, Count: n})
		}
		sort.Slice(expected, func(i, j int) bool {
			if expected[i].Count != expected[j].Count {
				return expected[i].Count > expected[j].Count
			}
			return expected[i].Key < expected[j].Key
		})

		for _, k := range []int{1, 3, 10, 50, 200, 500} {
			want := expected
			if len(want) > k {
				want = want[:k]
			}
			require.Equal(t, want, m.TopK(k), "trial %d, k=%d", trial, k)
		}
	}
}
