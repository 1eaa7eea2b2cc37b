package counter

import (
	"cmp"
	"container/heap"
	"sort"
)

// Entry is one (key, count) result of a top-K scan.
type Entry[K cmp.Ordered] struct {
	Key   K
	Count int64
}

// bottomHeap keeps the current selection with the weakest entry on top:
// lowest count first, and among equal counts the largest key (ties rank by
// ascending key, so the largest key is the first to go).
type bottomHeap[K cmp.Ordered] []Entry[K]

func (h bottomHeap[K]) Len() int { return len(h) }

func (h bottomHeap[K]) Less(i, j int) bool {
	if h[i].Count != h[j].Count {
		return h[i].Count < h[j].Count
	}
	return h[i].Key > h[j].Key
}

func (h bottomHeap[K]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *bottomHeap[K]) Push(x any) { *h = append(*h, x.(Entry[K])) }

func (h *bottomHeap[K]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK returns the k highest-counted live entries, ordered by count
// descending and key ascending, with length min(k, live entries). It is an
// exclusive scan: every stripe lock of the current table is taken in
// ascending order (the same rule resize follows), so the result is a
// consistent snapshot.
//
// Candidates whose count ties the running cutoff are not discarded outright;
// they wait in an on-deck buffer and compete on key order once the scan has
// seen everything. Without it, boundary ties would be dropped in whatever
// order the table happened to be scanned.
func (m *Map[K]) TopK(k int) []Entry[K] {
	if k <= 0 {
		return nil
	}

	var t *table[K]
	for {
		t = m.current.Load()
		t.lockAll()
		if m.current.Load() == t {
			break
		}
		// A resize slipped in between snapshot and lock acquisition;
		// scan the published successor instead.
		t.unlockAll()
	}
	defer t.unlockAll()

	selection := make(bottomHeap[K], 0, k)
	var onDeck []Entry[K]

	for i := range t.slots {
		e := t.slots[i].Load()
		if e == nil || e.dead.Load() {
			continue
		}
		candidate := Entry[K]{Key: e.key, Count: e.count.Load()}

		if selection.Len() < k {
			heap.Push(&selection, candidate)
			continue
		}
		cutoff := selection[0].Count
		switch {
		case candidate.Count > cutoff:
			dropped := selection[0]
			selection[0] = candidate
			heap.Fix(&selection, 0)
			// The evicted entry still ties the new cutoff if other
			// entries share its count; keep it in contention.
			if dropped.Count == selection[0].Count {
				onDeck = append(onDeck, dropped)
			}
		case candidate.Count == cutoff:
			onDeck = append(onDeck, candidate)
		}
	}

	out := make([]Entry[K], len(selection), len(selection)+len(onDeck))
	copy(out, selection)
	if len(selection) == k {
		cutoff := selection[0].Count
		for _, candidate := range onDeck {
			if candidate.Count == cutoff {
				out = append(out, candidate)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
