package counter

import (
	"cmp"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// entry is one live or tombstoned key. Entries are immutable after
// publication except for the atomic count and dead flag, so lock-free readers
// may inspect them safely.
type entry[K cmp.Ordered] struct {
	key   K
	count atomic.Int64
	dead  atomic.Bool
}

// table is one generation of the map's state: the slot array, the stripe
// locks guarding it, and the hash seeds drawn for this generation. A table is
// immutable in shape once published; a resize builds a private successor and
// swaps it in, it never grows a table in place.
//
// Slot states: nil pointer = empty, entry with dead set = tombstone,
// otherwise occupied.
type table[K cmp.Ordered] struct {
	slots []atomic.Pointer[entry[K]]
	locks []sync.Mutex // stripe i guards slots j with j % len(locks) == i

	// Per-generation hash seeds, re-drawn on every resize so a pathological
	// key set cannot keep clustering across generations.
	seedA uint64
	seedB uint64

	resizing atomic.Bool

	// Removed entries are parked here until the whole generation becomes
	// unreachable; readers holding an old snapshot may still observe them.
	graveMu   sync.Mutex
	graveyard []*entry[K]
}

// stripeCount is ceil(sqrt(capacity)) + 1.
func stripeCount(capacity int) int {
	return int(math.Ceil(math.Sqrt(float64(capacity)))) + 1
}

func newTable[K cmp.Ordered](capacity int) *table[K] {
	return &table[K]{
		slots: make([]atomic.Pointer[entry[K]], capacity),
		locks: make([]sync.Mutex, stripeCount(capacity)),
		seedA: rand.Uint64(),
		seedB: rand.Uint64(),
	}
}

// slotIndex is the i-th quadratic probe position for base hash h.
func (t *table[K]) slotIndex(h uint64, i int) int {
	return int((h + uint64(i)*uint64(i)) % uint64(len(t.slots)))
}

func (t *table[K]) lockFor(slot int) *sync.Mutex {
	return &t.locks[slot%len(t.locks)]
}

// lockAll acquires every stripe lock in ascending index order. All multi-lock
// operations (resize, top-K scan) must go through here; the fixed order is
// what keeps them from deadlocking against each other.
func (t *table[K]) lockAll() {
	for i := range t.locks {
		t.locks[i].Lock()
	}
}

func (t *table[K]) unlockAll() {
	for i := range t.locks {
		t.locks[i].Unlock()
	}
}

func (t *table[K]) bury(e *entry[K]) {
	t.graveMu.Lock()
	t.graveyard = append(t.graveyard, e)
	t.graveMu.Unlock()
}
