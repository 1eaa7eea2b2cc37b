// Package counter implements a concurrent, resizable, open-addressed counter
// map with lock striping and quadratic probing. Fine-grained operations hold
// at most one stripe lock at a time; coarse operations (resize, top-K scan)
// hold every stripe lock of one table generation, always acquired in
// ascending index order.
package counter

import (
	"cmp"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
)

const (
	DefaultCapacity  = 32
	DefaultMaxProbes = 8
)

var (
	ErrInvalidCapacity = errors.New("initial capacity must be positive")
	ErrInvalidProbes   = errors.New("max probes must be positive")
	ErrNoHasher        = errors.New("hasher must be provided")
)

// Hasher computes a seeded hash of key. The two seeds belong to one table
// generation and change on every resize.
type Hasher[K cmp.Ordered] func(key K, seedA, seedB uint64) uint64

// StringHasher seeds xxh3 with the generation's first seed and folds the
// second one in as an odd multiplier.
func StringHasher(key string, seedA, seedB uint64) uint64 {
	return xxh3.HashStringSeed(key, seedA) * (seedB | 1)
}

type MapConfig struct {
	InitialCapacity int
	MaxProbes       int
}

// Map counts occurrences per key. Keys must be ordered so that top-K ties can
// be broken deterministically.
type Map[K cmp.Ordered] struct {
	current   atomic.Pointer[table[K]]
	hash      Hasher[K]
	maxProbes int
}

func New[K cmp.Ordered](config MapConfig, hash Hasher[K]) (*Map[K], error) {
	if config.InitialCapacity == 0 {
		config.InitialCapacity = DefaultCapacity
	}
	if config.MaxProbes == 0 {
		config.MaxProbes = DefaultMaxProbes
	}
	if config.InitialCapacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if config.MaxProbes < 0 {
		return nil, ErrInvalidProbes
	}
	if hash == nil {
		return nil, ErrNoHasher
	}
	m := &Map[K]{hash: hash, maxProbes: config.MaxProbes}
	m.current.Store(newTable[K](config.InitialCapacity))
	return m, nil
}

// NewStringMap builds a string-keyed map with the default xxh3 hasher.
func NewStringMap(config MapConfig) (*Map[string], error) {
	return New[string](config, StringHasher)
}

// Contains returns the count stored for key, or 0 if the key is absent or
// tombstoned. The read is weakly consistent: it takes one snapshot of the
// current table and probes without locks, so the result was correct at some
// instant during the call but concurrent updates may not be visible.
func (m *Map[K]) Contains(key K) int64 {
	t := m.current.Load()
	h := m.hash(key, t.seedA, t.seedB)
	for i := 0; i < m.maxProbes; i++ {
		e := t.slots[t.slotIndex(h, i)].Load()
		if e == nil {
			return 0
		}
		if e.key == key {
			if e.dead.Load() {
				return 0
			}
			return e.count.Load()
		}
		// Tombstones of other keys keep their probe sequences intact;
		// continue past them.
	}
	return 0
}

// Increment adds one to key's count, inserting it with count 1 if absent, and
// returns the new count. If a resize is published while the operation is in
// flight it restarts against the fresh table; if the probe budget is
// exhausted it triggers a resize itself and retries.
func (m *Map[K]) Increment(key K) int64 {
restart:
	for {
		t := m.current.Load()
		h := m.hash(key, t.seedA, t.seedB)
		for i := 0; i < m.maxProbes; i++ {
			idx := t.slotIndex(h, i)
			lk := t.lockFor(idx)
			lk.Lock()
			if m.current.Load() != t {
				lk.Unlock()
				continue restart
			}
			e := t.slots[idx].Load()
			switch {
			case e == nil || e.dead.Load():
				fresh := &entry[K]{key: key}
				fresh.count.Store(1)
				t.slots[idx].Store(fresh)
				lk.Unlock()
				return 1
			case e.key == key:
				n := e.count.Add(1)
				lk.Unlock()
				return n
			}
			lk.Unlock()
		}
		m.resize(t)
	}
}

// Remove tombstones key and returns the count it held, or 0 if it was not
// found within the probe budget. Removal interleaved with insertion of the
// same key is best effort: a concurrent Increment may land the key in an
// earlier tombstoned slot, leaving a duplicate that later lookups resolve to
// the first occurrence.
func (m *Map[K]) Remove(key K) int64 {
restart:
	for {
		t := m.current.Load()
		h := m.hash(key, t.seedA, t.seedB)
		for i := 0; i < m.maxProbes; i++ {
			idx := t.slotIndex(h, i)
			lk := t.lockFor(idx)
			lk.Lock()
			if m.current.Load() != t {
				lk.Unlock()
				continue restart
			}
			e := t.slots[idx].Load()
			if e == nil {
				lk.Unlock()
				return 0
			}
			if e.key == key {
				if e.dead.Load() {
					lk.Unlock()
					return 0
				}
				prior := e.count.Load()
				e.dead.Store(true)
				t.bury(e)
				lk.Unlock()
				return prior
			}
			lk.Unlock()
		}
		return 0
	}
}

// resize replaces old with a generation of at least twice the capacity. Only
// the first caller per generation wins; anyone who finds the current table
// already changed after taking the locks backs off and lets its own caller
// retry against the published successor.
func (m *Map[K]) resize(old *table[K]) {
	old.lockAll()
	defer old.unlockAll()

	if m.current.Load() != old {
		return
	}
	old.resizing.Store(true)

	capacity := len(old.slots)
	for {
		capacity *= 2
		next, ok := m.rehash(old, capacity)
		if ok {
			log.Debug().
				Int("from", len(old.slots)).
				Int("to", capacity).
				Msg("counter table resized")
			m.current.Store(next)
			return
		}
		// Rehash could not place every entry within the probe budget; a
		// larger table with fresh seeds gets another shot.
	}
}

// rehash places every live entry of old into a private table of the given
// capacity. The candidate is unpublished, so no locks beyond the already-held
// old ones are needed. Returns false if any entry exhausts the probe budget.
func (m *Map[K]) rehash(old *table[K], capacity int) (*table[K], bool) {
	next := newTable[K](capacity)
	for i := range old.slots {
		e := old.slots[i].Load()
		if e == nil || e.dead.Load() {
			continue
		}
		h := m.hash(e.key, next.seedA, next.seedB)
		placed := false
		for j := 0; j < m.maxProbes; j++ {
			idx := next.slotIndex(h, j)
			if next.slots[idx].Load() == nil {
				next.slots[idx].Store(e)
				placed = true
				break
			}
		}
		if !placed {
			return nil, false
		}
	}
	return next, true
}

// Capacity reports the slot count of the current table generation.
func (m *Map[K]) Capacity() int {
	return len(m.current.Load().slots)
}
