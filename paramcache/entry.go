package paramcache

import (
	"sync"

	"github.com/telemetrycache/paramcache/internal/util"
)

// EntryStats is a read-only snapshot of one CacheEntry's counters,
// generalizing the teacher's per-shard hits/misses/evicts counters
// (cache/shard.go) to this domain's write-path events.
type EntryStats struct {
	Writes          int64
	OutOfOrderDrops int64
	CorruptDrops    int64
	Grows           int64
	Capacity        int
	MaxEntries      int
}

// CacheEntry is a per-parameter bounded ring buffer of *DeliveryList
// references. It enforces spec.md §3/§4.2's time-window retention,
// geometric capacity growth, and out-of-order write protection, and
// serializes concurrent access with its own lock — independent of every
// other parameter's CacheEntry.
//
// Grounded on the teacher's shard (cache/shard.go): same "lock + plain
// Go container + padded atomic counters" shape, generalized from an
// LRU-ordered map to a ring buffer because this domain's retention policy
// is fixed (time-window + capacity cap), not pluggable.
type CacheEntry struct {
	pid ParameterId

	mu       sync.RWMutex
	buffer   []*DeliveryList
	tail     int
	capacity int

	maxEntries  int
	timeToCache int64 // milliseconds

	metrics Metrics

	_               util.CacheLinePad
	writes          util.PaddedAtomicInt64
	outOfOrderDrops util.PaddedAtomicInt64
	corruptDrops    util.PaddedAtomicInt64
	grows           util.PaddedAtomicInt64
}

// newCacheEntry constructs a CacheEntry for pid. Initial capacity is
// min(128, maxEntries) rounded up to a power of two, per spec.md §3
// invariant 1. maxEntries itself is rounded up to a power of two so the
// ring can always mask instead of modulo.
func newCacheEntry(pid ParameterId, maxEntries int, timeToCacheMillis int64, metrics Metrics) *CacheEntry {
	maxEntries = int(util.NextPow2(uint64(maxEntries)))
	initial := maxEntries
	if initial > 128 {
		initial = 128
	}
	initial = int(util.NextPow2(uint64(initial)))
	return &CacheEntry{
		pid:         pid,
		buffer:      make([]*DeliveryList, initial),
		capacity:    initial,
		maxEntries:  maxEntries,
		timeToCache: timeToCacheMillis,
		metrics:     metrics,
	}
}

// Add is the write path (spec.md §4.2). delivery must contain at least
// one value for e.pid; callers (ParameterCache.Update) guarantee this.
func (e *CacheEntry) Add(delivery *DeliveryList) {
	e.mu.Lock()
	defer e.mu.Unlock()

	newFirst := delivery.FirstInserted(e.pid)
	if newFirst == nil {
		// Defensive no-op: the caller claimed e.pid was in this delivery
		// but it isn't. Never expected; see spec.md §9 open question.
		e.corruptDrops.Add(1)
		e.metrics.CorruptDrop()
		return
	}

	mask := e.capacity - 1
	prevIdx := (e.tail - 1 + e.capacity) & mask

	// Out-of-order protection (spec.md §3 invariant 5 / §8 P4): applies
	// whenever a newest delivery is already on record, not only once the
	// ring is full — a regression must never be observable regardless of
	// fill state.
	if newest := e.buffer[prevIdx]; newest != nil {
		if oldNewest := newest.LastInserted(e.pid); oldNewest != nil &&
			newFirst.GenerationTime < oldNewest.GenerationTime {
			e.outOfOrderDrops.Add(1)
			e.metrics.OutOfOrderDrop()
			return
		}
	}

	if slot := e.buffer[e.tail]; slot != nil {
		// Ring is full: the slot about to be overwritten holds the
		// oldest retained delivery for e.pid.
		old := slot.FirstInserted(e.pid)
		if old == nil {
			e.corruptDrops.Add(1)
			e.metrics.CorruptDrop()
			return
		}
		if newFirst.GenerationTime-old.GenerationTime < e.timeToCache {
			e.grow()
			mask = e.capacity - 1
		}
	}

	e.buffer[e.tail] = delivery
	e.tail = (e.tail + 1) & mask
	e.writes.Add(1)
}

// grow doubles the ring, up to maxEntries, leaving tail fixed and shifting
// the post-tail segment by the old capacity so the physical hole lands
// exactly at the wrap point (spec.md §9 "Ring with mid-wrap growth").
// Called with e.mu held for writing.
func (e *CacheEntry) grow() {
	if e.capacity >= e.maxEntries {
		return
	}
	oldCap, oldTail := e.capacity, e.tail
	newCap := oldCap * 2

	newBuf := make([]*DeliveryList, newCap)
	copy(newBuf[:oldTail], e.buffer[:oldTail])
	copy(newBuf[oldTail+oldCap:], e.buffer[oldTail:oldCap])

	e.buffer = newBuf
	e.capacity = newCap
	e.grows.Add(1)
	e.metrics.Grow()
}

// GetLast returns the newest retained DeliveryList, or nil if e has never
// been written to.
func (e *CacheEntry) GetLast() *DeliveryList {
	e.mu.RLock()
	defer e.mu.RUnlock()
	prev := (e.tail - 1 + e.capacity) & (e.capacity - 1)
	return e.buffer[prev]
}

// GetAll returns every retained ParameterValue for e.pid, newest delivery
// first; within a delivery, occurrences are in insertion order.
func (e *CacheEntry) GetAll() []*ParameterValue {
	e.mu.RLock()
	defer e.mu.RUnlock()

	capacity, tail := e.capacity, e.tail
	mask := capacity - 1
	var out []*ParameterValue
	idx := (tail - 1 + capacity) & mask
	for i := 0; i < capacity; i++ {
		slot := e.buffer[idx]
		if slot == nil {
			break
		}
		slot.ForEach(e.pid, func(v *ParameterValue) { out = append(out, v) })
		idx = (idx - 1 + capacity) & mask
	}
	return out
}

// Stats returns a snapshot of e's counters.
func (e *CacheEntry) Stats() EntryStats {
	e.mu.RLock()
	capacity, maxEntries := e.capacity, e.maxEntries
	e.mu.RUnlock()
	return EntryStats{
		Writes:          e.writes.Load(),
		OutOfOrderDrops: e.outOfOrderDrops.Load(),
		CorruptDrops:    e.corruptDrops.Load(),
		Grows:           e.grows.Load(),
		Capacity:        capacity,
		MaxEntries:      maxEntries,
	}
}
