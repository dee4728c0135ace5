// Package table provides a generic, sharded, lock-striped concurrent map.
//
// It is the outer "entries"/"subscribed" map spec.md §5 calls for: "a
// lock-free hash map is sufficient; the stronger ordering needed for
// grouping is provided by the per-entry lock... not by the outer map."
// Go's standard library has no off-the-shelf lock-free map with atomic
// create-if-absent semantics, so this generalizes the teacher's per-shard
// sync.RWMutex bucket (cache/shard.go) into a standalone keyed table:
// each shard guards a plain map with its own RWMutex, and the shard a key
// lands in is chosen by hashing it (internal/util.Fnv64a) and masking
// against shard count - 1 (the count is rounded up with
// internal/util.NextPow2), exactly as the teacher picks a shard for a
// cache key.
package table

import (
	"sync"

	"github.com/telemetrycache/paramcache/internal/util"
)

// Table is a sharded map from K to V. Each shard's bucket lock is held
// only long enough to look up, insert, or range over that shard's
// entries — never while the caller mutates a V (callers own V's internal
// locking, if any).
type Table[K comparable, V any] struct {
	shards []*bucket[K, V]
	mask   uint64
}

type bucket[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// New constructs a Table with the given shard count, rounded up to the
// next power of two. shards <= 0 picks an automatic count
// (util.ReasonableShardCount).
func New[K comparable, V any](shards int) *Table[K, V] {
	n := shards
	if n <= 0 {
		n = util.ReasonableShardCount()
	} else {
		n = int(util.NextPow2(uint64(n)))
	}
	t := &Table[K, V]{
		shards: make([]*bucket[K, V], n),
		mask:   uint64(n - 1),
	}
	for i := range t.shards {
		t.shards[i] = &bucket[K, V]{m: make(map[K]V)}
	}
	return t
}

func (t *Table[K, V]) bucketFor(k K) *bucket[K, V] {
	h := util.Fnv64a(k)
	return t.shards[h&t.mask]
}

// Load returns the value stored for k, if any.
func (t *Table[K, V]) Load(k K) (V, bool) {
	b := t.bucketFor(k)
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[k]
	return v, ok
}

// LoadOrStore returns the existing value for k if present; otherwise it
// calls make, stores the result, and returns it. make is called at most
// once per winning caller and runs while the shard's lock is held, so it
// must be cheap and must not itself touch this Table — this is what
// guarantees only one CacheEntry is ever constructed per ParameterId
// (spec.md §5 "Creation of a new CacheEntry must be atomic").
func (t *Table[K, V]) LoadOrStore(k K, make func() V) (V, bool) {
	b := t.bucketFor(k)

	b.mu.RLock()
	if v, ok := b.m[k]; ok {
		b.mu.RUnlock()
		return v, true
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.m[k]; ok {
		return v, true
	}
	v := make()
	b.m[k] = v
	return v, false
}

// StoreIfAbsent inserts k with a fixed value if absent, returning true if
// the insert happened. Used for membership sets (e.g. subscribed ids)
// where there is no construction cost to coalesce.
func (t *Table[K, V]) StoreIfAbsent(k K, v V) bool {
	b := t.bucketFor(k)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.m[k]; ok {
		return false
	}
	b.m[k] = v
	return true
}

// Len returns the total number of entries across all shards.
func (t *Table[K, V]) Len() int {
	total := 0
	for _, b := range t.shards {
		b.mu.RLock()
		total += len(b.m)
		b.mu.RUnlock()
	}
	return total
}

// Keys returns a snapshot of every key currently in the table. Order is
// unspecified.
func (t *Table[K, V]) Keys() []K {
	out := make([]K, 0, t.Len())
	for _, b := range t.shards {
		b.mu.RLock()
		for k := range b.m {
			out = append(out, k)
		}
		b.mu.RUnlock()
	}
	return out
}
