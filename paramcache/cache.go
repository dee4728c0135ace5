package paramcache

import (
	"sync/atomic"

	"github.com/telemetrycache/paramcache/internal/table"
	"github.com/telemetrycache/paramcache/internal/util"
)

// CacheStats is an aggregate, read-only snapshot of cache-wide counters,
// generalizing the teacher's Cache.Len() (cache/api.go) — which the spec
// never mentions but which is an obvious, low-risk introspection surface
// for a structure like this one (see SPEC_FULL.md §12).
type CacheStats struct {
	Entries              int
	Subscribed           int
	TotalWrites          int64
	TotalOutOfOrderDrops int64
	TotalCorruptDrops    int64
	TotalGrows           int64
	TotalExpired         int64
}

// parameterCache is the façade described in spec.md §2/§4.3: it maps
// ParameterId to CacheEntry, applies the cache-all vs. lazy-subscription
// policy, and implements the three read operations.
//
// Grounded on the teacher's cache (cache/cache.go): same "closed flag +
// Options + New() defaulting" shape, generalized from a sharded KV store
// to a per-parameter ring-buffer façade — the per-key sharding the
// teacher uses to spread lock contention across many keys in one shard is
// replaced here by the entry table (internal/table), because every
// parameter already gets its own independent CacheEntry lock.
type parameterCache struct {
	entries    *table.Table[ParameterId, *CacheEntry]
	subscribed *table.Table[ParameterId, struct{}]

	cacheAll          bool
	maxDurationMillis int64
	maxNumEntries     int

	clock   Clock
	metrics Metrics

	closed  atomic.Bool
	expired util.PaddedAtomicInt64
}

// New constructs a ParameterCache with the given Options. Defaults:
//   - nil Metrics -> NoopMetrics
//   - nil Clock   -> system clock
//   - Shards <= 0 -> auto (internal/table default)
//
// Panics if opt.MaxNumEntries < 1 or opt.MaxDuration < 0 (spec.md §7
// "Programmer errors... fail fast at construction").
func New(opt Options) Cache {
	if opt.MaxNumEntries < 1 {
		panic("paramcache: MaxNumEntries must be >= 1")
	}
	if opt.MaxDuration < 0 {
		panic("paramcache: MaxDuration must be >= 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Clock == nil {
		opt.Clock = systemClock{}
	}
	return &parameterCache{
		entries:           table.New[ParameterId, *CacheEntry](opt.Shards),
		subscribed:        table.New[ParameterId, struct{}](opt.Shards),
		cacheAll:          opt.CacheAll,
		maxDurationMillis: opt.MaxDuration.Milliseconds(),
		maxNumEntries:     opt.MaxNumEntries,
		clock:             opt.Clock,
		metrics:           opt.Metrics,
	}
}

// Update implements Cache.Update (spec.md §4.3).
func (c *parameterCache) Update(values []*ParameterValue) {
	if c.closed.Load() || len(values) == 0 {
		return
	}
	dl := NewDeliveryList(values)

	seen := make(map[ParameterId]struct{}, len(values))
	for _, v := range values {
		pid := v.ParameterId
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		if e := c.entryForWrite(pid); e != nil {
			e.Add(dl)
		}
	}
	c.metrics.Update()
}

// entryForWrite resolves (creating if needed and permitted) the
// CacheEntry for pid, or returns nil if pid is not subscribed and
// CacheAll is false (spec.md §4.3 Update bullet 2).
func (c *parameterCache) entryForWrite(pid ParameterId) *CacheEntry {
	if e, ok := c.entries.Load(pid); ok {
		return e
	}
	if !c.cacheAll {
		if _, ok := c.subscribed.Load(pid); !ok {
			return nil
		}
	}
	e, _ := c.entries.LoadOrStore(pid, func() *CacheEntry {
		return newCacheEntry(pid, c.maxNumEntries, c.maxDurationMillis, c.metrics)
	})
	return e
}

// lookupForRead resolves the CacheEntry for pid for a read operation. A
// miss enrolls pid in the subscribed set when CacheAll is false
// (spec.md §8 P6), matching GetLast/GetAll/GetValues's shared
// missing-entry behavior.
func (c *parameterCache) lookupForRead(pid ParameterId) (*CacheEntry, bool) {
	if e, ok := c.entries.Load(pid); ok {
		return e, true
	}
	if !c.cacheAll {
		if c.subscribed.StoreIfAbsent(pid, struct{}{}) {
			c.metrics.Subscribe()
		}
	}
	return nil, false
}

// finalize applies the §4.3.1 ACQUIRED->EXPIRED transition to pv and
// reports it to Metrics exactly once per transition.
func (c *parameterCache) finalize(pv *ParameterValue) *ParameterValue {
	before := pv.Status()
	pv.checkExpiration(c.clock.NowMillis())
	if before == Acquired && pv.Status() == Expired {
		c.expired.Add(1)
		c.metrics.Expire()
	}
	return pv
}

// GetLast implements Cache.GetLast (spec.md §4.3).
func (c *parameterCache) GetLast(pid ParameterId) *ParameterValue {
	e, ok := c.lookupForRead(pid)
	if !ok {
		c.metrics.Read(false)
		return nil
	}
	dl := e.GetLast()
	if dl == nil {
		c.metrics.Read(false)
		return nil
	}
	pv := dl.LastInserted(pid)
	if pv == nil {
		c.metrics.Read(false)
		return nil
	}
	c.metrics.Read(true)
	return c.finalize(pv)
}

// GetAll implements Cache.GetAll (spec.md §4.3).
func (c *parameterCache) GetAll(pid ParameterId) []*ParameterValue {
	e, ok := c.lookupForRead(pid)
	if !ok {
		c.metrics.Read(false)
		return nil
	}
	c.metrics.Read(true)
	all := e.GetAll()
	for _, pv := range all {
		c.finalize(pv)
	}
	return all
}

// GetValues implements Cache.GetValues (spec.md §4.3): a bitset walk over
// pids where, once a value is found for pids[i], every still-remaining
// pids[j] (j > i) is checked directly against the *same* DeliveryList
// pointer before falling back to its own entry on a later outer pass.
// Two results share a DeliveryList pointer exactly when they were written
// by the same Update call (spec.md §8 P5).
func (c *parameterCache) GetValues(pids []ParameterId) []*ParameterValue {
	if len(pids) == 0 {
		return nil
	}
	remaining := make([]bool, len(pids))
	for i := range remaining {
		remaining[i] = true
	}

	result := make([]*ParameterValue, 0, len(pids))
	for i := 0; i < len(pids); i++ {
		if !remaining[i] {
			continue
		}
		remaining[i] = false
		pid := pids[i]

		e, ok := c.lookupForRead(pid)
		if !ok {
			c.metrics.Read(false)
			continue
		}
		dl := e.GetLast()
		if dl == nil {
			c.metrics.Read(false)
			continue
		}
		pv := dl.LastInserted(pid)
		if pv == nil {
			c.metrics.Read(false)
			continue
		}
		c.metrics.Read(true)
		result = append(result, c.finalize(pv))

		for j := i + 1; j < len(pids); j++ {
			if !remaining[j] {
				continue
			}
			pv2 := dl.LastInserted(pids[j])
			if pv2 == nil {
				continue
			}
			remaining[j] = false
			c.metrics.Read(true)
			result = append(result, c.finalize(pv2))
		}
	}
	return result
}

// Subscriptions implements Cache.Subscriptions.
func (c *parameterCache) Subscriptions() []ParameterId {
	if c.cacheAll {
		return nil
	}
	return c.subscribed.Keys()
}

// Stats implements Cache.Stats.
func (c *parameterCache) Stats() CacheStats {
	ids := c.entries.Keys()
	st := CacheStats{
		Entries:    len(ids),
		Subscribed: c.subscribed.Len(),
	}
	for _, id := range ids {
		e, ok := c.entries.Load(id)
		if !ok {
			continue
		}
		es := e.Stats()
		st.TotalWrites += es.Writes
		st.TotalOutOfOrderDrops += es.OutOfOrderDrops
		st.TotalCorruptDrops += es.CorruptDrops
		st.TotalGrows += es.Grows
	}
	st.TotalExpired = c.expired.Load()
	c.metrics.EntryCount(st.Entries)
	return st
}

// EntryStats implements Cache.EntryStats.
func (c *parameterCache) EntryStats(pid ParameterId) (EntryStats, bool) {
	e, ok := c.entries.Load(pid)
	if !ok {
		return EntryStats{}, false
	}
	return e.Stats(), true
}

// Close implements Cache.Close. Mirrors the teacher's soft-close
// (cache/cache.go): future Update calls are ignored, reads keep serving
// whatever was already retained.
func (c *parameterCache) Close() error {
	c.closed.Store(true)
	return nil
}
