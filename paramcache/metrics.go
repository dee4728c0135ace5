package paramcache

// Metrics exposes cache-level observability hooks, generalizing the
// teacher's Hit/Miss/Evict/Size quartet (cache/options.go, cache/metrics.go)
// to this domain's events. A NoopMetrics implementation is provided and
// used by default.
type Metrics interface {
	// Update is called once per Update call, regardless of how many
	// parameters it touches.
	Update()
	// Read is called once per GetLast/GetAll/GetValues lookup of a single
	// parameter, reporting whether an entry existed.
	Read(hit bool)
	// OutOfOrderDrop is called whenever a write is dropped because its
	// generation time regressed (spec.md §4.2 rule 5 / §8 P4).
	OutOfOrderDrop()
	// CorruptDrop is called when a delivery nominally contains a
	// parameter but FirstInserted/LastInserted return nil for it
	// (spec.md §9 "the source retains a value... and silently returns").
	CorruptDrop()
	// Grow is called whenever a CacheEntry doubles its ring capacity.
	Grow()
	// Expire is called whenever a read transitions a value from ACQUIRED
	// to EXPIRED.
	Expire()
	// Subscribe is called whenever a parameter is newly enrolled in the
	// lazy-subscription set.
	Subscribe()
	// EntryCount reports the total number of CacheEntry instances
	// currently held by the cache.
	EntryCount(n int)
}

// NoopMetrics is a Metrics implementation that does nothing; it is the
// default when Options.Metrics is nil.
type NoopMetrics struct{}

func (NoopMetrics) Update()          {}
func (NoopMetrics) Read(bool)        {}
func (NoopMetrics) OutOfOrderDrop()  {}
func (NoopMetrics) CorruptDrop()     {}
func (NoopMetrics) Grow()            {}
func (NoopMetrics) Expire()          {}
func (NoopMetrics) Subscribe()       {}
func (NoopMetrics) EntryCount(int)   {}
