package paramcache

// Cache is the façade a telemetry parameter cache exposes to its
// producer and readers. All methods are safe for concurrent use by
// multiple goroutines (see spec.md §5 for the concurrency model this
// implementation guarantees).
type Cache interface {
	// Update stores one delivery. values may contain multiple entries
	// for the same ParameterId; all occurrences are retained (see
	// spec.md §9). An empty or nil slice is a no-op.
	Update(values []*ParameterValue)

	// GetLast returns the most recent value for pid, or nil if pid has
	// no retained history. In lazy-subscription mode, a miss enrolls pid
	// in the subscribed set so a later Update retains it.
	GetLast(pid ParameterId) *ParameterValue

	// GetAll returns every retained value for pid, newest delivery
	// first; within a delivery, occurrences are in insertion order.
	// Returns nil if pid has no retained history. Miss behavior mirrors
	// GetLast.
	GetAll(pid ParameterId) []*ParameterValue

	// GetValues returns one value per found pid, preserving the
	// first-found order and grouping parameters that were written in the
	// same delivery consecutively (spec.md §4.3). The result's length is
	// at most len(pids); misses are simply absent. Miss behavior for
	// each pid mirrors GetLast.
	GetValues(pids []ParameterId) []*ParameterValue

	// Subscriptions returns a snapshot of the currently subscribed
	// parameter ids. Meaningful only when CacheAll is false; with
	// CacheAll true every parameter is implicitly subscribed and this
	// returns nil.
	Subscriptions() []ParameterId

	// Stats returns an aggregate snapshot of cache-wide counters.
	Stats() CacheStats

	// EntryStats returns the per-parameter counters for pid, or false if
	// pid has no CacheEntry (yet). Does not itself enroll pid in the
	// subscribed set.
	EntryStats(pid ParameterId) (EntryStats, bool)

	// Close marks the cache as closed. Future Update calls are ignored;
	// reads continue to serve whatever was already retained. Mirrors the
	// teacher's soft-close convention (cache/cache.go Close).
	Close() error
}
