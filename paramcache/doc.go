// Package paramcache provides an in-memory, concurrent, time-bounded cache
// of the most recent telemetry parameter values, keyed by parameter
// identity and grouped by delivery.
//
// Design
//
//   - Storage: one CacheEntry per parameter, each a power-of-two ring
//     buffer of *DeliveryList references, guarded by its own RWMutex.
//     Parameters map to entries through a sharded, lock-striped table
//     (internal/table) so lookups and inserts on unrelated parameters
//     contend only when their ids hash to the same shard.
//
//   - Delivery grouping: Update builds a single DeliveryList from a batch
//     of ParameterValues and stores the *same* pointer in every entry the
//     batch touches. GetValues exploits that shared pointer to return
//     co-delivered parameters together without re-walking the ring.
//
//   - Growth: a CacheEntry's ring starts at min(128, MaxNumEntries) rounded
//     up to a power of two, and doubles (up to MaxNumEntries) whenever the
//     retained history would otherwise fall short of MaxDuration before the
//     oldest delivery is about to be overwritten.
//
//   - Subscription policy: with CacheAll=false, an entry for a parameter is
//     only created once a reader has asked about it at least once (a
//     "subscribed" parameter); until then, producer updates for that
//     parameter are dropped.
//
//   - Expiration: the one sanctioned mutation to a stored value is the
//     ACQUIRED→EXPIRED transition, applied lazily on read via an atomic
//     compare-and-swap so the transition is visible to all readers and
//     never reverses.
//
// Basic usage
//
//	c := paramcache.New(paramcache.Options{
//	    CacheAll:      true,
//	    MaxDuration:   10 * time.Second,
//	    MaxNumEntries: 1024,
//	})
//	defer c.Close()
//
//	a := paramcache.ParameterId{Name: "/YSS/SIMULATOR/BatteryVoltage"}
//	c.Update([]*paramcache.ParameterValue{
//	    paramcache.NewParameterValue(a, 28.1, 100, 100, paramcache.Acquired, 0),
//	})
//	v := c.GetLast(a)
//
// With lazy subscription
//
//	c := paramcache.New(paramcache.Options{MaxNumEntries: 1024})
//	c.GetLast(a)           // nil, but enrolls a in "subscribed"
//	c.Update(values)       // now retained, because a is subscribed
//	c.GetLast(a)            // non-nil
//
// Exporting metrics (example Prometheus adapter)
//
//	m := prom.New(nil, "paramcache", "demo", nil) // implements paramcache.Metrics
//	c := paramcache.New(paramcache.Options{MaxNumEntries: 1024, Metrics: m})
//
// See options.go for the full set of Options and api.go for the Cache
// interface.
package paramcache
