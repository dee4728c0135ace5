// Package prom adapts paramcache.Metrics to Prometheus counters and
// gauges, grounded on the teacher's metrics/prom/prom.go adapter (same
// constructor shape and registration pattern; new metric names for this
// domain's events).
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telemetrycache/paramcache/paramcache"
)

// Adapter implements paramcache.Metrics and exports Prometheus
// counters/gauges. Safe for concurrent use; all Prometheus metric types
// are goroutine-safe.
type Adapter struct {
	updates         prometheus.Counter
	hits            prometheus.Counter
	misses          prometheus.Counter
	outOfOrderDrops prometheus.Counter
	corruptDrops    prometheus.Counter
	grows           prometheus.Counter
	expires         prometheus.Counter
	subscribes      prometheus.Counter
	entryCount      prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "updates_total",
			Help: "Producer Update() calls", ConstLabels: constLabels,
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "reads_hit_total",
			Help: "Reads that found a value", ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "reads_miss_total",
			Help: "Reads that found no value", ConstLabels: constLabels,
		}),
		outOfOrderDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "out_of_order_drops_total",
			Help: "Writes dropped because generation time regressed", ConstLabels: constLabels,
		}),
		corruptDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "corrupt_drops_total",
			Help: "Writes dropped because the delivery did not actually contain the parameter", ConstLabels: constLabels,
		}),
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "ring_grows_total",
			Help: "Ring buffer doublings across all entries", ConstLabels: constLabels,
		}),
		expires: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "expired_total",
			Help: "ACQUIRED->EXPIRED transitions observed on read", ConstLabels: constLabels,
		}),
		subscribes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "subscriptions_total",
			Help: "Parameters newly enrolled via lazy subscription", ConstLabels: constLabels,
		}),
		entryCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: "entries",
			Help: "Number of resident CacheEntry instances", ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.updates, a.hits, a.misses, a.outOfOrderDrops,
		a.corruptDrops, a.grows, a.expires, a.subscribes, a.entryCount)
	return a
}

// Update increments the producer-update counter.
func (a *Adapter) Update() { a.updates.Inc() }

// Read increments the hit or miss counter.
func (a *Adapter) Read(hit bool) {
	if hit {
		a.hits.Inc()
		return
	}
	a.misses.Inc()
}

// OutOfOrderDrop increments the out-of-order-drop counter.
func (a *Adapter) OutOfOrderDrop() { a.outOfOrderDrops.Inc() }

// CorruptDrop increments the corrupt-drop counter.
func (a *Adapter) CorruptDrop() { a.corruptDrops.Inc() }

// Grow increments the ring-grow counter.
func (a *Adapter) Grow() { a.grows.Inc() }

// Expire increments the expired-transition counter.
func (a *Adapter) Expire() { a.expires.Inc() }

// Subscribe increments the lazy-subscription counter.
func (a *Adapter) Subscribe() { a.subscribes.Inc() }

// EntryCount sets the resident-entries gauge.
func (a *Adapter) EntryCount(n int) { a.entryCount.Set(float64(n)) }

// Compile-time check: ensure Adapter implements paramcache.Metrics.
var _ paramcache.Metrics = (*Adapter)(nil)
