package paramcache

import "time"

// Options configures a ParameterCache. Zero values are safe; sane
// defaults are applied in New() (grounded on the teacher's
// cache/options.go defaulting convention):
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => system clock
//   - Shards <= 0  => auto (≈2×GOMAXPROCS, rounded to a power of two)
type Options struct {
	// CacheAll, if true, retains every parameter seen by Update. If
	// false, only parameters a reader has already asked about (via
	// GetLast/GetAll/GetValues) are retained; see spec.md §8 P6.
	CacheAll bool

	// MaxDuration is the minimum history window retained per parameter.
	// A CacheEntry's ring grows (up to MaxNumEntries) to guarantee that
	// consecutive retained deliveries span at least this much generation
	// time. Zero disables the window guarantee: the ring only grows when
	// explicitly requested never, i.e. it starts and stays at its initial
	// capacity unless MaxNumEntries forces otherwise.
	MaxDuration time.Duration

	// MaxNumEntries is the hard cap on deliveries retained per parameter.
	// Rounded up internally to a power of two for ring masking. Must be
	// >= 1; New panics otherwise (spec.md §7 "Programmer errors").
	MaxNumEntries int

	// Shards controls the number of entry-table shards (outer map lock
	// striping only; each CacheEntry still has its own independent
	// lock). 0 = auto.
	Shards int

	// Metrics is the observability sink. nil => NoopMetrics.
	Metrics Metrics

	// Clock overrides the time source used for expiration checks. The
	// MaxDuration window is measured on the values' own GenerationTime,
	// not on this clock. nil => system clock.
	Clock Clock
}
