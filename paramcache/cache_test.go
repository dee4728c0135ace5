package paramcache

import (
	"testing"
	"time"
)

func pid(name string) ParameterId { return ParameterId{Name: name} }

// Scenario 1 (spec.md §8): cache_all=true. update({A@t=100, B@t=100});
// update({A@t=200}). get_last(A) -> value@200; get_last(B) -> value@100.
func TestBasicLast(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxDuration: 10 * time.Second, MaxNumEntries: 1024})
	t.Cleanup(func() { _ = c.Close() })

	a, b := pid("A"), pid("B")
	c.Update([]*ParameterValue{
		NewParameterValue(a, "a1", 100, 100, Acquired, 0),
		NewParameterValue(b, "b1", 100, 100, Acquired, 0),
	})
	c.Update([]*ParameterValue{
		NewParameterValue(a, "a2", 200, 200, Acquired, 0),
	})

	if v := c.GetLast(a); v == nil || v.Value != "a2" {
		t.Fatalf("GetLast(A) = %v, want a2", v)
	}
	if v := c.GetLast(b); v == nil || v.Value != "b1" {
		t.Fatalf("GetLast(B) = %v, want b1", v)
	}
}

// Scenario 2: a single delivery with three parameters. GetValues must
// return all three, and they must originate from that same delivery
// (checked via DeliveryList pointer identity through GetLast).
func TestBatchGrouping(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxDuration: 10 * time.Second, MaxNumEntries: 1024})
	t.Cleanup(func() { _ = c.Close() })

	a, b, cc := pid("A"), pid("B"), pid("C")
	c.Update([]*ParameterValue{
		NewParameterValue(a, 1, 500, 500, Acquired, 0),
		NewParameterValue(b, 2, 500, 500, Acquired, 0),
		NewParameterValue(cc, 3, 500, 500, Acquired, 0),
	})

	got := c.GetValues([]ParameterId{a, b, cc})
	if len(got) != 3 {
		t.Fatalf("GetValues returned %d values, want 3", len(got))
	}
	pc := c.(*parameterCache)
	ea, _ := pc.entries.Load(a)
	shared := ea.GetLast()
	for _, v := range got {
		if v.GenerationTime != 500 {
			t.Fatalf("unexpected value %v", v)
		}
		e, ok := pc.entries.Load(v.ParameterId)
		if !ok || e.GetLast() != shared || shared.LastInserted(v.ParameterId) != v {
			t.Fatalf("value for %v does not come from the shared delivery", v.ParameterId)
		}
	}
}

// Scenario 3 (spec.md §8, adapted): the ring must grow rather than
// overwrite the oldest delivery when doing so would drop below
// max_duration_ms of retained history.
//
// spec.md's §3 invariant 1 pins initial capacity to
// min(128, max_num_entries) rounded up to a power of two, so
// demonstrating growth from first principles needs max_num_entries > 128
// (otherwise the ring starts at its cap and never needs to grow). This
// fills the initial 128-slot ring, then writes one delivery past it with
// a tiny generation-time gap — well under max_duration_ms — forcing
// CacheEntry.grow() before the write lands.
func TestWindowGrowth(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxDuration: 100_000 * time.Millisecond, MaxNumEntries: 256})
	t.Cleanup(func() { _ = c.Close() })

	a := pid("A")
	const fill = 129 // one past the initial 128-slot capacity
	for gen := int64(0); gen < fill; gen++ {
		c.Update([]*ParameterValue{NewParameterValue(a, gen, gen, gen, Acquired, 0)})
	}

	got, ok := c.EntryStats(a)
	if !ok {
		t.Fatal("expected entry for A")
	}
	if got.Capacity != 256 {
		t.Fatalf("capacity = %d, want 256 (ring should have doubled from 128)", got.Capacity)
	}
	if got.Grows != 1 {
		t.Fatalf("Grows = %d, want 1", got.Grows)
	}

	all := c.GetAll(a)
	if len(all) != fill {
		t.Fatalf("GetAll(A) returned %d values, want %d (none evicted by the growth)", len(all), fill)
	}
}

// Scenario 4: max_num_entries=4. Insert 6 deliveries; GetAll returns
// exactly 4 values, newest first.
func TestCapacityCap(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxNumEntries: 4})
	t.Cleanup(func() { _ = c.Close() })

	a := pid("A")
	for _, gen := range []int64{0, 100, 200, 300, 400, 500} {
		c.Update([]*ParameterValue{NewParameterValue(a, gen, gen, gen, Acquired, 0)})
	}

	all := c.GetAll(a)
	if len(all) != 4 {
		t.Fatalf("GetAll(A) returned %d values, want 4", len(all))
	}
	want := []int64{500, 400, 300, 200}
	for i, v := range all {
		if v.GenerationTime != want[i] {
			t.Fatalf("GetAll(A)[%d].GenerationTime = %d, want %d", i, v.GenerationTime, want[i])
		}
	}
}

// Scenario 5 / P6: cache_all=false. update({A@t=10}); get_last(A) -> nil
// (and enrolls A). update({A@t=20}); get_last(A) -> value@20.
func TestLazySubscription(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: false, MaxNumEntries: 16})
	t.Cleanup(func() { _ = c.Close() })

	a := pid("A")
	c.Update([]*ParameterValue{NewParameterValue(a, "v1", 10, 10, Acquired, 0)})
	if v := c.GetLast(a); v != nil {
		t.Fatalf("GetLast(A) before subscription = %v, want nil", v)
	}

	c.Update([]*ParameterValue{NewParameterValue(a, "v2", 20, 20, Acquired, 0)})
	if v := c.GetLast(a); v == nil || v.Value != "v2" {
		t.Fatalf("GetLast(A) after subscription = %v, want v2", v)
	}

	subs := c.Subscriptions()
	if len(subs) != 1 || subs[0] != a {
		t.Fatalf("Subscriptions() = %v, want [A]", subs)
	}
}

// B is delivered but never read: with cache_all=false it must never be
// retained.
func TestLazySubscription_UnreadParameterNeverCached(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: false, MaxNumEntries: 16})
	t.Cleanup(func() { _ = c.Close() })

	b := pid("B")
	c.Update([]*ParameterValue{NewParameterValue(b, "v", 10, 10, Acquired, 0)})
	if _, ok := c.EntryStats(b); ok {
		t.Fatal("B should have no CacheEntry: never subscribed")
	}
}

// Scenario 6 / P7: a value expires between reads and the transition is
// monotone and visible to later reads.
func TestExpiration(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(0)
	c := New(Options{CacheAll: true, MaxNumEntries: 16, Clock: clock})
	t.Cleanup(func() { _ = c.Close() })

	a := pid("A")
	c.Update([]*ParameterValue{NewParameterValue(a, "v", 1000, 1000, Acquired, 500)})

	clock.Set(1499)
	if v := c.GetLast(a); v.Status() != Acquired {
		t.Fatalf("status at t=1499 = %v, want ACQUIRED", v.Status())
	}

	clock.Set(1501)
	if v := c.GetLast(a); v.Status() != Expired {
		t.Fatalf("status at t=1501 = %v, want EXPIRED", v.Status())
	}

	// Once expired, it never reverts to ACQUIRED on a later read, even if
	// the clock moves backward (defensive: shouldn't happen, but the
	// transition must still be monotone).
	clock.Set(1000)
	if v := c.GetLast(a); v.Status() != Expired {
		t.Fatalf("status must remain EXPIRED, got %v", v.Status())
	}
}

// P4: a delivery whose newest generation time for a parameter regresses
// must never become observable.
func TestOutOfOrderDrop(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxNumEntries: 16})
	t.Cleanup(func() { _ = c.Close() })

	a := pid("A")
	c.Update([]*ParameterValue{NewParameterValue(a, "new", 200, 200, Acquired, 0)})
	c.Update([]*ParameterValue{NewParameterValue(a, "stale", 100, 100, Acquired, 0)})

	if v := c.GetLast(a); v == nil || v.Value != "new" {
		t.Fatalf("GetLast(A) = %v, want the t=200 value (out-of-order write must be dropped)", v)
	}
	all := c.GetAll(a)
	for _, v := range all {
		if v.Value == "stale" {
			t.Fatal("stale out-of-order value must never be observable")
		}
	}
}

// Values with the same ParameterId appearing multiple times in one
// delivery are all retained; GetAll enumerates every occurrence
// (spec.md §9).
func TestMultipleOccurrencesInOneDelivery(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxNumEntries: 16})
	t.Cleanup(func() { _ = c.Close() })

	a := pid("A")
	c.Update([]*ParameterValue{
		NewParameterValue(a, "first", 100, 100, Acquired, 0),
		NewParameterValue(a, "second", 100, 100, Acquired, 0),
	})

	all := c.GetAll(a)
	if len(all) != 2 {
		t.Fatalf("GetAll(A) returned %d values, want 2", len(all))
	}
	if all[0].Value != "first" || all[1].Value != "second" {
		t.Fatalf("GetAll(A) = %v, want [first, second] in insertion order", all)
	}
	if v := c.GetLast(a); v.Value != "second" {
		t.Fatalf("GetLast(A) = %v, want second (last inserted)", v.Value)
	}
}

func TestConstructionPanics(t *testing.T) {
	t.Parallel()

	mustPanic := func(name string, f func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic, got none", name)
			}
		}()
		f()
	}

	mustPanic("MaxNumEntries=0", func() { New(Options{MaxNumEntries: 0}) })
	mustPanic("MaxDuration<0", func() { New(Options{MaxNumEntries: 1, MaxDuration: -time.Second}) })
}

func TestUpdateEmptyDeliveryIsNoop(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxNumEntries: 4})
	t.Cleanup(func() { _ = c.Close() })

	c.Update(nil)
	c.Update([]*ParameterValue{})

	if st := c.Stats(); st.Entries != 0 {
		t.Fatalf("Stats().Entries = %d, want 0", st.Entries)
	}
}

func TestCloseStopsUpdatesNotReads(t *testing.T) {
	t.Parallel()

	c := New(Options{CacheAll: true, MaxNumEntries: 4})
	a := pid("A")
	c.Update([]*ParameterValue{NewParameterValue(a, "v1", 1, 1, Acquired, 0)})

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	c.Update([]*ParameterValue{NewParameterValue(a, "v2", 2, 2, Acquired, 0)})
	if v := c.GetLast(a); v == nil || v.Value != "v1" {
		t.Fatalf("GetLast(A) after Close+Update = %v, want v1 (update after Close must be ignored)", v)
	}
}
