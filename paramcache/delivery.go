package paramcache

// DeliveryList is an immutable collection of ParameterValues published
// together by the producer in one Update call. It preserves insertion
// order and supports O(1) amortized first/last lookup per ParameterId.
//
// Once built, a DeliveryList is never mutated: this is what lets the same
// pointer be shared across every CacheEntry the delivery touches (see
// ParameterCache.Update) and lets readers walk it without taking any lock
// beyond the CacheEntry's.
//
// Grounded on the teacher's intrusive doubly linked list (cache/node.go),
// adapted from pointer links to an index chain because a DeliveryList is
// built once from a known slice and frozen, unlike the teacher's mutable
// MRU/LRU list.
type DeliveryList struct {
	values []*ParameterValue
	head   map[ParameterId]int
	tail   map[ParameterId]int
	next   []int // next[i] = index of the next value for the same pid, or -1
}

// NewDeliveryList builds a DeliveryList from values, preserving their
// order. An empty or nil slice yields a valid, empty DeliveryList; per
// spec.md §4.1 an empty delivery is legal but the caller (ParameterCache)
// never stores one.
func NewDeliveryList(values []*ParameterValue) *DeliveryList {
	dl := &DeliveryList{
		values: values,
		head:   make(map[ParameterId]int, len(values)),
		tail:   make(map[ParameterId]int, len(values)),
		next:   make([]int, len(values)),
	}
	for i, v := range values {
		dl.next[i] = -1
		pid := v.ParameterId
		if _, ok := dl.head[pid]; !ok {
			dl.head[pid] = i
		} else {
			dl.next[dl.tail[pid]] = i
		}
		dl.tail[pid] = i
	}
	return dl
}

// Len reports the total number of values in the delivery, across all
// parameters.
func (dl *DeliveryList) Len() int { return len(dl.values) }

// FirstInserted returns the earliest value for pid in this delivery, or
// nil if pid does not appear.
func (dl *DeliveryList) FirstInserted(pid ParameterId) *ParameterValue {
	i, ok := dl.head[pid]
	if !ok {
		return nil
	}
	return dl.values[i]
}

// LastInserted returns the latest value for pid in this delivery, or nil
// if pid does not appear.
func (dl *DeliveryList) LastInserted(pid ParameterId) *ParameterValue {
	i, ok := dl.tail[pid]
	if !ok {
		return nil
	}
	return dl.values[i]
}

// ForEach visits every occurrence of pid in insertion order.
func (dl *DeliveryList) ForEach(pid ParameterId, f func(*ParameterValue)) {
	i, ok := dl.head[pid]
	for ok {
		f(dl.values[i])
		i = dl.next[i]
		ok = i >= 0
	}
}

// Has reports whether pid appears anywhere in the delivery.
func (dl *DeliveryList) Has(pid ParameterId) bool {
	_, ok := dl.head[pid]
	return ok
}
