package paramcache

import "sync/atomic"

// ParameterId is an opaque handle uniquely identifying a parameter
// definition. Equality and hashing are both required by the cache; hashing
// is provided via String() so ParameterId can key the sharded entry table
// (see internal/table and internal/util.Fnv64a's fmt.Stringer fallback).
type ParameterId struct {
	// Name is the parameter's fully-qualified name, e.g.
	// "/YSS/SIMULATOR/BatteryVoltage". It is the sole identity field:
	// two ParameterIds with the same Name are the same parameter.
	Name string
}

// String implements fmt.Stringer so ParameterId can be hashed by the
// generic Fnv64a helper without the cache needing to know its shape.
func (p ParameterId) String() string { return p.Name }

// AcquisitionStatus reports the freshness of a ParameterValue.
type AcquisitionStatus int32

const (
	// NotReceived means the parameter has never been acquired.
	NotReceived AcquisitionStatus = iota
	// Acquired means the value is fresh.
	Acquired
	// Expired means an Acquired value's expire_millis has elapsed.
	Expired
	// Invalid means the value was acquired but flagged invalid upstream.
	Invalid
)

// String renders the status for logs and test failure messages.
func (s AcquisitionStatus) String() string {
	switch s {
	case Acquired:
		return "ACQUIRED"
	case Expired:
		return "EXPIRED"
	case Invalid:
		return "INVALID"
	default:
		return "NOT_RECEIVED"
	}
}

// ParameterValue is one reading of one parameter. GenerationTime,
// AcquisitionTime, and ExpireMillis are all milliseconds since the Unix
// epoch (or, for ExpireMillis, a duration in milliseconds; 0 means never
// expires). Value is opaque to the cache.
//
// All fields are immutable after construction except the acquisition
// status, which may transition ACQUIRED->EXPIRED (see Status and
// checkExpiration). That transition is lock-free and monotone: once a
// reader observes EXPIRED, no reader ever observes ACQUIRED again for the
// same value.
type ParameterValue struct {
	ParameterId     ParameterId
	Value           any
	GenerationTime  int64
	AcquisitionTime int64
	ExpireMillis    int64

	status atomic.Int32
}

// NewParameterValue constructs a ParameterValue with the given status.
func NewParameterValue(pid ParameterId, value any, generationTime, acquisitionTime int64, status AcquisitionStatus, expireMillis int64) *ParameterValue {
	pv := &ParameterValue{
		ParameterId:     pid,
		Value:           value,
		GenerationTime:  generationTime,
		AcquisitionTime: acquisitionTime,
		ExpireMillis:    expireMillis,
	}
	pv.status.Store(int32(status))
	return pv
}

// Status returns the current acquisition status.
func (v *ParameterValue) Status() AcquisitionStatus {
	return AcquisitionStatus(v.status.Load())
}

// checkExpiration applies the §4.3.1 ACQUIRED->EXPIRED transition if v has
// outlived its expire_millis as of nowMillis. Idempotent: safe to call on
// every read. The CompareAndSwap means concurrent callers race harmlessly —
// exactly one wins, and every caller still observes EXPIRED afterward.
func (v *ParameterValue) checkExpiration(nowMillis int64) {
	if v.ExpireMillis <= 0 {
		return
	}
	if v.status.Load() != int32(Acquired) {
		return
	}
	if v.AcquisitionTime+v.ExpireMillis >= nowMillis {
		return
	}
	v.status.CompareAndSwap(int32(Acquired), int32(Expired))
}
