package ordersync

import "time"

// Budget tracks the execution cost of one invocation: elapsed wall-clock
// time against a ceiling kept under the host's execution timeout, and the
// accumulated fetched-record count against a hard cap. It is consulted
// before each list page and before each detail sub-batch; it never
// interrupts an in-flight call.
type Budget struct {
	start       time.Time
	maxDuration time.Duration
	maxRecords  int
	records     int
	now         func() time.Time
}

// NewBudget starts a budget clocked from now.
func NewBudget(maxDuration time.Duration, maxRecords int) *Budget {
	return newBudgetWithClock(maxDuration, maxRecords, time.Now)
}

func newBudgetWithClock(maxDuration time.Duration, maxRecords int, now func() time.Time) *Budget {
	return &Budget{
		start:       now(),
		maxDuration: maxDuration,
		maxRecords:  maxRecords,
		now:         now,
	}
}

// Add accounts fetched records against the cap.
func (b *Budget) Add(records int) {
	b.records += records
}

// Exceeded reports whether either limit has been reached. Work already
// done stays valid; the caller must not start another unit of work.
func (b *Budget) Exceeded() bool {
	if b.maxDuration > 0 && b.now().Sub(b.start) >= b.maxDuration {
		return true
	}
	if b.maxRecords > 0 && b.records >= b.maxRecords {
		return true
	}
	return false
}

// Elapsed returns the wall-clock time consumed so far.
func (b *Budget) Elapsed() time.Duration {
	return b.now().Sub(b.start)
}

// Records returns the accumulated fetched-record count.
func (b *Budget) Records() int {
	return b.records
}
