package workflow

import "time"

// Budget tracks calls made against a maximum call count and elapsed time
// against a wall-clock budget for one run. Checks are advisory: a stage in
// flight always completes its current call, later stages simply issue fewer
// or zero calls. Scoped to one run, so no locking is needed.
type Budget struct {
	maxCalls   int
	timeBudget time.Duration
	callsMade  int
	start      time.Time
}

// NewBudget creates a budget starting now.
func NewBudget(maxCalls int, timeBudget time.Duration) *Budget {
	return &Budget{
		maxCalls:   maxCalls,
		timeBudget: timeBudget,
		start:      time.Now(),
	}
}

// Record counts one attempted tool invocation, success or failure.
func (b *Budget) Record() {
	b.callsMade++
}

// CallsMade returns the number of attempted invocations so far.
func (b *Budget) CallsMade() int {
	return b.callsMade
}

// CallsRemaining returns how many more invocations the budget allows.
func (b *Budget) CallsRemaining() int {
	if b.callsMade >= b.maxCalls {
		return 0
	}
	return b.maxCalls - b.callsMade
}

// Elapsed returns the wall-clock time since the run started.
func (b *Budget) Elapsed() time.Duration {
	return time.Since(b.start)
}

// TimeRemaining returns the unused portion of the wall-clock budget,
// floored at zero.
func (b *Budget) TimeRemaining() time.Duration {
	rem := b.timeBudget - b.Elapsed()
	if rem < 0 {
		return 0
	}
	return rem
}

// Allow reports whether another call may be issued: both the call count and
// the wall clock must be under budget.
func (b *Budget) Allow() bool {
	return b.callsMade < b.maxCalls && b.Elapsed() < b.timeBudget
}
