package dispatch

import (
	"sync/atomic"
	"time"
)

// SyncDispatcher executes handlers synchronously in the caller's goroutine
// and keeps running statistics.
type SyncDispatcher struct {
	executor *Executor

	// Stats
	dispatched  atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{
		executor: NewExecutor(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithExecutor sets the executor used to run handlers.
func WithExecutor(e *Executor) SyncOption {
	return func(d *SyncDispatcher) {
		if e != nil {
			d.executor = e
		}
	}
}

// Dispatch executes a handler synchronously with the given invocation.
func (d *SyncDispatcher) Dispatch(inv Invocation, handler Handler) Result {
	d.dispatched.Add(1)

	result := d.executor.Execute(inv, handler)

	d.totalTimeNs.Add(result.Duration.Nanoseconds())
	if result.IsSuccess() {
		d.succeeded.Add(1)
	} else {
		d.failed.Add(1)
	}

	return result
}

// Stats returns dispatch statistics.
func (d *SyncDispatcher) Stats() SyncDispatcherStats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SyncDispatcherStats{
		Dispatched:    dispatched,
		Succeeded:     d.succeeded.Load(),
		Failed:        d.failed.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// SyncDispatcherStats contains statistics for a sync dispatcher.
type SyncDispatcherStats struct {
	// Dispatched is the total number of dispatch calls.
	Dispatched uint64

	// Succeeded is the number of handlers that returned nil.
	Succeeded uint64

	// Failed is the number of handlers that returned errors.
	Failed uint64

	// TotalDuration is the cumulative time spent in handlers.
	TotalDuration time.Duration

	// AvgDuration is the average handler execution time.
	AvgDuration time.Duration
}
