package dispatch

import "github.com/benbjohnson/clock"

// Executor runs a handler and captures timing information.
type Executor struct {
	clock clock.Clock
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock sets the time source used to measure handler duration.
func WithClock(c clock.Clock) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// Execute runs a handler with the given invocation and returns the result.
// A panicking handler is not recovered.
func (e *Executor) Execute(inv Invocation, handler Handler) Result {
	start := e.clock.Now()
	err := handler.Handle(inv)

	result := Result{
		Success:  err == nil,
		Error:    err,
		Duration: e.clock.Since(start),
	}
	return result
}
