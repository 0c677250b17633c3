package dispatch

import "time"

// Invocation carries one emitted event to one handler.
type Invocation struct {
	// Event is the emitted event name.
	Event string

	// Pattern is the pattern the handler was registered under.
	Pattern string

	// Context is the value the handler is bound to.
	Context any

	// Bound is true when the event was emitted with a context, which may
	// itself be nil.
	Bound bool

	// Args are the emitted arguments.
	Args []any
}

// Arg returns the i-th argument, or nil if there is none.
func (inv Invocation) Arg(i int) any {
	if i < 0 || i >= len(inv.Args) {
		return nil
	}
	return inv.Args[i]
}

// Handler is the interface for event handlers.
// This mirrors the event.Handler interface to avoid circular imports.
type Handler interface {
	Handle(inv Invocation) error
}

// Dispatcher is the interface for event dispatchers.
type Dispatcher interface {
	// Dispatch executes a handler with the given invocation.
	Dispatch(inv Invocation, handler Handler) Result
}

// Result represents the outcome of a handler execution.
type Result struct {
	// Success is true if the handler returned nil.
	Success bool

	// Error is the error returned by the handler, if any.
	Error error

	// Duration is how long the handler took to execute.
	Duration time.Duration
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && r.Error == nil
}

// IsError returns true if the handler returned an error.
func (r Result) IsError() bool {
	return r.Error != nil
}
