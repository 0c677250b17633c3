package event

import (
	"errors"

	"github.com/dshills/relay/internal/event/topic"
)

// Sentinel errors for the registry.
var (
	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrUncomparableHandler is returned when a handler's dynamic type cannot
	// be compared for identity.
	ErrUncomparableHandler = errors.New("handler is not comparable")

	// ErrInvalidCapacity is returned when a capacity is zero or negative.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = topic.ErrInvalidPattern
)

// HandlerError wraps an error from a handler with additional context.
type HandlerError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Pattern is the pattern the handler was registered under.
	Pattern string

	// Event is the emitted event name.
	Event string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for subscription " + e.SubscriptionID + " on pattern " + e.Pattern +
		" (event " + e.Event + "): " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
