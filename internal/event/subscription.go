package event

import (
	"reflect"

	"github.com/google/uuid"
)

// Subscription is a read-only view of one registration.
type Subscription struct {
	// ID is the unique subscription identifier.
	ID string

	// Pattern is the exact pattern the handler was registered under.
	Pattern string

	// Handler is the registered handler.
	Handler Handler

	// Remaining is the number of invocations left, or Unlimited.
	Remaining int
}

// Bounded returns true if the subscription expires after a fixed number of
// invocations.
func (s Subscription) Bounded() bool {
	return s.Remaining != Unlimited
}

// subscription is the internal registration record.
type subscription struct {
	id        string
	pattern   string
	handler   Handler
	remaining int

	// removed is set once the subscription leaves its set, so in-flight
	// emissions holding a snapshot skip it.
	removed bool
}

// newSubscription creates a new subscription with a fresh ID.
func newSubscription(pattern string, h Handler, remaining int) *subscription {
	return &subscription{
		id:        uuid.NewString(),
		pattern:   pattern,
		handler:   h,
		remaining: remaining,
	}
}

// bounded returns true if the subscription has a remaining count.
func (s *subscription) bounded() bool {
	return s.remaining != Unlimited
}

// consume records one invocation and reports whether the subscription is
// now exhausted.
func (s *subscription) consume() bool {
	if !s.bounded() {
		return false
	}
	s.remaining--
	return s.remaining <= 0
}

// view returns the exported read-only view.
func (s *subscription) view() Subscription {
	return Subscription{
		ID:        s.id,
		Pattern:   s.pattern,
		Handler:   s.handler,
		Remaining: s.remaining,
	}
}

// checkHandler validates that h can be registered and compared.
func checkHandler(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	if !reflect.ValueOf(h).Comparable() {
		return ErrUncomparableHandler
	}
	return nil
}
