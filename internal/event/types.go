package event

import (
	"time"

	"go.uber.org/zap"

	"github.com/dshills/relay/internal/event/dispatch"
)

// Unlimited is the remaining count of an unbounded subscription.
const Unlimited = -1

// Invocation carries one emitted event to one handler.
type Invocation = dispatch.Invocation

// Handler is the interface for event handlers.
// Handlers are identified by interface equality.
type Handler interface {
	// Handle processes an event. A non-nil error stops the emission.
	Handle(inv Invocation) error
}

// Releaser is implemented by handlers that hold resources for as long as
// they are registered. Release is called once the handler's last
// subscription under any pattern has been removed or has expired.
type Releaser interface {
	Release()
}

type funcHandler struct {
	fn func(inv Invocation) error
}

func (h *funcHandler) Handle(inv Invocation) error {
	return h.fn(inv)
}

// NewHandler wraps fn in a Handler with its own identity. Each call returns
// a distinct handler, so keep the returned value to refresh or remove the
// registration later. Returns nil if fn is nil.
func NewHandler(fn func(inv Invocation) error) Handler {
	if fn == nil {
		return nil
	}
	return &funcHandler{fn: fn}
}

// LogSink receives the registry's warnings and state dumps.
// *logger.Sink implements it.
type LogSink interface {
	Debug(msg string, fields ...zap.Field)
	Log(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	// Dump writes when forced or when the sink is enabled.
	Dump(msg string, forced bool, fields ...zap.Field)

	Start()
	Stop()
	Enabled() bool
}

// Observer is notified of registry activity.
type Observer interface {
	// EventEmitted is called when an emission matched at least one pattern.
	EventEmitted(name string, matched int)

	// EventUnmatched is called when an emission matched nothing.
	EventUnmatched(name string)

	// HandlerInvoked is called after each handler returns.
	HandlerInvoked(pattern string, d time.Duration, err error)

	// SubscriptionExpired is called when a bounded subscription runs out.
	SubscriptionExpired(pattern string)
}

type nopObserver struct{}

func (nopObserver) EventEmitted(string, int)                    {}
func (nopObserver) EventUnmatched(string)                       {}
func (nopObserver) HandlerInvoked(string, time.Duration, error) {}
func (nopObserver) SubscriptionExpired(string)                  {}

// Stats contains registry statistics.
type Stats struct {
	// EventsEmitted is the number of emissions that matched a pattern.
	EventsEmitted uint64

	// EventsUnmatched is the number of emissions that matched nothing.
	EventsUnmatched uint64

	// HandlersExecuted is the total number of handler invocations.
	HandlersExecuted uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// SubscriptionsExpired is the number of bounded subscriptions removed
	// after running out of invocations.
	SubscriptionsExpired uint64

	// AvgHandlerTime is the average handler execution time.
	AvgHandlerTime time.Duration

	// Patterns is the current number of patterns.
	Patterns int

	// Subscriptions is the current number of subscriptions.
	Subscriptions int
}
