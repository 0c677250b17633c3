package event

import (
	"go.uber.org/zap"

	"github.com/dshills/relay/internal/event/dispatch"
	"github.com/dshills/relay/internal/logger"
)

// Registry manages subscriptions organized by event pattern.
// It is not safe for concurrent use.
type Registry struct {
	table      *table
	sink       LogSink
	observer   Observer
	dispatcher *dispatch.SyncDispatcher

	emitted   uint64
	unmatched uint64
	expired   uint64
}

// NewRegistry creates a new, empty registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := registryConfig{
		sink:       logger.Nop(),
		observer:   nopObserver{},
		dispatcher: dispatch.NewSyncDispatcher(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logging != nil {
		if *cfg.logging {
			cfg.sink.Start()
		} else {
			cfg.sink.Stop()
		}
	}

	return &Registry{
		table:      newTable(),
		sink:       cfg.sink,
		observer:   cfg.observer,
		dispatcher: cfg.dispatcher,
	}
}

// On registers h for pattern. Without WithCapacity the subscription is
// unbounded.
//
// If h is already registered for pattern, only its remaining count is
// overwritten (unbounded when no capacity is given) and a warning is logged.
func (r *Registry) On(pattern string, h Handler, opts ...SubscriptionOption) error {
	if err := checkHandler(h); err != nil {
		return err
	}

	var cfg subscriptionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	remaining, err := cfg.remaining()
	if err != nil {
		return err
	}

	e, err := r.table.ensure(pattern)
	if err != nil {
		return err
	}

	if s := e.find(h); s != nil {
		s.remaining = remaining
		r.sink.Warn("handler already registered, capacity refreshed",
			zap.String("pattern", pattern),
			zap.String("subscription", s.id),
			zap.Int("remaining", remaining),
		)
		return nil
	}

	s := newSubscription(pattern, h, remaining)
	r.table.add(e, s)
	r.sink.Debug("handler registered",
		zap.String("pattern", pattern),
		zap.String("subscription", s.id),
		zap.Int("remaining", remaining),
	)
	return nil
}

// Once registers h for a single invocation.
func (r *Registry) Once(pattern string, h Handler) error {
	return r.On(pattern, h, WithCapacity(1))
}

// Off unregisters handlers from pattern. The pattern is looked up by exact
// string; wildcards are never expanded.
//
// Without handlers the whole pattern is removed. With handlers, each one is
// removed from the pattern's set, and the pattern is removed once its set is
// empty. Unknown patterns and handlers are logged and ignored.
func (r *Registry) Off(pattern string, handlers ...Handler) error {
	for _, h := range handlers {
		if err := checkHandler(h); err != nil {
			return err
		}
	}

	e, ok := r.table.get(pattern)
	if !ok {
		r.sink.Warn("pattern is not registered", zap.String("pattern", pattern))
		return nil
	}

	if len(handlers) == 0 {
		removed := r.table.drop(pattern)
		r.sink.Debug("pattern removed",
			zap.String("pattern", pattern),
			zap.Int("subscriptions", len(removed)),
		)
		return nil
	}

	for _, h := range handlers {
		s := e.find(h)
		if s == nil {
			r.sink.Warn("handler is not registered", zap.String("pattern", pattern))
			continue
		}
		r.table.remove(s)
		r.sink.Debug("handler removed",
			zap.String("pattern", pattern),
			zap.String("subscription", s.id),
		)
	}
	return nil
}

// StartLogging enables the sink.
func (r *Registry) StartLogging() {
	r.sink.Start()
}

// StopLogging disables the sink.
func (r *Registry) StopLogging() {
	r.sink.Stop()
}

// LoggingEnabled reports whether the sink is enabled.
func (r *Registry) LoggingEnabled() bool {
	return r.sink.Enabled()
}

// DumpState writes the whole table to the sink, one entry per pattern.
// When forced is false the dump is skipped while logging is stopped.
func (r *Registry) DumpState(forced bool) {
	r.sink.Dump("registry state", forced,
		zap.Int("patterns", r.table.size()),
		zap.Int("subscriptions", r.table.count),
	)

	for _, p := range r.table.patterns() {
		e, _ := r.table.get(p)

		ids := make([]string, len(e.subs))
		remaining := make([]int, len(e.subs))
		for i, s := range e.subs {
			ids[i] = s.id
			remaining[i] = s.remaining
		}

		r.sink.Dump("pattern", forced,
			zap.String("pattern", p),
			zap.Bool("wildcard", e.pattern.IsWildcard()),
			zap.Strings("subscriptions", ids),
			zap.Ints("remaining", remaining),
		)
	}
}

// Patterns returns all registered patterns in registration order.
func (r *Registry) Patterns() []string {
	return r.table.patterns()
}

// Has returns true if pattern is registered, by exact string.
func (r *Registry) Has(pattern string) bool {
	_, ok := r.table.get(pattern)
	return ok
}

// Count returns the total number of subscriptions.
func (r *Registry) Count() int {
	return r.table.count
}

// CountByPattern returns the number of subscriptions for pattern.
func (r *Registry) CountByPattern(pattern string) int {
	e, ok := r.table.get(pattern)
	if !ok {
		return 0
	}
	return len(e.subs)
}

// Subscriptions returns the subscriptions for pattern in registration
// order.
func (r *Registry) Subscriptions(pattern string) []Subscription {
	e, ok := r.table.get(pattern)
	if !ok {
		return nil
	}

	result := make([]Subscription, len(e.subs))
	for i, s := range e.subs {
		result[i] = s.view()
	}
	return result
}

// Clear removes all subscriptions.
func (r *Registry) Clear() {
	r.table.clear()
}

// Stats returns registry statistics.
func (r *Registry) Stats() Stats {
	ds := r.dispatcher.Stats()
	return Stats{
		EventsEmitted:        r.emitted,
		EventsUnmatched:      r.unmatched,
		HandlersExecuted:     ds.Dispatched,
		HandlerErrors:        ds.Failed,
		SubscriptionsExpired: r.expired,
		AvgHandlerTime:       ds.AvgDuration,
		Patterns:             r.table.size(),
		Subscriptions:        r.table.count,
	}
}
