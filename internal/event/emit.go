package event

import "go.uber.org/zap"

// Emit invokes every handler whose pattern matches name, passing args.
//
// Patterns are visited in registration order, and each pattern's handlers
// in theirs. The candidates are fixed when Emit starts: subscriptions
// removed while it runs are skipped, and subscriptions added while it runs
// are not invoked.
//
// A handler error stops the emission and is returned as a *HandlerError.
// Emitting a name nothing matches logs a warning and returns nil.
func (r *Registry) Emit(name string, args ...any) error {
	return r.emit(name, false, nil, args)
}

// EmitWithContext is Emit with bound passed to every handler as
// Invocation.Context. Invocation.Bound is set even when bound is nil.
func (r *Registry) EmitWithContext(name string, bound any, args ...any) error {
	return r.emit(name, true, bound, args)
}

type target struct {
	entry *entry
	subs  []*subscription
}

func (r *Registry) emit(name string, isBound bool, bound any, args []any) error {
	matched := r.table.match(name)
	if len(matched) == 0 {
		r.unmatched++
		r.observer.EventUnmatched(name)
		r.sink.Warn("event has no matched configuration", zap.String("event", name))
		return nil
	}

	r.emitted++
	r.observer.EventEmitted(name, len(matched))

	targets := make([]target, len(matched))
	for i, e := range matched {
		targets[i] = target{entry: e, subs: e.snapshot()}
	}

	for _, t := range targets {
		pattern := t.entry.pattern.String()
		for _, s := range t.subs {
			if s.removed {
				continue
			}

			inv := Invocation{
				Event:   name,
				Pattern: pattern,
				Context: bound,
				Bound:   isBound,
				Args:    args,
			}
			result := r.dispatcher.Dispatch(inv, s.handler)
			r.observer.HandlerInvoked(pattern, result.Duration, result.Error)

			if result.IsError() {
				r.sink.Error("handler failed",
					zap.String("event", name),
					zap.String("pattern", pattern),
					zap.String("subscription", s.id),
					zap.Error(result.Error),
				)
				return &HandlerError{
					SubscriptionID: s.id,
					Pattern:        pattern,
					Event:          name,
					Err:            result.Error,
				}
			}

			// The handler may have removed itself.
			if s.removed {
				continue
			}
			if s.consume() {
				r.table.remove(s)
				r.expired++
				r.observer.SubscriptionExpired(pattern)
				r.sink.Debug("subscription expired",
					zap.String("pattern", pattern),
					zap.String("subscription", s.id),
				)
			}
		}
	}
	return nil
}
