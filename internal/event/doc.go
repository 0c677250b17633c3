// Package event provides an in-process publish/subscribe registry.
//
// Callers register handlers against event patterns and later emit named
// events. Emission is synchronous: every matching handler runs on the
// caller's goroutine before Emit returns.
//
// # Architecture
//
//	          ┌────────────────────────────────────────┐
//	          │               Registry                 │
//	          │  - On / Once / Off                     │
//	          │  - Emit / EmitWithContext              │
//	          └────────────────────────────────────────┘
//	                  │                     │
//	                  ▼                     ▼
//	┌─────────────────────────┐   ┌─────────────────────────┐
//	│      Pattern Table      │   │    dispatch.Dispatcher  │
//	│  - insertion ordered    │   │  - timing, statistics   │
//	│  - topic.Matcher index  │   └─────────────────────────┘
//	└─────────────────────────┘
//
// # Patterns
//
// Patterns use dot notation. A segment equal to "*" matches one run of
// non-dot characters:
//
//	order.created      exact match only
//	order.*.added      matches order.line.added
//	order.*            matches order.created, and by substring order.line.added
//
// Wildcard expressions are not anchored; see package topic for details.
//
// # Handlers
//
// Handlers are identified by interface equality, so their dynamic type must
// be comparable. Pointer receivers are the usual choice. NewHandler wraps a
// function in a fresh pointer:
//
//	h := event.NewHandler(func(inv event.Invocation) error {
//	    fmt.Println(inv.Event, inv.Args)
//	    return nil
//	})
//	reg.On("order.*", h)
//	reg.On("order.*", h, event.WithCapacity(3)) // refreshes capacity only
//
// # Capacity
//
// A subscription registered WithCapacity(n) is removed after its n-th
// successful invocation. Once is On with capacity 1. When the last
// subscription of a pattern is removed, the pattern itself is removed.
//
// # Errors
//
// A handler error stops the emission and is returned wrapped in a
// *HandlerError. Panics are not recovered. Emitting an event nothing
// matches, or removing an unknown pattern, only logs a warning.
//
// # Concurrency
//
// A Registry is not safe for concurrent use. Handlers may call back into
// the Registry; changes are visible immediately, but subscriptions added
// during an emission are first invoked by the next one.
package event
