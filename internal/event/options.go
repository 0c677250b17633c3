package event

import "github.com/dshills/relay/internal/event/dispatch"

// Option configures a Registry.
type Option func(*registryConfig)

// registryConfig contains configuration for the registry.
type registryConfig struct {
	sink       LogSink
	observer   Observer
	dispatcher *dispatch.SyncDispatcher

	// logging overrides the sink's initial state when set.
	logging *bool
}

// WithSink sets the sink that receives warnings and dumps.
func WithSink(s LogSink) Option {
	return func(c *registryConfig) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithObserver sets an observer of registry activity.
func WithObserver(o Observer) Option {
	return func(c *registryConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithDispatcher sets the dispatcher used to invoke handlers.
func WithDispatcher(d *dispatch.SyncDispatcher) Option {
	return func(c *registryConfig) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithLoggingEnabled starts or stops the sink when the registry is created.
func WithLoggingEnabled(enabled bool) Option {
	return func(c *registryConfig) {
		c.logging = &enabled
	}
}

// SubscriptionOption configures a registration.
type SubscriptionOption func(*subscriptionConfig)

// subscriptionConfig contains configuration for a registration.
type subscriptionConfig struct {
	bounded  bool
	capacity int
}

// WithCapacity bounds the subscription to n invocations.
// n must be positive; On rejects anything else with ErrInvalidCapacity.
func WithCapacity(n int) SubscriptionOption {
	return func(c *subscriptionConfig) {
		c.bounded = true
		c.capacity = n
	}
}

// remaining returns the initial remaining count.
func (c subscriptionConfig) remaining() (int, error) {
	if !c.bounded {
		return Unlimited, nil
	}
	if c.capacity <= 0 {
		return 0, ErrInvalidCapacity
	}
	return c.capacity, nil
}
