package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNilRegistry is returned when a module is loaded without a registry.
	ErrNilRegistry = errors.New("module has no registry")

	// ErrNotRegistered is returned when a Lua handler runs before its
	// module was registered with a Lua state.
	ErrNotRegistered = errors.New("module is not registered with a lua state")
)
