// Package dispatch invokes registry handlers and records how each
// invocation went.
//
// Dispatch is always synchronous: the handler runs on the caller's
// goroutine and Dispatch returns only after it has finished. Panics are not
// recovered; they unwind through Dispatch to the emitting caller.
//
// # Usage
//
//	dispatcher := dispatch.NewSyncDispatcher()
//	result := dispatcher.Dispatch(inv, handler)
//	if !result.IsSuccess() {
//	    return result.Error
//	}
//
// # Result Handling
//
// The Result type captures the outcome of handler execution: the error
// returned by the handler, if any, and the execution duration.
package dispatch
