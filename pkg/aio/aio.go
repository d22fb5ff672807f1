//go:build linux

// Package aio is a completion-based asynchronous socket I/O primitive layer.
//
// A caller builds an Operation describing exactly one kernel request, hands
// it to a Poller, then blocks on the Operation until the completion side
// writes the single raw kernel result and wakes it. Argument memory lives
// inside the Operation for the whole in-flight window, so the kernel never
// holds a pointer the caller could move or free.
package aio

// SubmitOutcome is the result of handing an Operation to a Poller.
type SubmitOutcome int

const (
	// SubmitPending means a kernel request is in flight and the completion
	// side of the poller will resolve the operation later.
	SubmitPending SubmitOutcome = iota
	// SubmitResolved means the operation resolved before any kernel request
	// was issued; its result is already written and Await returns at once.
	SubmitResolved
)

// Poller submits prepared Operations and resolves them on completion.
// Exactly one resolution occurs per submitted operation, whichever outcome
// Submit reports.
type Poller interface {
	Submit(op *Operation) SubmitOutcome
}
