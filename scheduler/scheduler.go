package scheduler

import (
	"simnet/message"
)

// A Scheduler owns every undelivered message in the network and decides
// the order in which they are delivered.
//
// The network hands every newly created message to Add and asks for the
// next delivery with Next. Exactly one message is delivered per simulated
// tick, so the scheduler is the sole source of timing nondeterminism in a
// run.
type Scheduler interface {
	// Add enqueues a pending message.
	Add(msg *message.Message)

	// Next selects and removes the next message to be delivered.
	// Returns nil if no messages are pending.
	Next() *message.Message

	// HasPending reports whether at least one message is waiting.
	HasPending() bool

	// PendingLinks returns the number of directed links with at least one
	// pending message.
	PendingLinks() int

	// PendingMessages returns the total number of pending messages.
	PendingMessages() int

	// ProcessCrashed purges every pending message addressed to pid.
	// Called by the network when a process crashes; messages to a dead
	// process are dropped, never delivered.
	ProcessCrashed(pid int)
}
