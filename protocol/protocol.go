package protocol

import (
	"simnet/message"
)

// An Outgoing is a message a protocol wants to send in reaction to a
// delivery. The network assigns ids and creation ticks; dead targets are
// skipped.
type Outgoing struct {
	To      int
	Payload any
}

// A Protocol defines how a process reacts to a delivered message.
//
// HandleMessage is the sole behavior hook. It is called once per message
// delivered to a live process and must be a pure function of its inputs
// aside from mutating the passed-in state. It must not consult wall-clock
// time or global randomness; protocols that need randomness carry their
// own seeded source.
//
// The engine is single-threaded: handlers run to completion before the
// next delivery, so implementations need not be safe for concurrent use.
type Protocol interface {
	// InitState returns a fresh state blob for one process. The shape of
	// the blob is owned by the protocol; the engine never inspects it.
	InitState() any

	// HandleMessage processes msg on the process myID with the given state
	// and returns the messages to send in response. n is the total number
	// of processes.
	HandleMessage(myID int, state any, msg *message.Message, n int) []Outgoing
}

// A Decider is implemented by protocols whose processes reach a terminal
// decision. Decision reports the decided value for the given state blob
// and whether the process has decided yet.
type Decider interface {
	Decision(state any) (value int, decided bool)
}

// A Validator is implemented by protocols with parameters that constrain
// the network size. Validate is called before any simulation state is
// constructed and must reject configurations the protocol cannot run on.
type Validator interface {
	Validate(n int) error
}
