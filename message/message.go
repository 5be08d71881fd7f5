package message

import "fmt"

// NotDelivered is the delivery tick of a message that is still pending.
const NotDelivered int64 = -1

// A Link is a directed (sender, receiver) pair.
//
// Messages on the same link are delivered in FIFO order, messages on
// different links may be delivered in any order.
type Link struct {
	From int
	To   int
}

func (l Link) String() string {
	return fmt.Sprintf("%v->%v", l.From, l.To)
}

// A Message is a single directed communication between two processes.
//
// Messages are created by the network with a globally unique, strictly
// increasing id and the current logical clock as creation tick. Once
// delivered a message is never mutated again; it is retained for
// statistics and logging.
type Message struct {
	ID      int64
	From    int
	To      int
	Created int64
	// The tick at which the message was delivered, NotDelivered while the
	// message is still pending. Assigned exactly once.
	Delivered int64
	Payload   any
}

// New creates a pending message with the provided id, endpoints, creation
// tick and payload.
func New(id int64, from, to int, created int64, payload any) *Message {
	return &Message{
		ID:        id,
		From:      from,
		To:        to,
		Created:   created,
		Delivered: NotDelivered,
		Payload:   payload,
	}
}

// Link returns the directed link the message travels on.
func (m *Message) Link() Link {
	return Link{From: m.From, To: m.To}
}

// MarkDelivered assigns the delivery tick.
//
// A message is delivered exactly once and never before it was created.
// Violating either is an engine bug, not a runtime condition, so both
// panic.
func (m *Message) MarkDelivered(tick int64) {
	if m.Delivered != NotDelivered {
		panic(fmt.Sprintf("message: message %v delivered twice", m.ID))
	}
	if tick < m.Created {
		panic(fmt.Sprintf("message: message %v delivered at tick %v before creation tick %v", m.ID, tick, m.Created))
	}
	m.Delivered = tick
}

// Delay returns the number of ticks the message spent pending.
// Only valid after delivery.
func (m *Message) Delay() int64 {
	if m.Delivered == NotDelivered {
		panic(fmt.Sprintf("message: delay requested for pending message %v", m.ID))
	}
	return m.Delivered - m.Created
}

func (m *Message) String() string {
	return fmt.Sprintf("{Msg %v: %v->%v payload=%v}", m.ID, m.From, m.To, m.Payload)
}
