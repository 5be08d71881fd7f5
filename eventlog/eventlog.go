// Package eventlog records the event stream of a simulation run: message
// creations, deliveries, crashes and periodic backlog snapshots.
package eventlog

import (
	"simnet/message"
)

// The event types emitted by the network.
const (
	EventCreated   = "CREATED"
	EventDelivered = "DELIVERED"
	EventCrash     = "CRASH"
	EventStepStats = "STEP_STATS"
)

// A Recorder receives every event the network emits. Implementations must
// not mutate the messages they are handed; messages stay owned by the
// engine.
type Recorder interface {
	MessageCreated(at int64, msg *message.Message)
	MessageDelivered(at int64, msg *message.Message)
	ProcessCrashed(at int64, pid int)
	StepStats(at int64, pendingLinks, pendingMessages int)
}

// Nop discards all events. The default recorder.
type Nop struct{}

func (Nop) MessageCreated(int64, *message.Message)   {}
func (Nop) MessageDelivered(int64, *message.Message) {}
func (Nop) ProcessCrashed(int64, int)                {}
func (Nop) StepStats(int64, int, int)                {}

// An Entry is one recorded event.
type Entry struct {
	Type string
	At   int64

	// Message fields, set for CREATED and DELIVERED
	MessageID int64
	From      int
	To        int
	Created   int64
	Delay     int64
	Payload   string

	// Crash field, set for CRASH
	PID int

	// Backlog fields, set for STEP_STATS
	PendingLinks    int
	PendingMessages int
}

// Memory retains all events in order. Used by tests and for post-run
// review of short runs.
type Memory struct {
	Entries []Entry
}

func NewMemory() *Memory {
	return &Memory{Entries: make([]Entry, 0)}
}

func (m *Memory) MessageCreated(at int64, msg *message.Message) {
	m.Entries = append(m.Entries, messageEntry(EventCreated, at, msg))
}

func (m *Memory) MessageDelivered(at int64, msg *message.Message) {
	e := messageEntry(EventDelivered, at, msg)
	e.Delay = msg.Delay()
	m.Entries = append(m.Entries, e)
}

func (m *Memory) ProcessCrashed(at int64, pid int) {
	m.Entries = append(m.Entries, Entry{Type: EventCrash, At: at, PID: pid})
}

func (m *Memory) StepStats(at int64, pendingLinks, pendingMessages int) {
	m.Entries = append(m.Entries, Entry{
		Type:            EventStepStats,
		At:              at,
		PendingLinks:    pendingLinks,
		PendingMessages: pendingMessages,
	})
}

// ByType returns the recorded entries of one event type, in order.
func (m *Memory) ByType(eventType string) []Entry {
	out := make([]Entry, 0)
	for _, e := range m.Entries {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func messageEntry(eventType string, at int64, msg *message.Message) Entry {
	return Entry{
		Type:      eventType,
		At:        at,
		MessageID: msg.ID,
		From:      msg.From,
		To:        msg.To,
		Created:   msg.Created,
		Payload:   payloadString(msg.Payload),
	}
}
