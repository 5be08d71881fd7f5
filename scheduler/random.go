package scheduler

import (
	"math/rand"
	"time"

	"golang.org/x/exp/slices"

	"simnet/message"
)

// RandomAsync models a fully asynchronous network with reliable,
// FIFO-per-link delivery.
//
// Mechanism:
//  1. Pending messages are grouped into FIFO queues per directed link.
//  2. To pick the next delivery, one active link is drawn uniformly at
//     random.
//  3. The oldest message on that link is delivered.
//
// The draw is link-first, not message-first: a link with a long backlog is
// no more likely to be selected than one with a single message. Together
// with per-link FIFO order this approximates a fair, memoryless
// asynchronous adversary while staying O(1) amortized per operation.
type RandomAsync struct {
	// queues[l] holds the pending messages for link l, oldest first.
	queues map[message.Link][]*message.Message
	active *linkSet
	total  int

	rng *rand.Rand
}

// NewRandomAsync creates a RandomAsync scheduler seeded with seed.
// Identical seeds reproduce identical delivery sequences.
func NewRandomAsync(seed int64) *RandomAsync {
	return &RandomAsync{
		queues: make(map[message.Link][]*message.Message),
		active: newLinkSet(),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// NewRandomAsyncUnseeded creates a RandomAsync scheduler seeded from the
// wall clock. Runs are not reproducible.
func NewRandomAsyncUnseeded() *RandomAsync {
	return NewRandomAsync(time.Now().UnixNano())
}

// Add enqueues msg at the tail of its link's queue, activating the link
// if it had no pending messages.
func (s *RandomAsync) Add(msg *message.Message) {
	l := msg.Link()
	q := s.queues[l]
	s.queues[l] = append(q, msg)
	s.total++
	if len(q) == 0 {
		s.active.add(l)
	}
}

// Next draws one active link uniformly at random and pops the head of its
// queue. Links whose queue drains are evicted from the active set with a
// swap-and-pop. Returns nil when nothing is pending.
func (s *RandomAsync) Next() *message.Message {
	if s.active.len() == 0 {
		return nil
	}

	l := s.active.pick(s.rng)
	q := s.queues[l]
	msg := q[0]
	q = q[1:]
	s.total--

	if len(q) == 0 {
		delete(s.queues, l)
		s.active.remove(l)
	} else {
		s.queues[l] = q
	}
	return msg
}

// HasPending reports whether at least one message is waiting.
func (s *RandomAsync) HasPending() bool {
	return s.active.len() > 0
}

// PendingLinks returns the number of links with pending messages.
func (s *RandomAsync) PendingLinks() int {
	return s.active.len()
}

// PendingMessages returns the total number of pending messages.
func (s *RandomAsync) PendingMessages() int {
	return s.total
}

// ProcessCrashed purges every queued message addressed to pid, across all
// senders. This is the only O(backlog) operation; crashes are rare
// relative to deliveries.
//
// The purge order is sorted by sender so the active set ends up in the
// same internal order on every run. Map iteration order must not leak
// into the state the rng draws from.
func (s *RandomAsync) ProcessCrashed(pid int) {
	dead := make([]message.Link, 0)
	for l := range s.queues {
		if l.To == pid {
			dead = append(dead, l)
		}
	}
	slices.SortFunc(dead, func(a, b message.Link) bool { return a.From < b.From })

	for _, l := range dead {
		s.total -= len(s.queues[l])
		delete(s.queues, l)
		s.active.remove(l)
	}
}
