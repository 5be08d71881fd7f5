package protocol

import (
	"fmt"
	"math/rand"
	"strings"

	"simnet/message"
)

// EchoAll broadcasts a fresh message to every other process whenever any
// message is delivered. The network never quiesces under this protocol
// unless bounded by a step ceiling.
type EchoAll struct{}

func (EchoAll) InitState() any { return nil }

func (EchoAll) HandleMessage(myID int, _ any, msg *message.Message, n int) []Outgoing {
	out := make([]Outgoing, 0, n-1)
	for target := 0; target < n; target++ {
		if target != myID {
			out = append(out, Outgoing{To: target, Payload: fmt.Sprintf("Response from %v to msg %v", myID, msg.ID)})
		}
	}
	return out
}

// PingPong replies to the sender of every delivered message.
type PingPong struct{}

func (PingPong) InitState() any { return nil }

func (PingPong) HandleMessage(myID int, _ any, msg *message.Message, _ int) []Outgoing {
	return []Outgoing{{To: msg.From, Payload: fmt.Sprintf("Response from %v", myID)}}
}

// RequestResponse answers each request with a single response and ignores
// responses, so every pair of processes exchanges at most one round trip.
type RequestResponse struct{}

func (RequestResponse) InitState() any { return nil }

func (RequestResponse) HandleMessage(myID int, _ any, msg *message.Message, _ int) []Outgoing {
	if strings.Contains(fmt.Sprint(msg.Payload), "RESPONSE") {
		return nil
	}
	return []Outgoing{{To: msg.From, Payload: fmt.Sprintf("RESPONSE from %v", myID)}}
}

// RandomSingle forwards each delivered message to one uniformly chosen
// other process. The random source is per-instance and seeded, keeping
// runs reproducible.
type RandomSingle struct {
	rng *rand.Rand
}

func NewRandomSingle(seed int64) *RandomSingle {
	return &RandomSingle{rng: rand.New(rand.NewSource(seed))}
}

func (*RandomSingle) InitState() any { return nil }

func (p *RandomSingle) HandleMessage(myID int, _ any, msg *message.Message, n int) []Outgoing {
	if n < 2 {
		return nil
	}
	// Draw from [0, n-1) and skip over myID to pick a uniform other process
	target := p.rng.Intn(n - 1)
	if target >= myID {
		target++
	}
	return []Outgoing{{To: target, Payload: fmt.Sprintf("Random forwarding from %v (origin: %v)", myID, msg.From)}}
}

// Committee restricts the communication topology: committee members
// broadcast to everyone, regular processes only report to the committee.
type Committee struct {
	members map[int]bool
}

// NewCommittee creates a Committee protocol with the given member ids.
func NewCommittee(members []int) *Committee {
	m := make(map[int]bool, len(members))
	for _, id := range members {
		m[id] = true
	}
	return &Committee{members: m}
}

func (*Committee) InitState() any { return nil }

func (p *Committee) HandleMessage(myID int, _ any, _ *message.Message, n int) []Outgoing {
	out := make([]Outgoing, 0)
	if p.members[myID] {
		for target := 0; target < n; target++ {
			if target != myID {
				out = append(out, Outgoing{To: target, Payload: fmt.Sprintf("Committee broadcast from %v", myID)})
			}
		}
		return out
	}
	// Iterate in pid order so message creation order is reproducible
	for target := 0; target < n; target++ {
		if p.members[target] && target != myID {
			out = append(out, Outgoing{To: target, Payload: fmt.Sprintf("Report from %v to committee", myID)})
		}
	}
	return out
}

// Member reports whether id belongs to the committee.
func (p *Committee) Member(id int) bool {
	return p.members[id]
}
