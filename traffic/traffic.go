// Package traffic seeds the initial workload of a simulation.
package traffic

import (
	"fmt"
	"math/rand"

	"simnet/network"
	"simnet/protocol"
)

// A Generator injects the initial messages into a freshly constructed
// network, before the first step.
type Generator interface {
	Generate(net *network.Network)
}

// AllToAll makes every process send one message to every other process:
// n*(n-1) messages in total.
type AllToAll struct{}

func (AllToAll) Generate(net *network.Network) {
	n := net.N()
	for from := 0; from < n; from++ {
		for to := 0; to < n; to++ {
			if from != to {
				net.CreateInitialMessage(from, to, fmt.Sprintf("INIT %v->%v", from, to))
			}
		}
	}
}

// Committee traffic modes.
const (
	ModeAllToCommittee = "all-to-committee"
	ModeCommitteeToAll = "committee-to-all"
)

// Committee generates initial traffic respecting a committee topology:
// either every process contacts the committee, or the committee
// broadcasts to everyone.
type Committee struct {
	members []int
	mode    string
}

// NewCommittee validates the mode up front; an unknown mode is a
// configuration error and must fail before any simulation state exists.
// The member ids are kept in the given order.
func NewCommittee(members []int, mode string) (*Committee, error) {
	if mode != ModeAllToCommittee && mode != ModeCommitteeToAll {
		return nil, fmt.Errorf("traffic: invalid committee mode %q, expected %q or %q", mode, ModeAllToCommittee, ModeCommitteeToAll)
	}
	return &Committee{members: members, mode: mode}, nil
}

func (c *Committee) Generate(net *network.Network) {
	n := net.N()
	switch c.mode {
	case ModeAllToCommittee:
		for from := 0; from < n; from++ {
			for _, to := range c.members {
				if from != to {
					net.CreateInitialMessage(from, to, fmt.Sprintf("INIT_REQUEST %v->%v", from, to))
				}
			}
		}
	case ModeCommitteeToAll:
		for _, from := range c.members {
			for to := 0; to < n; to++ {
				if from != to {
					net.CreateInitialMessage(from, to, fmt.Sprintf("INIT_COMMAND %v->%v", from, to))
				}
			}
		}
	default:
		panic(fmt.Sprintf("traffic: committee generator constructed with invalid mode %q", c.mode))
	}
}

// Consensus seeds every process of a consensus run: it writes the chosen
// initial bit with a self-signature directly into the process state, then
// broadcasts the initial value map to all peers. The steady-state handler
// assumes this has happened before the first delivery.
type Consensus struct {
	// bit < 0 means each process draws its own bit from rng.
	bit int
	rng *rand.Rand
}

// NewConsensusFixed seeds every process with the same initial bit.
func NewConsensusFixed(bit int) (*Consensus, error) {
	if bit != 0 && bit != 1 {
		return nil, fmt.Errorf("traffic: initial consensus bit must be 0 or 1, got %v", bit)
	}
	return &Consensus{bit: bit}, nil
}

// NewConsensusRandom seeds each process with an independently drawn bit.
func NewConsensusRandom(seed int64) *Consensus {
	return &Consensus{bit: -1, rng: rand.New(rand.NewSource(seed))}
}

func (c *Consensus) Generate(net *network.Network) {
	n := net.N()
	for pid := 0; pid < n; pid++ {
		st, ok := net.ProcessState(pid).(*protocol.ConsensusState)
		if !ok {
			panic(fmt.Sprintf("traffic: consensus generator used with process state of type %T", net.ProcessState(pid)))
		}

		bit := c.bit
		if bit < 0 {
			bit = c.rng.Intn(2)
		}
		st.Seed(pid, bit)

		payload := st.Payload()
		for to := 0; to < n; to++ {
			if to != pid {
				net.CreateInitialMessage(pid, to, payload)
			}
		}
	}
}
