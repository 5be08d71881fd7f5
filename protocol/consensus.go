package protocol

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"simnet/message"
)

// A Proposal is a binary value proposed by some origin process together
// with the set of processes that have signed it. Signer sets only grow.
type Proposal struct {
	Bit     int
	Signers map[int]bool
}

func (p Proposal) clone() Proposal {
	return Proposal{Bit: p.Bit, Signers: maps.Clone(p.Signers)}
}

// A ConsensusPayload is the content of every consensus message: the
// sender's full value map stamped with the phase and round it was sent in.
type ConsensusPayload struct {
	Phase  int
	Round  int
	Values map[int]Proposal
}

type phaseRound struct {
	phase int
	round int
}

// ConsensusState is the per-process state of the Consensus protocol.
//
// Values maps origin pid to the proposal this process has signed for that
// origin. Phase runs from 1 to f+1 and only increases; Round runs from 1
// to R and resets to 1 whenever the phase advances. Once Decided is set no
// message mutates the state again; Final holds the decided bit, -1 before
// the decision.
type ConsensusState struct {
	Phase   int
	Round   int
	Values  map[int]Proposal
	Decided bool
	Final   int

	// Distinct senders heard from, per (phase, round). Messages arriving
	// early for a future round are counted here and picked up when that
	// round becomes current; without this, rounds can starve.
	heard map[phaseRound]map[int]bool
}

// Seed records the process's own initial bit: a self-signed proposal with
// the process as origin. The traffic generator calls this once per process
// before the first delivery; the steady-state handler assumes it happened.
func (s *ConsensusState) Seed(pid, bit int) {
	s.Values[pid] = Proposal{Bit: bit, Signers: map[int]bool{pid: true}}
}

// Payload returns a deep copy of the state's value map stamped with the
// current phase and round, ready to be broadcast. The copy keeps later
// local mutations out of messages already in flight.
func (s *ConsensusState) Payload() ConsensusPayload {
	values := make(map[int]Proposal, len(s.Values))
	for origin, prop := range s.Values {
		values[origin] = prop.clone()
	}
	return ConsensusPayload{Phase: s.Phase, Round: s.Round, Values: values}
}

// Consensus is a binary consensus protocol tolerating f crash faults
// among n >= 2f+1 processes, structured as f+1 phases of R rounds each.
//
// Each process maintains a value map from origin pid to a signed proposal.
// A process signs an origin's value once it observes it carrying at least
// phase distinct signatures and has not signed that origin before. After
// hearing from n-f distinct processes in the current (phase, round) the
// process advances and broadcasts its value map; after the last round of
// the last phase it decides on the majority bit of its value map.
//
// Termination is not guaranteed for arbitrary (f, n, R); the caller must
// pick R large enough for f+1 phases to complete under the scheduler's
// fairness, or bound total steps externally.
type Consensus struct {
	f int
	r int

	// Whether the process's own contribution counts toward the n-f
	// round-advance threshold. Variants of the algorithm differ here.
	countSelf bool
}

// A ConsensusOption configures a Consensus instance.
type ConsensusOption func(*Consensus)

// CountSelf controls whether a process's own contribution counts toward
// the n-f round-advance threshold. Defaults to true.
func CountSelf(v bool) ConsensusOption {
	return func(c *Consensus) { c.countSelf = v }
}

// NewConsensus creates the protocol with fault tolerance f and R rounds
// per phase.
func NewConsensus(f, r int, opts ...ConsensusOption) *Consensus {
	c := &Consensus{f: f, r: r, countSelf: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate rejects configurations the protocol cannot run on. Checked
// before any simulation state is constructed.
func (c *Consensus) Validate(n int) error {
	if c.f < 0 {
		return fmt.Errorf("consensus: fault tolerance f = %v must be non-negative", c.f)
	}
	if c.r < 1 {
		return fmt.Errorf("consensus: rounds per phase R = %v must be at least 1", c.r)
	}
	if n < 2*c.f+1 {
		return fmt.Errorf("consensus: n = %v is below the required 2f+1 = %v", n, 2*c.f+1)
	}
	return nil
}

func (c *Consensus) InitState() any {
	return &ConsensusState{
		Phase:  1,
		Round:  1,
		Values: make(map[int]Proposal),
		Final:  -1,
		heard:  make(map[phaseRound]map[int]bool),
	}
}

func (c *Consensus) HandleMessage(myID int, state any, msg *message.Message, n int) []Outgoing {
	st, ok := state.(*ConsensusState)
	if !ok {
		panic(fmt.Sprintf("consensus: process %v carries state of type %T", myID, state))
	}
	// Decided processes ignore all further traffic, by contract.
	if st.Decided {
		return nil
	}

	pl, ok := msg.Payload.(ConsensusPayload)
	if !ok {
		panic(fmt.Sprintf("consensus: message %v carries payload of type %T", msg.ID, msg.Payload))
	}

	// Sign qualifying values: at least phase signatures in the current
	// phase, and only origins not signed before. Values from older phases
	// cannot qualify, so skip the scan entirely for stale-phase messages.
	if pl.Phase >= st.Phase {
		origins := maps.Keys(pl.Values)
		slices.Sort(origins)
		for _, origin := range origins {
			prop := pl.Values[origin]
			if len(prop.Signers) < st.Phase {
				continue
			}
			if _, signed := st.Values[origin]; signed {
				continue
			}
			mine := prop.clone()
			mine.Signers[myID] = true
			st.Values[origin] = mine
		}
	}

	// A message from a superseded (phase, round) adds no progress
	// information; drop it without bookkeeping.
	if pl.Phase < st.Phase || (pl.Phase == st.Phase && pl.Round < st.Round) {
		return nil
	}

	pr := phaseRound{phase: pl.Phase, round: pl.Round}
	if st.heard[pr] == nil {
		st.heard[pr] = make(map[int]bool)
	}
	st.heard[pr][msg.From] = true

	valid := len(st.heard[phaseRound{phase: st.Phase, round: st.Round}])
	if c.countSelf {
		valid++
	}
	if valid < n-c.f {
		return nil
	}

	// Round complete: discard its sender bookkeeping and advance.
	delete(st.heard, phaseRound{phase: st.Phase, round: st.Round})
	if st.Round < c.r {
		st.Round++
	} else {
		st.Round = 1
		if st.Phase < c.f+1 {
			st.Phase++
		} else {
			st.Decided = true
			st.Final = majorityBit(st.Values)
			return nil
		}
	}

	// Entering a new round is the only event that produces messages.
	out := make([]Outgoing, 0, n-1)
	payload := st.Payload()
	for target := 0; target < n; target++ {
		if target != myID {
			out = append(out, Outgoing{To: target, Payload: payload})
		}
	}
	return out
}

// Decision implements Decider.
func (c *Consensus) Decision(state any) (int, bool) {
	st, ok := state.(*ConsensusState)
	if !ok || !st.Decided {
		return -1, false
	}
	return st.Final, true
}

// majorityBit returns the majority bit across all proposals in the value
// map. Ties decide 0: a strict majority of 1-bits is required to decide 1.
func majorityBit(values map[int]Proposal) int {
	ones := 0
	for _, prop := range values {
		if prop.Bit == 1 {
			ones++
		}
	}
	if ones*2 > len(values) {
		return 1
	}
	return 0
}
