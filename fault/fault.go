// Package fault injects crash faults into a running simulation.
package fault

import (
	"math/rand"

	"simnet/network"
)

// An Injector decides which process, if any, crashes at each step. It is
// invoked by the simulator once per step, before delivery.
type Injector interface {
	GenerateFaults(net *network.Network)
}

// Probabilistic kills one uniformly chosen alive process per step with a
// configured probability, up to a configured total. Deterministic given a
// seed; a no-op once the cap is reached or when no process is alive.
type Probabilistic struct {
	p         float64
	maxFaults int
	generated int

	rng *rand.Rand
}

// NewProbabilistic creates an injector with per-step crash probability p
// and at most maxFaults total crashes.
func NewProbabilistic(p float64, maxFaults int, seed int64) *Probabilistic {
	return &Probabilistic{
		p:         p,
		maxFaults: maxFaults,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Generated returns the number of crashes injected so far.
func (in *Probabilistic) Generated() int {
	return in.generated
}

func (in *Probabilistic) GenerateFaults(net *network.Network) {
	if in.generated >= in.maxFaults {
		return
	}
	if in.rng.Float64() >= in.p {
		return
	}
	// AlivePIDs is sorted, so the victim draw is reproducible
	alive := net.AlivePIDs()
	if len(alive) == 0 {
		return
	}
	victim := alive[in.rng.Intn(len(alive))]
	net.KillProcess(victim)
	in.generated++
}
