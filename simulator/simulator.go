// Package simulator drives the step loop of a simulation run.
package simulator

import (
	"go.uber.org/zap"

	"simnet/fault"
	"simnet/network"
	"simnet/traffic"
)

// The two states of the step loop.
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// The Simulator owns one run: it applies fault injection and the initial
// traffic, then delivers exactly one message per step until the step
// ceiling is reached or the network quiesces.
//
// The whole engine is single-threaded; each step runs to completion
// before the next begins and no component is accessed concurrently.
type Simulator struct {
	net     *network.Network
	traffic traffic.Generator
	// nil means no fault injection
	injector fault.Injector

	// Emit a STEP_STATS event every statsInterval steps; 0 disables.
	statsInterval int

	state State
	log   *zap.Logger
}

// New creates a simulator for net. injector may be nil. log may be nil to
// disable logging.
func New(net *network.Network, gen traffic.Generator, injector fault.Injector, statsInterval int, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		net:           net,
		traffic:       gen,
		injector:      injector,
		statsInterval: statsInterval,
		state:         Running,
		log:           log,
	}
}

// State returns the loop state.
func (s *Simulator) State() State {
	return s.state
}

// Run executes the simulation and returns the number of deliveries
// performed.
//
// maxSteps <= 0 means unbounded; unbounded runs still stop when the
// network quiesces. Initial traffic is generated once, after an initial
// fault-injection pass, since processes may crash before ever sending.
func (s *Simulator) Run(maxSteps int) int {
	s.log.Info("simulation starting", zap.Int("maxSteps", maxSteps))

	s.injectFaults()
	s.traffic.Generate(s.net)

	steps := 0
	for s.state == Running {
		if maxSteps > 0 && steps >= maxSteps {
			s.log.Info("simulation stopped: step ceiling reached", zap.Int("steps", steps))
			s.state = Stopped
			break
		}
		s.injectFaults()
		if !s.net.RunStep() {
			s.log.Info("simulation stopped: no more pending messages", zap.Int("steps", steps))
			s.state = Stopped
			break
		}
		steps++
		if s.statsInterval > 0 && steps%s.statsInterval == 0 {
			s.net.RecordStepStats()
		}
	}
	return steps
}

func (s *Simulator) injectFaults() {
	if s.injector != nil {
		s.injector.GenerateFaults(s.net)
	}
}
