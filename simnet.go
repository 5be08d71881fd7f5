// Package simnet is a deterministic discrete-event simulator for
// asynchronous message-passing networks. It models n numbered processes
// exchanging messages over a network with unreliable timing but reliable
// delivery, delivers exactly one message per simulated tick, and lets
// pluggable strategies define node behavior, delivery order, initial
// workload and crash faults.
package simnet

import (
	"fmt"

	"go.uber.org/zap"

	"simnet/eventlog"
	"simnet/fault"
	"simnet/network"
	"simnet/protocol"
	"simnet/scheduler"
	"simnet/simulator"
	"simnet/traffic"
)

// A Simulation is a fully assembled, validated run ready to execute.
type Simulation struct {
	net *network.Network
	sim *simulator.Simulator
}

// Prepare validates the configuration and assembles a simulation.
//
// All configuration errors surface here, before any simulation state is
// constructed: a missing protocol, a node count below 1, or
// protocol-specific constraints such as a consensus instance requiring
// n >= 2f+1.
func Prepare(opts ...Option) (*Simulation, error) {
	var (
		n     = 0
		proto protocol.Protocol
		sch   scheduler.Scheduler
		gen   traffic.Generator = traffic.AllToAll{}
		inj   fault.Injector
		rec   eventlog.Recorder = eventlog.Nop{}
		log                     = zap.NewNop()

		statsInterval = 0
	)

	for _, opt := range opts {
		switch t := opt.(type) {
		case nodesOption:
			n = t.n
		case protocolOption:
			proto = t.proto
		case schedulerOption:
			sch = t.sch
		case trafficOption:
			gen = t.gen
		case faultInjectorOption:
			inj = t.injector
		case recorderOption:
			rec = t.rec
		case loggerOption:
			log = t.log
		case statsIntervalOption:
			statsInterval = t.interval
		}
	}

	if n < 1 {
		return nil, fmt.Errorf("simnet: node count %v must be at least 1", n)
	}
	if proto == nil {
		return nil, fmt.Errorf("simnet: a protocol must be provided")
	}
	if v, ok := proto.(protocol.Validator); ok {
		if err := v.Validate(n); err != nil {
			return nil, err
		}
	}
	if sch == nil {
		sch = scheduler.NewRandomAsyncUnseeded()
	}

	net := network.New(n, proto, sch, rec, log)
	sim := simulator.New(net, gen, inj, statsInterval, log)
	return &Simulation{net: net, sim: sim}, nil
}

// Run executes the simulation and returns the number of deliveries.
// maxSteps <= 0 means unbounded; the run still stops at quiescence.
func (s *Simulation) Run(maxSteps int) int {
	return s.sim.Run(maxSteps)
}

// Network exposes the underlying network for analysis after (or between)
// runs. Callers must not mutate it.
func (s *Simulation) Network() *network.Network {
	return s.net
}
