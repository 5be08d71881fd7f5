package network

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"simnet/eventlog"
	"simnet/message"
	"simnet/protocol"
	"simnet/scheduler"
)

// The Network orchestrates the processes, routes protocol output into the
// scheduler and tracks delivery statistics.
//
// Invariants: the logical clock increases by exactly 1 per successful
// delivery and never otherwise; message ids are globally unique and
// strictly increasing; a message addressed to a dead process is dropped by
// the scheduler purge and never reaches a handler.
type Network struct {
	n     int
	proto protocol.Protocol
	sch   scheduler.Scheduler

	clock     int64
	nextMsgID int64
	processes map[int]*Process

	delivered map[message.Link]bool
	delays    []int64

	rec eventlog.Recorder
	log *zap.Logger
}

// New constructs a network of n processes bound to proto, with every
// process state initialized through the protocol's state initializer.
//
// rec and log may be nil, in which case events are not recorded and
// logging is disabled.
func New(n int, proto protocol.Protocol, sch scheduler.Scheduler, rec eventlog.Recorder, log *zap.Logger) *Network {
	if rec == nil {
		rec = eventlog.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	processes := make(map[int]*Process, n)
	for id := 0; id < n; id++ {
		processes[id] = &Process{
			ID:    id,
			State: proto.InitState(),
			Alive: true,
		}
	}
	return &Network{
		n:         n,
		proto:     proto,
		sch:       sch,
		processes: processes,
		delivered: make(map[message.Link]bool),
		delays:    make([]int64, 0),
		rec:       rec,
		log:       log,
	}
}

// N returns the number of processes.
func (net *Network) N() int {
	return net.n
}

// Clock returns the logical clock: the number of deliveries so far.
func (net *Network) Clock() int64 {
	return net.clock
}

// Alive reports whether process pid is alive.
func (net *Network) Alive(pid int) bool {
	p, ok := net.processes[pid]
	return ok && p.Alive
}

// AlivePIDs returns the ids of all alive processes in increasing order.
func (net *Network) AlivePIDs() []int {
	pids := make([]int, 0, net.n)
	for id, p := range net.processes {
		if p.Alive {
			pids = append(pids, id)
		}
	}
	slices.Sort(pids)
	return pids
}

// ProcessState returns the state blob of process pid. Used by traffic
// generators that must seed state before the first delivery and by
// reporting code after the run.
func (net *Network) ProcessState(pid int) any {
	return net.mustProcess(pid).State
}

// CreateInitialMessage enqueues a message before the first step. It is a
// no-op if either endpoint is dead.
func (net *Network) CreateInitialMessage(from, to int, payload any) {
	if !net.mustProcess(from).Alive || !net.mustProcess(to).Alive {
		return
	}
	net.send(from, to, payload)
}

// KillProcess crashes process pid. Idempotent: only the first call flips
// the alive flag, purges the scheduler and records a CRASH event.
func (net *Network) KillProcess(pid int) {
	p := net.mustProcess(pid)
	if !p.Alive {
		return
	}
	p.kill()
	net.sch.ProcessCrashed(pid)
	net.rec.ProcessCrashed(net.clock, pid)
	net.log.Info("process crashed",
		zap.Int("pid", pid),
		zap.Int64("tick", net.clock),
	)
}

// RunStep executes exactly one delivery.
//
// Returns false without touching any state when no messages are pending.
// Otherwise it pops one message, marks it delivered at the current clock,
// records the link and delay, advances the clock, runs the receiver's
// protocol handler and enqueues the resulting messages for every target
// that is still alive.
func (net *Network) RunStep() bool {
	if !net.sch.HasPending() {
		return false
	}
	msg := net.sch.Next()
	if msg == nil {
		panic("network: scheduler reported pending messages but returned none")
	}
	recv := net.mustProcess(msg.To)
	if !recv.Alive {
		panic(fmt.Sprintf("network: message %v delivered to dead process %v", msg.ID, msg.To))
	}

	msg.MarkDelivered(net.clock)
	net.delivered[msg.Link()] = true
	net.delays = append(net.delays, msg.Delay())
	net.rec.MessageDelivered(net.clock, msg)
	net.log.Debug("message delivered",
		zap.Int64("id", msg.ID),
		zap.Int("from", msg.From),
		zap.Int("to", msg.To),
		zap.Int64("delay", msg.Delay()),
	)

	net.clock++

	for _, out := range net.proto.HandleMessage(recv.ID, recv.State, msg, net.n) {
		target := net.mustProcess(out.To)
		if !target.Alive {
			continue
		}
		net.send(recv.ID, out.To, out.Payload)
	}
	return true
}

// send allocates a message at the current clock, hands it to the
// scheduler and records a CREATED event.
func (net *Network) send(from, to int, payload any) {
	msg := message.New(net.nextMsgID, from, to, net.clock, payload)
	net.nextMsgID++
	net.sch.Add(msg)
	net.rec.MessageCreated(net.clock, msg)
}

// RecordStepStats emits a STEP_STATS event with the current backlog.
func (net *Network) RecordStepStats() {
	net.rec.StepStats(net.clock, net.sch.PendingLinks(), net.sch.PendingMessages())
}

// HasPending reports whether the scheduler holds undelivered messages.
func (net *Network) HasPending() bool {
	return net.sch.HasPending()
}

// DeliveredLinks returns every (sender, receiver) pair that communicated
// successfully at least once, sorted for reproducible reporting.
func (net *Network) DeliveredLinks() []message.Link {
	links := make([]message.Link, 0, len(net.delivered))
	for l := range net.delivered {
		links = append(links, l)
	}
	slices.SortFunc(links, func(a, b message.Link) bool {
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return links
}

// DelaySamples returns the delay of every delivered message in delivery
// order. The caller must not mutate the returned slice.
func (net *Network) DelaySamples() []int64 {
	return net.delays
}

// Decision reports the terminal decision of process pid, if the bound
// protocol reaches decisions and pid has reached one.
func (net *Network) Decision(pid int) (int, bool) {
	d, ok := net.proto.(protocol.Decider)
	if !ok {
		return 0, false
	}
	return d.Decision(net.mustProcess(pid).State)
}

func (net *Network) mustProcess(pid int) *Process {
	p, ok := net.processes[pid]
	if !ok {
		panic(fmt.Sprintf("network: unknown process id %v", pid))
	}
	return p
}
