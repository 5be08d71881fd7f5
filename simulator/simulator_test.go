package simulator

import (
	"testing"

	"simnet/eventlog"
	"simnet/fault"
	"simnet/message"
	"simnet/network"
	"simnet/protocol"
	"simnet/scheduler"
	"simnet/traffic"
)

// sink consumes every message without reacting.
type sink struct{}

func (sink) InitState() any { return nil }

func (sink) HandleMessage(int, any, *message.Message, int) []protocol.Outgoing {
	return nil
}

func TestRunStopsAtQuiescence(t *testing.T) {
	n := 3
	rec := eventlog.NewMemory()
	net := network.New(n, sink{}, scheduler.NewRandomAsync(1), rec, nil)
	sim := New(net, traffic.AllToAll{}, nil, 0, nil)

	steps := sim.Run(0)

	if sim.State() != Stopped {
		t.Errorf("loop state is %v after Run. Expected: %v", sim.State(), Stopped)
	}
	if steps != n*(n-1) {
		t.Errorf("unexpected step count. Got %v. Expected: %v", steps, n*(n-1))
	}
	if created := rec.ByType(eventlog.EventCreated); len(created) != n*(n-1) {
		t.Errorf("unexpected CREATED count. Got %v. Expected: %v", len(created), n*(n-1))
	}
	// Every pair communicated: full mesh
	if got := len(net.DeliveredLinks()); got != n*(n-1) {
		t.Errorf("unexpected delivered-link count. Got %v. Expected: %v", got, n*(n-1))
	}
	if net.HasPending() {
		t.Errorf("messages still pending after quiescence stop")
	}
}

func TestRunStopsAtCeiling(t *testing.T) {
	// EchoAll amplifies forever; only the ceiling can stop it
	net := network.New(3, protocol.EchoAll{}, scheduler.NewRandomAsync(1), nil, nil)
	sim := New(net, traffic.AllToAll{}, nil, 0, nil)

	steps := sim.Run(50)
	if steps != 50 {
		t.Errorf("unexpected step count. Got %v. Expected: 50", steps)
	}
	if !net.HasPending() {
		t.Errorf("echo network unexpectedly quiesced")
	}
	if sim.State() != Stopped {
		t.Errorf("loop state is %v after Run. Expected: %v", sim.State(), Stopped)
	}
}

func TestRunInjectsFaultsBeforeTraffic(t *testing.T) {
	// With p=1 and a cap of 1, exactly one process dies before any
	// initial message is created; its incoming messages are dropped.
	n := 3
	rec := eventlog.NewMemory()
	net := network.New(n, sink{}, scheduler.NewRandomAsync(2), rec, nil)
	inj := fault.NewProbabilistic(1.0, 1, 3)
	sim := New(net, traffic.AllToAll{}, inj, 0, nil)

	sim.Run(0)

	if inj.Generated() != 1 {
		t.Fatalf("unexpected fault count. Got %v. Expected: 1", inj.Generated())
	}
	crashes := rec.ByType(eventlog.EventCrash)
	if len(crashes) != 1 {
		t.Fatalf("unexpected CRASH count. Got %v. Expected: 1", len(crashes))
	}
	if crashes[0].At != 0 {
		t.Errorf("crash recorded at tick %v. Expected: 0 (before traffic)", crashes[0].At)
	}
	dead := crashes[0].PID

	// The dead process neither sent nor received
	for _, e := range rec.ByType(eventlog.EventCreated) {
		if e.From == dead || e.To == dead {
			t.Errorf("message %v->%v involves the crashed process %v", e.From, e.To, dead)
		}
	}
	for _, e := range rec.ByType(eventlog.EventDelivered) {
		if e.To == dead {
			t.Errorf("message delivered to crashed process %v", dead)
		}
	}
}

func TestRunEmitsStepStats(t *testing.T) {
	rec := eventlog.NewMemory()
	net := network.New(3, sink{}, scheduler.NewRandomAsync(1), rec, nil)
	sim := New(net, traffic.AllToAll{}, nil, 2, nil)

	steps := sim.Run(0)

	stats := rec.ByType(eventlog.EventStepStats)
	if len(stats) != steps/2 {
		t.Errorf("unexpected STEP_STATS count. Got %v. Expected: %v", len(stats), steps/2)
	}
}

// Two identically seeded runs must produce bit-identical delivery
// sequences of (sender, receiver, delivery tick, payload).
func TestRunDeterministicWithSeed(t *testing.T) {
	run := func() []eventlog.Entry {
		rec := eventlog.NewMemory()
		net := network.New(5, protocol.NewConsensus(2, 2), scheduler.NewRandomAsync(42), rec, nil)
		gen := traffic.NewConsensusRandom(43)
		inj := fault.NewProbabilistic(0.05, 2, 44)
		sim := New(net, gen, inj, 0, nil)
		sim.Run(5000)
		return rec.ByType(eventlog.EventDelivered)
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("runs delivered different counts: %v != %v", len(a), len(b))
	}
	for i := range a {
		if a[i].From != b[i].From || a[i].To != b[i].To || a[i].At != b[i].At || a[i].Payload != b[i].Payload {
			t.Fatalf("runs diverged at delivery %v:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}
