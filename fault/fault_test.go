package fault

import (
	"testing"

	"simnet/message"
	"simnet/network"
	"simnet/protocol"
	"simnet/scheduler"
)

type silent struct{}

func (silent) InitState() any { return nil }

func (silent) HandleMessage(int, any, *message.Message, int) []protocol.Outgoing {
	return nil
}

func newTestNetwork(n int) *network.Network {
	return network.New(n, silent{}, scheduler.NewRandomAsync(1), nil, nil)
}

func TestProbabilisticRespectsCap(t *testing.T) {
	net := newTestNetwork(10)
	inj := NewProbabilistic(1.0, 3, 7)

	for i := 0; i < 100; i++ {
		inj.GenerateFaults(net)
	}
	if inj.Generated() != 3 {
		t.Errorf("unexpected fault count. Got %v. Expected: 3", inj.Generated())
	}
	if alive := len(net.AlivePIDs()); alive != 7 {
		t.Errorf("unexpected alive count. Got %v. Expected: 7", alive)
	}
}

func TestProbabilisticZeroProbability(t *testing.T) {
	net := newTestNetwork(5)
	inj := NewProbabilistic(0.0, 5, 7)

	for i := 0; i < 1000; i++ {
		inj.GenerateFaults(net)
	}
	if inj.Generated() != 0 {
		t.Errorf("faults injected with zero probability: %v", inj.Generated())
	}
}

func TestProbabilisticAllDead(t *testing.T) {
	net := newTestNetwork(2)
	net.KillProcess(0)
	net.KillProcess(1)

	inj := NewProbabilistic(1.0, 10, 7)
	inj.GenerateFaults(net)
	if inj.Generated() != 0 {
		t.Errorf("fault counted with no process alive")
	}
}

func TestProbabilisticDeterministic(t *testing.T) {
	victims := func() []int {
		net := newTestNetwork(10)
		inj := NewProbabilistic(0.5, 5, 13)
		for i := 0; i < 50; i++ {
			inj.GenerateFaults(net)
		}
		dead := make([]int, 0)
		alive := make(map[int]bool)
		for _, pid := range net.AlivePIDs() {
			alive[pid] = true
		}
		for pid := 0; pid < 10; pid++ {
			if !alive[pid] {
				dead = append(dead, pid)
			}
		}
		return dead
	}

	a := victims()
	b := victims()
	if len(a) != len(b) {
		t.Fatalf("runs crashed different counts: %v != %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed crashed different victims: %v != %v", a, b)
		}
	}
}
