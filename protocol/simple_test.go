package protocol

import (
	"testing"

	"simnet/message"
)

func simpleMsg(from, to int, payload any) *message.Message {
	return message.New(0, from, to, 0, payload)
}

func TestEchoAllBroadcasts(t *testing.T) {
	out := EchoAll{}.HandleMessage(1, nil, simpleMsg(0, 1, "x"), 4)
	if len(out) != 3 {
		t.Fatalf("unexpected fanout. Got %v. Expected: 3", len(out))
	}
	for _, o := range out {
		if o.To == 1 {
			t.Errorf("process echoed to itself")
		}
	}
}

func TestPingPongRepliesToSender(t *testing.T) {
	out := PingPong{}.HandleMessage(2, nil, simpleMsg(0, 2, "ping"), 4)
	if len(out) != 1 || out[0].To != 0 {
		t.Fatalf("unexpected reply: %v", out)
	}
}

func TestRequestResponseSingleRoundTrip(t *testing.T) {
	p := RequestResponse{}
	out := p.HandleMessage(1, nil, simpleMsg(0, 1, "INIT 0->1"), 2)
	if len(out) != 1 || out[0].To != 0 {
		t.Fatalf("request did not produce a response: %v", out)
	}
	out = p.HandleMessage(0, nil, simpleMsg(1, 0, out[0].Payload), 2)
	if len(out) != 0 {
		t.Errorf("response produced further traffic: %v", out)
	}
}

func TestRandomSingleNeverSelf(t *testing.T) {
	p := NewRandomSingle(5)
	for i := 0; i < 200; i++ {
		out := p.HandleMessage(2, nil, simpleMsg(0, 2, "x"), 5)
		if len(out) != 1 {
			t.Fatalf("unexpected fanout. Got %v. Expected: 1", len(out))
		}
		if out[0].To == 2 {
			t.Fatalf("process forwarded to itself")
		}
		if out[0].To < 0 || out[0].To >= 5 {
			t.Fatalf("target %v out of range", out[0].To)
		}
	}
}

func TestRandomSingleSingleton(t *testing.T) {
	p := NewRandomSingle(5)
	if out := p.HandleMessage(0, nil, simpleMsg(0, 0, "x"), 1); len(out) != 0 {
		t.Errorf("lone process produced traffic: %v", out)
	}
}

func TestRandomSingleDeterministic(t *testing.T) {
	a := NewRandomSingle(9)
	b := NewRandomSingle(9)
	for i := 0; i < 100; i++ {
		ta := a.HandleMessage(0, nil, simpleMsg(1, 0, "x"), 6)[0].To
		tb := b.HandleMessage(0, nil, simpleMsg(1, 0, "x"), 6)[0].To
		if ta != tb {
			t.Fatalf("same seed diverged at step %v: %v != %v", i, ta, tb)
		}
	}
}

func TestCommitteeTopology(t *testing.T) {
	p := NewCommittee([]int{0, 1})
	n := 4

	// A committee member broadcasts to everyone else
	out := p.HandleMessage(0, nil, simpleMsg(3, 0, "x"), n)
	if len(out) != 3 {
		t.Fatalf("unexpected member fanout. Got %v. Expected: 3", len(out))
	}

	// A regular process only reports to the committee
	out = p.HandleMessage(3, nil, simpleMsg(0, 3, "x"), n)
	if len(out) != 2 {
		t.Fatalf("unexpected regular fanout. Got %v. Expected: 2", len(out))
	}
	for _, o := range out {
		if !p.Member(o.To) {
			t.Errorf("regular process sent to non-member %v", o.To)
		}
	}
}
