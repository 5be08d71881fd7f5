package scheduler

import (
	"math/rand"
	"testing"

	"simnet/message"
)

func TestLinkSetAddRemove(t *testing.T) {
	s := newLinkSet()
	links := []message.Link{{From: 0, To: 1}, {From: 1, To: 0}, {From: 2, To: 1}}
	for _, l := range links {
		s.add(l)
	}
	if s.len() != 3 {
		t.Fatalf("unexpected length. Got %v. Expected: 3", s.len())
	}
	for _, l := range links {
		if !s.contains(l) {
			t.Errorf("expected set to contain %v", l)
		}
	}

	// Removing the middle element relocates the last one
	s.remove(links[1])
	if s.len() != 2 {
		t.Fatalf("unexpected length after removal. Got %v. Expected: 2", s.len())
	}
	if s.contains(links[1]) {
		t.Errorf("removed link %v still present", links[1])
	}
	if !s.contains(links[0]) || !s.contains(links[2]) {
		t.Errorf("remaining links missing after swap-and-pop")
	}
}

func TestLinkSetDoubleAddPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on double add")
		}
	}()
	s := newLinkSet()
	s.add(message.Link{From: 0, To: 1})
	s.add(message.Link{From: 0, To: 1})
}

func TestLinkSetRemoveAbsentPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on removing absent link")
		}
	}()
	s := newLinkSet()
	s.remove(message.Link{From: 0, To: 1})
}

// Exercises the set with a random sequence of adds and removes, checking
// the reverse index against the slice after every operation.
func TestLinkSetRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := newLinkSet()
	present := make(map[message.Link]bool)

	for i := 0; i < 2000; i++ {
		l := message.Link{From: rng.Intn(10), To: rng.Intn(10)}
		if present[l] {
			s.remove(l)
			delete(present, l)
		} else {
			s.add(l)
			present[l] = true
		}
		checkLinkSetInvariant(t, s)
		if s.len() != len(present) {
			t.Fatalf("unexpected length. Got %v. Expected: %v", s.len(), len(present))
		}
	}
}

func checkLinkSetInvariant(t *testing.T, s *linkSet) {
	t.Helper()
	if len(s.links) != len(s.index) {
		t.Fatalf("slice and index length differ: %v != %v", len(s.links), len(s.index))
	}
	for i, l := range s.links {
		if s.index[l] != i {
			t.Fatalf("reverse index broken: links[%v] = %v but index[%v] = %v", i, l, l, s.index[l])
		}
	}
}
