package scheduler

import (
	"fmt"
	"math/rand"

	"simnet/message"
)

// A linkSet is a dynamic set of links supporting O(1) insertion, O(1)
// membership, O(1) removal and O(1) uniform random selection.
//
// Links are kept in a slice for indexed random access, with a reverse
// index from link to slice position. Removal swaps the victim with the
// last element and pops, so positions stay dense without shifting.
// Invariant: index[l] == i iff links[i] == l.
type linkSet struct {
	links []message.Link
	index map[message.Link]int
}

func newLinkSet() *linkSet {
	return &linkSet{
		links: make([]message.Link, 0),
		index: make(map[message.Link]int),
	}
}

func (s *linkSet) len() int {
	return len(s.links)
}

func (s *linkSet) contains(l message.Link) bool {
	_, ok := s.index[l]
	return ok
}

// add inserts l. Inserting a link that is already present is an engine
// bug: the caller tracks emptiness transitions and must add each link at
// most once.
func (s *linkSet) add(l message.Link) {
	if _, ok := s.index[l]; ok {
		panic(fmt.Sprintf("scheduler: link %v added to linkSet twice", l))
	}
	s.index[l] = len(s.links)
	s.links = append(s.links, l)
}

// remove deletes l by swapping it with the last element and popping,
// updating the reverse index of the relocated element.
func (s *linkSet) remove(l message.Link) {
	i, ok := s.index[l]
	if !ok {
		panic(fmt.Sprintf("scheduler: link %v removed from linkSet but not present", l))
	}
	last := s.links[len(s.links)-1]
	s.links[i] = last
	s.index[last] = i
	s.links = s.links[:len(s.links)-1]
	delete(s.index, l)
}

// pick returns a uniformly chosen link. The set must be non-empty.
func (s *linkSet) pick(rng *rand.Rand) message.Link {
	return s.links[rng.Intn(len(s.links))]
}
