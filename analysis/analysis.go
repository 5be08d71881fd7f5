// Package analysis computes post-run statistics from a network's
// delivered-link set and delay samples. It only reads network state.
package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"simnet/message"
	"simnet/network"
)

// Connectivity classes of the delivered-link set, treated as a directed
// graph over the node ids [0, n).
type Connectivity int

const (
	// Every ordered pair communicated: the link set is the full mesh.
	FullyConnected Connectivity = iota
	// Every process reached every other, directly or transitively.
	StronglyConnected
	// Connected only when link direction is ignored.
	WeaklyConnected
	// The undirected view splits into more than one component.
	Partitioned
)

func (c Connectivity) String() string {
	switch c {
	case FullyConnected:
		return "fully connected"
	case StronglyConnected:
		return "strongly connected"
	case WeaklyConnected:
		return "weakly connected"
	case Partitioned:
		return "partitioned"
	default:
		return "unknown"
	}
}

// AverageDelay returns the mean delivery delay in ticks, 0 for an empty
// sample set.
func AverageDelay(samples []int64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, d := range samples {
		sum += d
	}
	return float64(sum) / float64(len(samples))
}

// Classify determines the connectivity class of the delivered links over
// n processes.
func Classify(links []message.Link, n int) Connectivity {
	if len(links) == n*(n-1) {
		return FullyConnected
	}

	directed := simple.NewDirectedGraph()
	undirected := simple.NewUndirectedGraph()
	for id := 0; id < n; id++ {
		directed.AddNode(simple.Node(id))
		undirected.AddNode(simple.Node(id))
	}
	for _, l := range links {
		if l.From == l.To {
			continue
		}
		from, to := simple.Node(l.From), simple.Node(l.To)
		directed.SetEdge(directed.NewEdge(from, to))
		undirected.SetEdge(undirected.NewEdge(from, to))
	}

	if len(topo.TarjanSCC(directed)) == 1 {
		return StronglyConnected
	}
	if len(topo.ConnectedComponents(undirected)) == 1 {
		return WeaklyConnected
	}
	return Partitioned
}

// A Report aggregates the run statistics printed by the driver.
type Report struct {
	Steps          int
	AverageDelay   float64
	DeliveredLinks int
	PossibleLinks  int
	Connectivity   Connectivity
	Crashed        []int
	Decisions      map[int]int
}

// NewReport reads net and assembles the report for a run that executed
// the given number of steps.
func NewReport(net *network.Network, steps int) Report {
	n := net.N()
	links := net.DeliveredLinks()

	crashed := make([]int, 0)
	alive := make(map[int]bool, n)
	for _, pid := range net.AlivePIDs() {
		alive[pid] = true
	}
	for pid := 0; pid < n; pid++ {
		if !alive[pid] {
			crashed = append(crashed, pid)
		}
	}

	decisions := make(map[int]int)
	for pid := 0; pid < n; pid++ {
		if v, ok := net.Decision(pid); ok {
			decisions[pid] = v
		}
	}

	return Report{
		Steps:          steps,
		AverageDelay:   AverageDelay(net.DelaySamples()),
		DeliveredLinks: len(links),
		PossibleLinks:  n * (n - 1),
		Connectivity:   Classify(links, n),
		Crashed:        crashed,
		Decisions:      decisions,
	}
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "steps executed:  %v\n", r.Steps)
	fmt.Fprintf(&b, "average delay:   %.2f ticks\n", r.AverageDelay)
	fmt.Fprintf(&b, "connectivity:    %v/%v links (%v)\n", r.DeliveredLinks, r.PossibleLinks, r.Connectivity)
	if len(r.Crashed) > 0 {
		fmt.Fprintf(&b, "crashed:         %v\n", r.Crashed)
	}
	return b.String()
}
