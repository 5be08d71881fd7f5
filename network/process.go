package network

// A Process is one simulated network endpoint: a numeric id in [0, n), a
// protocol-owned state blob and an alive flag.
//
// Processes are owned exclusively by the Network. State is mutated only by
// the protocol's message handler and, before the first delivery, by the
// traffic generator. A process transitions alive to dead exactly once and
// never back.
type Process struct {
	ID    int
	State any
	Alive bool
}

func (p *Process) kill() {
	p.Alive = false
}
