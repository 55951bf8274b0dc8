// Package sched holds the mutable scheduler state a single board
// invocation carries while it runs: per-port input queues, constants,
// control-wire firing bits, the haveRun set, and the ready queue.
// Grounded on the teacher's ExecutionState, generalized from a flat
// global-state map to the per-edge typed queues a board's star/control/
// constant wire algebra requires.
package sched

import (
	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/rep"
)

// State is the full mutable scheduler state for one board invocation.
// It is not safe for concurrent use — exactly one traversal.Machine
// drives a given State at a time, per the engine's single-runner rule.
type State struct {
	Rep *rep.Representation

	inputs       map[string]map[string][]interface{} // node -> port -> FIFO queue
	constants    map[string]map[string]interface{}   // node -> port -> last constant value
	controlSeen  map[string]map[string]bool           // node -> source node id -> fired this round
	haveRun      map[string]bool

	ready  []string
	queued map[string]bool
}

// New seeds scheduler state for a Representation, enqueueing its
// entries in descriptor order (P4: multi-entry boards schedule entries
// sequentially, not concurrently).
func New(r *rep.Representation) *State {
	s := &State{
		Rep:         r,
		inputs:      make(map[string]map[string][]interface{}),
		constants:   make(map[string]map[string]interface{}),
		controlSeen: make(map[string]map[string]bool),
		haveRun:     make(map[string]bool),
		queued:      make(map[string]bool),
	}
	for _, id := range r.Entries {
		s.enqueue(id)
	}
	return s
}

func (s *State) enqueue(nodeID string) {
	if s.queued[nodeID] {
		return
	}
	s.queued[nodeID] = true
	s.ready = append(s.ready, nodeID)
}

// Dequeue pops the next ready node id, or ("", false) if the ready
// queue is empty.
func (s *State) Dequeue() (string, bool) {
	if len(s.ready) == 0 {
		return "", false
	}
	id := s.ready[0]
	s.ready = s.ready[1:]
	delete(s.queued, id)
	return id, true
}

// Pending reports whether any node is still queued to run.
func (s *State) Pending() bool { return len(s.ready) > 0 }

// MissingInputs reports whether nodeID is not yet ready: a required
// control predecessor hasn't fired this round, or every data/star port
// feeding it is empty (entries and constant-only nodes are never
// missing once their constant has been delivered at least once).
func (s *State) MissingInputs(nodeID string) bool {
	tails := s.Rep.Tails[nodeID]
	if len(tails) == 0 {
		return false
	}

	controlFroms := make(map[string]bool)
	dataPorts := make(map[string]bool)
	starPorts := 0
	for _, e := range tails {
		if e.In == board.ControlPort {
			controlFroms[e.From] = true
			continue
		}
		if e.In == board.StarPort {
			starPorts++
			continue
		}
		dataPorts[e.In] = true
	}

	for from := range controlFroms {
		if !s.controlSeen[nodeID][from] {
			return true
		}
	}

	for port := range dataPorts {
		if s.portHasValue(nodeID, port) {
			continue
		}
		return true
	}

	if starPorts > 0 && !s.portHasValue(nodeID, board.StarPort) {
		return true
	}

	return false
}

func (s *State) portHasValue(nodeID, port string) bool {
	if _, ok := s.constants[nodeID][port]; ok {
		return true
	}
	if q := s.inputs[nodeID][port]; len(q) > 0 {
		return true
	}
	return false
}

// ShiftInputs consumes one delivery from each populated port queue for
// nodeID (configuration is merged in by the caller, not here), clears
// the node's control-wire firing bits, and returns the merged input
// map the handler will see.
func (s *State) ShiftInputs(nodeID string) map[string]interface{} {
	out := make(map[string]interface{})

	for port, value := range s.constants[nodeID] {
		out[port] = value
	}
	for port, q := range s.inputs[nodeID] {
		if len(q) == 0 {
			continue
		}
		out[port] = q[0]
		s.inputs[nodeID][port] = q[1:]
	}

	delete(s.controlSeen, nodeID)
	s.haveRun[nodeID] = true
	return out
}

// HasRun reports whether nodeID has ever been invoked.
func (s *State) HasRun(nodeID string) bool { return s.haveRun[nodeID] }

// Distribute delivers a handler's outputs along nodeID's outgoing
// edges: a named port goes to every edge wired to that port or to "*";
// an edge with no matching output is skipped. Constant edges overwrite
// their stored constant instead of queueing. Control edges ignore the
// value entirely and just mark the firing bit. Targets that become
// ready are enqueued.
func (s *State) Distribute(nodeID string, outputs map[string]interface{}) {
	for _, e := range s.Rep.Heads[nodeID] {
		if e.Out == board.ControlPort || e.In == board.ControlPort {
			s.markControl(e.To, nodeID)
			s.maybeEnqueue(e.To)
			continue
		}

		value, ok := s.valueFor(e.Out, outputs)
		if !ok {
			continue
		}

		if e.Constant {
			s.setConstant(e.To, e.In, value)
		} else {
			s.push(e.To, e.In, value)
		}
		s.maybeEnqueue(e.To)
	}
}

func (s *State) valueFor(out string, outputs map[string]interface{}) (interface{}, bool) {
	if out == board.StarPort {
		// Star out delivers the handler's whole output map, including
		// keys that other edges also carry.
		return outputs, len(outputs) > 0
	}
	v, ok := outputs[out]
	return v, ok
}

func (s *State) markControl(nodeID, from string) {
	if s.controlSeen[nodeID] == nil {
		s.controlSeen[nodeID] = make(map[string]bool)
	}
	s.controlSeen[nodeID][from] = true
}

func (s *State) setConstant(nodeID, port string, value interface{}) {
	if s.constants[nodeID] == nil {
		s.constants[nodeID] = make(map[string]interface{})
	}
	s.constants[nodeID][port] = value
}

func (s *State) push(nodeID, port string, value interface{}) {
	if s.inputs[nodeID] == nil {
		s.inputs[nodeID] = make(map[string][]interface{})
	}
	s.inputs[nodeID][port] = append(s.inputs[nodeID][port], value)
}

func (s *State) maybeEnqueue(nodeID string) {
	if !s.MissingInputs(nodeID) {
		s.enqueue(nodeID)
	}
}

// Seed delivers call-time values (a top-level run's args, or a
// subgraph invocation's inputs) directly to a node's ports, bypassing
// edge resolution entirely. It is used only at the boundary where a
// caller hands data to a graph that has no internal edge feeding it.
func (s *State) Seed(nodeID string, values map[string]interface{}) {
	for port, v := range values {
		s.setConstant(nodeID, port, v)
	}
}

// InjectReanimationInputs delivers a reanimation reply as if it were
// the paused node's own output, one value per named port, then
// distributes it — FIFO regardless of the value's origin, per the
// engine's resolution of the reanimation-input-ordering question. A
// paused input node's schema names its own ports; there is no single
// fixed reply port.
func (s *State) InjectReanimationInputs(nodeID string, inputs map[string]interface{}) {
	s.Distribute(nodeID, inputs)
}
