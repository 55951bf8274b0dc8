// Package rep turns a board.Descriptor into a Representation: indexed
// edge lists per node and a resolved set of entry nodes, the shape the
// scheduler and traversal machine actually walk. Grounded on the
// adjacency/in-degree planning step of a typical DAG execution engine,
// generalized here to the star/control port algebra a board edge can
// carry.
package rep

import (
	"fmt"
	"sort"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
)

// Warning is a non-fatal note surfaced while normalizing edges, e.g. a
// star output port being narrowed by a more specific wire from the
// same source.
type Warning struct {
	NodeID  string
	Message string
}

// Representation is the resolved, indexed view of a Descriptor.
type Representation struct {
	Nodes    map[string]board.Node
	Heads    map[string][]board.Edge // outgoing edges, keyed by source node id
	Tails    map[string][]board.Edge // incoming edges, keyed by target node id
	Entries  []string                // node ids with no data/control predecessors, in descriptor order
	Warnings []Warning
}

// entryTag is node metadata recognized as an explicit entry marker
// ({"start": true}), used to order multi-entry boards deterministically
// instead of relying solely on zero-indegree discovery order.
const entryTag = "start"

// Build resolves a validated Descriptor into a Representation. It does
// not mutate the Descriptor.
func Build(d *board.Descriptor) (*Representation, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.Lift()

	r := &Representation{
		Nodes: make(map[string]board.Node, len(d.Nodes)),
		Heads: make(map[string][]board.Edge),
		Tails: make(map[string][]board.Edge),
	}

	for _, n := range d.Nodes {
		r.Nodes[n.ID] = n
	}

	normalized, warnings := normalizeEdges(d.Nodes, d.Edges)
	r.Warnings = warnings

	for _, e := range normalized {
		r.Heads[e.From] = append(r.Heads[e.From], e)
		r.Tails[e.To] = append(r.Tails[e.To], e)
	}

	// Stable ordering: outgoing edges fan out in priority order (higher
	// first), ties broken by descriptor order, which sort.SliceStable
	// preserves. Incoming edge lists keep descriptor order.
	for id := range r.Heads {
		edges := r.Heads[id]
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].Priority > edges[j].Priority })
	}

	r.Entries = resolveEntries(d.Nodes, r.Tails)
	if len(r.Entries) == 0 {
		return nil, boarderrors.DescriptorInvalid("board has no entry node: every node has an incoming edge")
	}

	if err := checkCycle(r); err != nil {
		return nil, err
	}

	return r, nil
}

// normalizeEdges resolves the star/specific port mismatch per edge: a
// "*→specific" or "specific→*" edge is rewritten so both ends carry the
// same specific name, with a warning recording the rewrite. This keeps
// a star-out edge to a specific in from delivering the whole output
// bag (it delivers only the matching key), and keeps a specific-out
// edge to a star-in from being stored under the unreadable literal "*"
// key. A true star-to-star or control edge is left untouched.
func normalizeEdges(nodes []board.Node, edges []board.Edge) ([]board.Edge, []Warning) {
	var warnings []Warning
	out := make([]board.Edge, 0, len(edges))
	for _, e := range edges {
		switch {
		case e.Out == board.StarPort && e.In != board.StarPort && e.In != board.ControlPort:
			warnings = append(warnings, Warning{
				NodeID:  e.From,
				Message: fmt.Sprintf("star output of %q narrowed to port %q to match its specific target on %q", e.From, e.In, e.To),
			})
			e.Out = e.In
		case e.In == board.StarPort && e.Out != board.StarPort && e.Out != board.ControlPort:
			warnings = append(warnings, Warning{
				NodeID:  e.To,
				Message: fmt.Sprintf("star input of %q narrowed to port %q to match its specific source on %q", e.To, e.Out, e.From),
			})
			e.In = e.Out
		}
		out = append(out, e)
	}
	return out, warnings
}

// resolveEntries returns nodes with no incoming data or control edges,
// preferring explicit {"metadata": {"start": true}} markers first, in
// descriptor order, falling back to zero-indegree discovery order.
func resolveEntries(nodes []board.Node, tails map[string][]board.Edge) []string {
	var tagged []string
	var zeroIndegree []string
	for _, n := range nodes {
		if len(tails[n.ID]) > 0 {
			continue
		}
		if n.Metadata != nil {
			if v, ok := n.Metadata[entryTag]; ok {
				if b, ok := v.(bool); ok && b {
					tagged = append(tagged, n.ID)
					continue
				}
			}
		}
		zeroIndegree = append(zeroIndegree, n.ID)
	}
	if len(tagged) > 0 {
		return tagged
	}
	return zeroIndegree
}

// checkCycle rejects descriptors that have no possible terminating
// traversal: every node reachable only through a cycle with no
// constant-edge or control-wire break. This is a conservative check —
// a plain DFS cycle detector over data+control edges — raised as a
// descriptor error at load time rather than a runtime trap, matching
// the cycle check every DAG-execution engine in this codebase performs
// before scheduling.
func checkCycle(r *Representation) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(r.Nodes))
	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		for _, e := range r.Heads[id] {
			if e.Constant {
				// A constant edge breaks an otherwise infinite cycle:
				// the target can run again without waiting on a fresh
				// delivery, so it is not a scheduling cycle.
				continue
			}
			switch color[e.To] {
			case gray:
				return boarderrors.DescriptorInvalid(fmt.Sprintf("cycle detected through node %q", e.To))
			case white:
				if err := visit(e.To); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	for id := range r.Nodes {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
