// Package board defines the Descriptor data model: nodes, edges, and the
// nested graphs a board is built from, plus the Board aggregate that
// tracks authoring history for a descriptor.
package board

// StarPort is the wildcard port name: a star-to-star edge delivers the
// producer's whole output map, and the receiving handler sees that map
// as a single value under the "*" input key, keyed by the original
// port names.
const StarPort = "*"

// ControlPort is the ordering-only port: edges bound to it carry no
// data, only a firing signal consumed by the scheduler's control wire
// set.
const ControlPort = ""

// Node is a single unit of computation inside a board.
type Node struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Edge connects an output port of one node to an input port of another.
// Out/In use StarPort or ControlPort for the wildcard/ordering cases.
// Constant edges replay their last delivered value on every subsequent
// invocation of the target node instead of being consumed once.
// Priority is a scheduling hint, never a correctness guarantee.
type Edge struct {
	From     string `json:"from"`
	Out      string `json:"out"`
	To       string `json:"to"`
	In       string `json:"in"`
	Constant bool   `json:"constant,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// Descriptor is the immutable, serializable definition of a board: a
// set of nodes and edges, any nested boards it can invoke as
// subgraphs, and the entry point a Loader resolves a board URL to.
type Descriptor struct {
	Nodes    []Node                 `json:"nodes"`
	Edges    []Edge                 `json:"edges"`
	Graphs   map[string]*Descriptor `json:"graphs,omitempty"`
	Modules  map[string]string      `json:"modules,omitempty"`
	Main     string                 `json:"main,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Args     map[string]interface{} `json:"args,omitempty"`
}
