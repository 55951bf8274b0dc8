package board

import (
	"fmt"

	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
)

// Validate checks the structural invariants a Descriptor must hold
// before a Representation can be built from it: unique node ids, every
// edge endpoint resolving to a declared node, and every main reference
// resolving within Modules. It does not check reachability or cycles —
// rep.Build does, since cycles are only a problem once entries are
// known. An imperative descriptor (Main set, Nodes empty) is validated
// against its lifted form, since that is what actually runs.
func (d *Descriptor) Validate() error {
	effective := d.Lift()

	if len(effective.Nodes) == 0 {
		return boarderrors.DescriptorInvalid("descriptor must declare at least one node")
	}

	seen := make(map[string]bool, len(effective.Nodes))
	for _, n := range effective.Nodes {
		if n.ID == "" {
			return boarderrors.DescriptorInvalid("node id must not be empty")
		}
		if seen[n.ID] {
			return boarderrors.DescriptorInvalid(fmt.Sprintf("duplicate node id %q", n.ID))
		}
		if n.Type == "" {
			return boarderrors.DescriptorInvalid(fmt.Sprintf("node %q missing type", n.ID))
		}
		seen[n.ID] = true
	}

	for _, e := range effective.Edges {
		if e.From == "" || e.To == "" {
			return boarderrors.DescriptorInvalid("edge must declare from and to")
		}
		if !seen[e.From] {
			return boarderrors.DescriptorInvalid(fmt.Sprintf("edge references unknown source node %q", e.From))
		}
		if !seen[e.To] {
			return boarderrors.DescriptorInvalid(fmt.Sprintf("edge references unknown target node %q", e.To))
		}
	}

	if d.Main != "" {
		if _, ok := d.Modules[d.Main]; !ok {
			return boarderrors.DescriptorInvalid(fmt.Sprintf("main references unknown module %q", d.Main))
		}
	}

	for id, g := range d.Graphs {
		if g == nil {
			return boarderrors.DescriptorInvalid(fmt.Sprintf("subgraph %q is nil", id))
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("subgraph %q: %w", id, err)
		}
	}

	return nil
}

// ModuleConfigKey is the configuration key a lifted runModule node
// carries the chosen module's name under.
const ModuleConfigKey = "$module"

// RunModuleNodeType is the synthetic node type Lift wires in to invoke
// an imperative descriptor's chosen module.
const RunModuleNodeType = "runModule"

// Lift returns d unchanged if it already declares nodes, or if it has
// no Main to lift. Otherwise it returns the declarative graph an
// imperative descriptor (Modules + Main, no Nodes/Edges) is equivalent
// to: a synthetic input node, a runModule node configured with
// $module: Main, and a synthetic output node, connected
// input.* → runModule → output.* so every input the caller seeds
// reaches the module and every output the module returns is captured.
// d itself is never mutated.
func (d *Descriptor) Lift() *Descriptor {
	if len(d.Nodes) > 0 || d.Main == "" {
		return d
	}

	lifted := *d
	lifted.Nodes = []Node{
		{ID: "input", Type: "input"},
		{ID: "runModule", Type: RunModuleNodeType, Configuration: map[string]interface{}{ModuleConfigKey: d.Main}},
		{ID: "output", Type: "output"},
	}
	lifted.Edges = []Edge{
		{From: "input", Out: StarPort, To: "runModule", In: StarPort},
		{From: "runModule", Out: StarPort, To: "output", In: StarPort},
	}
	return &lifted
}

// NodeByID returns the node with the given id, or false if absent.
func (d *Descriptor) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
