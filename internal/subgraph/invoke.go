// Package subgraph implements invokeGraph (C6): running a nested board
// to its first captured output as a child of the current traversal,
// addressed by an invocation path, with its own nodestart/nodeend
// events bracketed by a nested graphstart/graphend pair in the
// parent's event stream. Grounded on the teacher's subgraph callback
// (depth-guarded recursive Execute call) and its input/output
// key-projected SubgraphNodeExecutor, generalized to path-based
// addressing instead of a flat depth counter.
package subgraph

import (
	"context"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
	"github.com/duragraph/boardgraph/internal/harness"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/pkg/idgen"
	"github.com/duragraph/boardgraph/internal/probe"
	"github.com/duragraph/boardgraph/internal/rep"
	"github.com/duragraph/boardgraph/internal/sched"
	"github.com/duragraph/boardgraph/internal/traversal"
)

// MaxDepth bounds invocation path length, guarding against a
// pathologically self-referential graph-valued handler chain.
const MaxDepth = 32

// Paused describes a subgraph invocation that itself stopped at an
// input node, so the caller (or lifecycle, at the top) can persist a
// nested reanimation record and resume it later with a chained ticket.
type Paused struct {
	Path  []string
	State *sched.State
	Rep   *rep.Representation
	Info  *traversal.PauseInfo
}

// Invoker runs nested boards sharing the parent's registry, harness
// stream, and probe.
type Invoker struct {
	Registry *handler.Registry
	Stream   *harness.Stream
	Probe    *probe.Probe
	Opts     traversal.Options
}

// Invoke builds a child Representation and scheduler state for d,
// seeds its entries with inputs, and runs it to its first output (or a
// pause). parentPath is the invocation path of the caller; the child's
// own path appends a freshly generated invocation id.
func (inv *Invoker) Invoke(ctx context.Context, d *board.Descriptor, inputs map[string]interface{}, parentPath []string) (map[string]interface{}, *Paused, error) {
	if len(parentPath) >= MaxDepth {
		return nil, nil, boarderrors.New("SUBGRAPH_DEPTH", "subgraph invocation depth exceeded", boarderrors.ErrInvalidState)
	}

	path := make([]string, len(parentPath)+1)
	copy(path, parentPath)
	path[len(parentPath)] = idgen.New()

	r, err := rep.Build(d)
	if err != nil {
		return nil, nil, err
	}

	seeded := mergeArgs(d.Args, inputs)
	st := sched.New(r)
	for _, entry := range r.Entries {
		st.Seed(entry, seeded)
	}

	childOpts := inv.Opts
	childOpts.StopAtFirstOutput = true

	m := traversal.New(st, inv.Registry, inv.Stream, inv.Probe, path, childOpts)
	outcome, err := m.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	if outcome.Paused != nil {
		return nil, &Paused{Path: path, State: st, Rep: r, Info: outcome.Paused}, nil
	}
	return outcome.Output, nil, nil
}

// InvokeSafe wraps Invoke so a subgraph failure never propagates past
// its caller's boundary: it is folded into a "$error" output, matching
// every other handler-error path in the engine.
func (inv *Invoker) InvokeSafe(ctx context.Context, d *board.Descriptor, inputs map[string]interface{}, parentPath []string) (map[string]interface{}, *Paused, error) {
	out, paused, err := inv.Invoke(ctx, d, inputs, parentPath)
	if err != nil {
		return map[string]interface{}{
			"$error": map[string]interface{}{"kind": "error", "error": err.Error(), "inputs": inputs},
		}, nil, nil
	}
	return out, paused, nil
}

// mergeArgs layers a graph's own declared args beneath the caller's
// inputs: args ⊕ inputs, with the caller's values taking precedence.
// Neither map is mutated.
func mergeArgs(args, inputs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args)+len(inputs))
	for k, v := range args {
		out[k] = v
	}
	for k, v := range inputs {
		out[k] = v
	}
	return out
}
