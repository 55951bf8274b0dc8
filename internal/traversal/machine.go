// Package traversal implements the main scheduling loop (C4): dequeue
// a ready node, check its inputs, shift them, invoke its handler (or
// pause for human input), emit the matching harness events, distribute
// outputs, and repeat until the ready queue drains or the graph pauses.
// Grounded on the teacher's queue-driven executePlan loop, rewritten
// around readiness (sched.State.MissingInputs) instead of in-degree
// counting so star, control, and constant wires all participate
// correctly.
package traversal

import (
	"context"
	"fmt"

	"strings"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
	"github.com/duragraph/boardgraph/internal/harness"
	"github.com/duragraph/boardgraph/internal/infra/tracing"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/probe"
	"github.com/duragraph/boardgraph/internal/sched"
)

// Options configures a Machine.
type Options struct {
	// InputNodeType is the node type that represents a pause point
	// waiting on a human or external reply. Defaults to "input".
	InputNodeType string
	// OutputNodeType is the node type whose invocation captures its
	// inputs into the run's result. Defaults to "output".
	OutputNodeType string
	// StopAtFirstOutput makes Run return as soon as the first output
	// node fires, without draining the rest of the ready queue. Used
	// by subgraph invocation, which only needs a child graph's first
	// captured output.
	StopAtFirstOutput bool
	// MaxInvocationsPerNode bounds how many times a single node may
	// run within one invocation, guarding against a non-terminating
	// cyclic board that rep.Build's conservative check let through
	// (e.g. a cycle broken only by a runtime condition). Zero means
	// unbounded.
	MaxInvocationsPerNode int
}

func (o Options) withDefaults() Options {
	if o.InputNodeType == "" {
		o.InputNodeType = "input"
	}
	if o.OutputNodeType == "" {
		o.OutputNodeType = "output"
	}
	return o
}

// PauseInfo describes the node a Machine stopped at, waiting for a
// reply to be injected before the caller can Run again.
type PauseInfo struct {
	NodeID string
	Schema map[string]interface{}
}

// Outcome is what a Run call produced.
type Outcome struct {
	Output map[string]interface{} // first (or last, if draining fully) captured output
	Paused *PauseInfo
}

// Machine drives a single sched.State to completion or a pause point,
// emitting events to a harness.Stream and a probe.Probe as it goes.
type Machine struct {
	State    *sched.State
	Registry *handler.Registry
	Stream   *harness.Stream
	Probe    *probe.Probe
	Path     []string
	Opts     Options

	invocations map[string]int
}

// New builds a Machine. stream and pb may be nil, in which case events
// are silently dropped.
func New(state *sched.State, registry *handler.Registry, stream *harness.Stream, pb *probe.Probe, path []string, opts Options) *Machine {
	return &Machine{
		State:       state,
		Registry:    registry,
		Stream:      stream,
		Probe:       pb,
		Path:        path,
		Opts:        opts.withDefaults(),
		invocations: make(map[string]int),
	}
}

func (m *Machine) emit(e harness.Event) {
	e.Path = m.Path
	if m.Stream != nil {
		m.Stream.Emit(e)
	}
	m.observe(probe.Message{Kind: probe.KindHarness, NodeID: e.NodeID, Payload: e})
}

func (m *Machine) observe(msg probe.Message) {
	if m.Probe == nil {
		return
	}
	m.Probe.Emit(msg)
}

// Run drives the ready queue until it drains, the graph pauses for
// input, an unrecoverable error occurs, or ctx is cancelled. It emits
// graphstart on entry and graphend on every exit path.
func (m *Machine) Run(ctx context.Context) (Outcome, error) {
	runID := strings.Join(m.Path, "/")
	ctx, span := tracing.StartRunSpan(ctx, runID)
	defer span.End()

	m.emit(harness.Event{Kind: harness.KindGraphStart})

	outcome, err := m.run(ctx)

	m.emit(harness.Event{Kind: harness.KindGraphEnd})
	return outcome, err
}

func (m *Machine) run(ctx context.Context) (Outcome, error) {
	var captured map[string]interface{}
	haveCaptured := false

	for m.State.Pending() {
		if err := ctx.Err(); err != nil {
			m.emit(harness.Event{Kind: harness.KindError, Error: &harness.ErrorInfo{Kind: "aborted", Message: err.Error()}})
			return Outcome{}, boarderrors.Aborted("")
		}

		nodeID, _ := m.State.Dequeue()
		node, ok := m.State.Rep.Nodes[nodeID]
		if !ok {
			continue
		}

		if m.State.MissingInputs(nodeID) {
			m.emit(harness.Event{Kind: harness.KindSkip, NodeID: nodeID, NodeType: node.Type})
			continue
		}

		if node.Type == m.Opts.InputNodeType {
			schema, _ := node.Configuration["schema"].(map[string]interface{})
			m.emit(harness.Event{Kind: harness.KindInput, NodeID: nodeID, NodeType: node.Type, Values: node.Configuration})
			return Outcome{Paused: &PauseInfo{NodeID: nodeID, Schema: schema}}, nil
		}

		if m.Opts.MaxInvocationsPerNode > 0 {
			m.invocations[nodeID]++
			if m.invocations[nodeID] > m.Opts.MaxInvocationsPerNode {
				return Outcome{}, boarderrors.New("MAX_INVOCATIONS", fmt.Sprintf("node %q exceeded invocation limit", nodeID), boarderrors.ErrMaxInvocations)
			}
		}

		inputs := mergeConfiguration(node.Configuration, m.State.ShiftInputs(nodeID))
		m.observe(probe.Message{Kind: probe.KindShift, NodeID: nodeID, Payload: inputs})
		m.emit(harness.Event{Kind: harness.KindNodeStart, NodeID: nodeID, NodeType: node.Type, Values: inputs})

		outputs, nodeErr := m.invoke(ctx, node, inputs)

		m.emit(harness.Event{Kind: harness.KindNodeEnd, NodeID: nodeID, NodeType: node.Type, Values: outputs})

		if node.Type == m.Opts.OutputNodeType {
			captured = inputs
			haveCaptured = true
			m.emit(harness.Event{Kind: harness.KindOutput, NodeID: nodeID, Values: inputs})
			if m.Opts.StopAtFirstOutput {
				return Outcome{Output: captured}, nil
			}
		}

		m.State.Distribute(nodeID, outputs)
		for _, e := range m.State.Rep.Heads[nodeID] {
			m.observe(probe.Message{Kind: probe.KindEdge, NodeID: nodeID, EdgeTo: e.To})
		}

		_ = nodeErr // handler errors are already folded into outputs["$error"]; the run continues.
	}

	if haveCaptured {
		return Outcome{Output: captured}, nil
	}
	return Outcome{}, nil
}

// invoke resolves and calls nodeID's handler. Resolution and handler
// errors never abort the run: both are folded into a "$error" output
// port so downstream edges (and the caller) can observe the failure
// without the scheduler itself throwing past its boundary.
func (m *Machine) invoke(ctx context.Context, node board.Node, inputs map[string]interface{}) (map[string]interface{}, error) {
	ctx, span := tracing.StartNodeSpan(ctx, node.ID, node.Type)
	defer span.End()

	h, err := m.Registry.Resolve(ctx, node.Type)
	if err != nil {
		return errorOutput("resolution", err, inputs), err
	}

	outputs, err := h.Invoke(ctx, inputs)
	if err != nil {
		return errorOutput("error", err, inputs), err
	}
	if outputs == nil {
		outputs = map[string]interface{}{}
	}
	return outputs, nil
}

// errorOutput builds the $error payload a handler or resolution
// failure is folded into: kind, the error text, and the exact inputs
// the node was invoked with, so a caller can diagnose or retry against
// the failing call.
func errorOutput(kind string, err error, inputs map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"$error": map[string]interface{}{
			"kind":   kind,
			"error":  err.Error(),
			"inputs": inputs,
		},
	}
}

// mergeConfiguration layers a node's static configuration beneath its
// shifted inputs: configuration ⊕ constants ⊕ shifted queue values,
// with later layers taking precedence (sched.State.ShiftInputs already
// resolved constants vs. queued values).
func mergeConfiguration(configuration map[string]interface{}, shifted map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(configuration)+len(shifted))
	for k, v := range configuration {
		out[k] = v
	}
	for k, v := range shifted {
		out[k] = v
	}
	return out
}
