package subgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
	"github.com/duragraph/boardgraph/internal/kit/builtin"
	"github.com/duragraph/boardgraph/internal/subgraph"
)

func newRegistry() *handler.Registry {
	r := handler.New(nil, nil)
	r.Use(builtin.Kit())
	r.Use(handler.Kit{"output": builtin.Passthrough()})
	return r
}

func TestInvoker_Invoke_RunsChildToItsFirstOutput(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "in", Type: "builtin.uppercase"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
	}
	inv := &subgraph.Invoker{Registry: newRegistry()}

	out, paused, err := inv.Invoke(context.Background(), d, map[string]interface{}{"value": "hi"}, nil)

	require.NoError(t, err)
	assert.Nil(t, paused)
	assert.Equal(t, "HI", out["value"])
}

func TestInvoker_Invoke_ChildPauseReturnsAResumableHandle(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "wait", Type: "input"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "wait", Out: "value", To: "out", In: "value"}},
	}
	inv := &subgraph.Invoker{Registry: newRegistry()}

	out, paused, err := inv.Invoke(context.Background(), d, nil, []string{"parent"})

	require.NoError(t, err)
	require.Nil(t, out)
	require.NotNil(t, paused)
	assert.Equal(t, "wait", paused.Info.NodeID)
	assert.Equal(t, []string{"parent", paused.Path[1]}, paused.Path)
}

func TestInvoker_Invoke_SuccessiveCallsGetDistinctPathSegments(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{{ID: "wait", Type: "input"}},
	}
	inv := &subgraph.Invoker{Registry: newRegistry()}

	_, p1, err := inv.Invoke(context.Background(), d, nil, []string{"root"})
	require.NoError(t, err)
	_, p2, err := inv.Invoke(context.Background(), d, nil, []string{"root"})
	require.NoError(t, err)

	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.Equal(t, "root", p1.Path[0])
	assert.Equal(t, "root", p2.Path[0])
	assert.NotEqual(t, p1.Path[1], p2.Path[1], "each invocation must mint its own path segment")
}

func TestInvoker_Invoke_RejectsDepthBeyondMaxDepth(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "in", Type: "builtin.passthrough"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
	}
	inv := &subgraph.Invoker{Registry: newRegistry()}

	deepPath := make([]string, subgraph.MaxDepth)
	for i := range deepPath {
		deepPath[i] = "p"
	}

	_, _, err := inv.Invoke(context.Background(), d, nil, deepPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth")
}

func TestInvoker_Invoke_PropagatesARepresentationBuildError(t *testing.T) {
	d := &board.Descriptor{} // no nodes at all: invalid
	inv := &subgraph.Invoker{Registry: newRegistry()}

	_, _, err := inv.Invoke(context.Background(), d, nil, nil)
	require.Error(t, err)
}

func TestInvoker_InvokeSafe_FoldsAFailureIntoErrorOutputInsteadOfPropagating(t *testing.T) {
	d := &board.Descriptor{}
	inv := &subgraph.Invoker{Registry: newRegistry()}

	out, paused, err := inv.InvokeSafe(context.Background(), d, map[string]interface{}{"value": "hi"}, nil)

	require.NoError(t, err)
	assert.Nil(t, paused)
	errBag, ok := out["$error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", errBag["kind"])
	assert.NotEmpty(t, errBag["error"])
	assert.Equal(t, "hi", errBag["inputs"].(map[string]interface{})["value"])
}

func TestInvoker_Invoke_MergesGraphArgsBeneathCallerInputs(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "in", Type: "builtin.passthrough"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
		Args:  map[string]interface{}{"value": "default", "extra": "from-args"},
	}
	inv := &subgraph.Invoker{Registry: newRegistry()}

	out, paused, err := inv.Invoke(context.Background(), d, map[string]interface{}{"value": "caller"}, nil)

	require.NoError(t, err)
	assert.Nil(t, paused)
	assert.Equal(t, "caller", out["value"], "a caller-supplied input must win over the graph's own arg default")
}
