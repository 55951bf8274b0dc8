package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/boardgraph/internal/board"
)

func TestDescriptor_Validate(t *testing.T) {
	t.Run("rejects an empty descriptor", func(t *testing.T) {
		d := &board.Descriptor{}
		err := d.Validate()
		require.Error(t, err)
	})

	t.Run("rejects a duplicate node id", func(t *testing.T) {
		d := &board.Descriptor{
			Nodes: []board.Node{
				{ID: "a", Type: "builtin.passthrough"},
				{ID: "a", Type: "builtin.passthrough"},
			},
		}
		err := d.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate node id")
	})

	t.Run("rejects an edge referencing an unknown node", func(t *testing.T) {
		d := &board.Descriptor{
			Nodes: []board.Node{{ID: "a", Type: "builtin.passthrough"}},
			Edges: []board.Edge{{From: "a", Out: "value", To: "missing", In: "value"}},
		}
		err := d.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown target node")
	})

	t.Run("rejects a main pointing at an undeclared module", func(t *testing.T) {
		d := &board.Descriptor{
			Nodes: []board.Node{{ID: "a", Type: "builtin.passthrough"}},
			Main:  "missing",
		}
		err := d.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown module")
	})

	t.Run("accepts an imperative descriptor with no declared nodes", func(t *testing.T) {
		d := &board.Descriptor{
			Modules: map[string]string{"main": "return inputs"},
			Main:    "main",
		}
		require.NoError(t, d.Validate())
	})

	t.Run("validates nested subgraphs recursively", func(t *testing.T) {
		d := &board.Descriptor{
			Nodes: []board.Node{{ID: "a", Type: "builtin.passthrough"}},
			Graphs: map[string]*board.Descriptor{
				"child": {Nodes: []board.Node{{ID: "b", Type: "x"}, {ID: "b", Type: "x"}}},
			},
		}
		err := d.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `subgraph "child"`)
	})

	t.Run("accepts a minimal valid descriptor", func(t *testing.T) {
		d := &board.Descriptor{
			Nodes: []board.Node{
				{ID: "in", Type: "input"},
				{ID: "out", Type: "output"},
			},
			Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
		}
		require.NoError(t, d.Validate())
	})
}

func TestDescriptor_Lift(t *testing.T) {
	t.Run("leaves a declarative descriptor untouched", func(t *testing.T) {
		d := &board.Descriptor{
			Nodes: []board.Node{{ID: "a", Type: "builtin.passthrough"}},
		}
		assert.Same(t, d, d.Lift())
	})

	t.Run("leaves a descriptor with no main untouched even with no nodes", func(t *testing.T) {
		d := &board.Descriptor{}
		assert.Same(t, d, d.Lift())
	})

	t.Run("synthesizes input, runModule, and output for an imperative descriptor", func(t *testing.T) {
		d := &board.Descriptor{
			Modules: map[string]string{"main": "return inputs"},
			Main:    "main",
		}
		lifted := d.Lift()

		require.Len(t, lifted.Nodes, 3)
		runModule, ok := lifted.NodeByID("runModule")
		require.True(t, ok)
		assert.Equal(t, board.RunModuleNodeType, runModule.Type)
		assert.Equal(t, "main", runModule.Configuration[board.ModuleConfigKey])

		require.Len(t, lifted.Edges, 2)
		assert.Equal(t, board.Edge{From: "input", Out: board.StarPort, To: "runModule", In: board.StarPort}, lifted.Edges[0])
		assert.Equal(t, board.Edge{From: "runModule", Out: board.StarPort, To: "output", In: board.StarPort}, lifted.Edges[1])
	})
}

func TestDescriptor_NodeByID(t *testing.T) {
	d := &board.Descriptor{Nodes: []board.Node{{ID: "a", Type: "x"}}}

	n, ok := d.NodeByID("a")
	require.True(t, ok)
	assert.Equal(t, "x", n.Type)

	_, ok = d.NodeByID("missing")
	assert.False(t, ok)
}
