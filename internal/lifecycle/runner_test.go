package lifecycle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
	"github.com/duragraph/boardgraph/internal/kit/builtin"
	"github.com/duragraph/boardgraph/internal/lifecycle"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/ports"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]ports.ReanimationRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]ports.ReanimationRecord)}
}

func (m *memStore) Save(ctx context.Context, ticket string, rec ports.ReanimationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[ticket] = rec
	return nil
}

func (m *memStore) Load(ctx context.Context, ticket string) (ports.ReanimationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[ticket]
	if !ok {
		return ports.ReanimationRecord{}, boarderrors.UnknownTicket(ticket)
	}
	return rec, nil
}

func (m *memStore) Delete(ctx context.Context, ticket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, ticket)
	return nil
}

func newTestRegistry() *handler.Registry {
	r := handler.New(nil, nil)
	r.Use(builtin.Kit())
	r.Use(handler.Kit{"output": builtin.Passthrough()})
	return r
}

func TestEngine_Start_RunsToCompletion(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "in", Type: "builtin.uppercase"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
	}
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: newMemStore()}

	run, result, err := e.Start(context.Background(), "thread-1", d, map[string]interface{}{"value": "hi"})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDone, run.Status())
	assert.Empty(t, result.Ticket)
	assert.Equal(t, "HI", result.Output["value"])
}

func TestEngine_Start_MergesDescriptorArgsBeneathCallerInputs(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "in", Type: "builtin.passthrough"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
		Args:  map[string]interface{}{"value": "default"},
	}
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: newMemStore()}

	_, result, err := e.Start(context.Background(), "thread-1", d, nil)

	require.NoError(t, err)
	assert.Equal(t, "default", result.Output["value"])
}

func TestEngine_Start_PausesAndPersistsAReanimationTicket(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "wait", Type: "input"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "wait", Out: "value", To: "out", In: "value"}},
	}
	store := newMemStore()
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: store}

	run, result, err := e.Start(context.Background(), "thread-1", d, nil)

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusPausedForInput, run.Status())
	require.NotEmpty(t, result.Ticket)

	_, loadErr := store.Load(context.Background(), result.Ticket)
	assert.NoError(t, loadErr, "the ticket must actually be persisted")
}

func TestEngine_Resume_InjectsTheReplyAndCompletesTheRun(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "wait", Type: "input"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "wait", Out: "value", To: "out", In: "value"}},
	}
	store := newMemStore()
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: store}

	run, startResult, err := e.Start(context.Background(), "thread-1", d, nil)
	require.NoError(t, err)
	require.NotEmpty(t, startResult.Ticket)

	result, err := e.Resume(context.Background(), run, d, startResult.Ticket, map[string]interface{}{"value": "resumed-value"})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDone, run.Status())
	assert.Equal(t, "resumed-value", result.Output["value"])
}

func TestEngine_Resume_InjectsOnAnArbitrarilyNamedPort(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "wait", Type: "input"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "wait", Out: "q", To: "out", In: "q"}},
	}
	store := newMemStore()
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: store}

	run, startResult, err := e.Start(context.Background(), "thread-1", d, nil)
	require.NoError(t, err)
	require.NotEmpty(t, startResult.Ticket)

	result, err := e.Resume(context.Background(), run, d, startResult.Ticket, map[string]interface{}{"q": "hi"})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDone, run.Status())
	assert.Equal(t, "hi", result.Output["q"])
}

func TestEngine_Resume_TicketIsSingleUse(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "wait", Type: "input"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "wait", Out: "value", To: "out", In: "value"}},
	}
	store := newMemStore()
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: store}

	run, startResult, err := e.Start(context.Background(), "thread-1", d, nil)
	require.NoError(t, err)

	_, err = e.Resume(context.Background(), run, d, startResult.Ticket, map[string]interface{}{"value": "v"})
	require.NoError(t, err)

	_, err = e.Resume(context.Background(), run, d, startResult.Ticket, map[string]interface{}{"value": "v-again"})
	require.Error(t, err)
	assert.True(t, boarderrors.Is(err, boarderrors.ErrUnknownTicket))
}

func TestEngine_Resume_UnknownTicketFails(t *testing.T) {
	d := &board.Descriptor{Nodes: []board.Node{{ID: "wait", Type: "input"}}}
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: newMemStore()}
	run := lifecycle.NewRun("t", 0)

	_, err := e.Resume(context.Background(), run, d, "nonexistent", map[string]interface{}{"value": "v"})
	require.Error(t, err)
	assert.True(t, boarderrors.Is(err, boarderrors.ErrUnknownTicket))
}

func TestEngine_Start_AbortedContextFailsTheRun(t *testing.T) {
	d := &board.Descriptor{
		Nodes: []board.Node{
			{ID: "in", Type: "builtin.passthrough"},
			{ID: "out", Type: "output"},
		},
		Edges: []board.Edge{{From: "in", Out: "value", To: "out", In: "value"}},
	}
	e := &lifecycle.Engine{Registry: newTestRegistry(), Store: newMemStore()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, _, err := e.Start(ctx, "thread-1", d, map[string]interface{}{"value": 1})

	require.Error(t, err)
	assert.Equal(t, lifecycle.StatusErrored, run.Status())
}
