package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duragraph/boardgraph/internal/lifecycle"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from lifecycle.Status
		to   lifecycle.Status
		want bool
	}{
		{lifecycle.StatusIdle, lifecycle.StatusRunning, true},
		{lifecycle.StatusIdle, lifecycle.StatusDone, false},
		{lifecycle.StatusRunning, lifecycle.StatusPausedForInput, true},
		{lifecycle.StatusRunning, lifecycle.StatusDone, true},
		{lifecycle.StatusRunning, lifecycle.StatusErrored, true},
		{lifecycle.StatusRunning, lifecycle.StatusIdle, false},
		{lifecycle.StatusPausedForInput, lifecycle.StatusRunning, true},
		{lifecycle.StatusPausedForInput, lifecycle.StatusErrored, true},
		{lifecycle.StatusPausedForInput, lifecycle.StatusDone, false},
		{lifecycle.StatusDone, lifecycle.StatusRunning, false},
		{lifecycle.StatusErrored, lifecycle.StatusRunning, false},
	}
	for _, c := range cases {
		got := c.from.CanTransitionTo(c.to)
		assert.Equal(t, c.want, got, "%s -> %s", c.from, c.to)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, lifecycle.StatusDone.IsTerminal())
	assert.True(t, lifecycle.StatusErrored.IsTerminal())
	assert.False(t, lifecycle.StatusRunning.IsTerminal())
	assert.False(t, lifecycle.StatusPausedForInput.IsTerminal())
	assert.False(t, lifecycle.StatusIdle.IsTerminal())
}

func TestCheckMultitaskStrategy(t *testing.T) {
	t.Run("a terminal existing run never blocks a new one", func(t *testing.T) {
		assert.NoError(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusDone, lifecycle.StrategyReject))
		assert.NoError(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusErrored, lifecycle.StrategyReject))
	})

	t.Run("reject strategy blocks a non-terminal existing run", func(t *testing.T) {
		assert.Error(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusRunning, lifecycle.StrategyReject))
	})

	t.Run("interrupt, rollback, and enqueue strategies all allow it through", func(t *testing.T) {
		assert.NoError(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusRunning, lifecycle.StrategyInterrupt))
		assert.NoError(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusPausedForInput, lifecycle.StrategyRollback))
		assert.NoError(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusRunning, lifecycle.StrategyEnqueue))
	})

	t.Run("an unknown strategy is rejected", func(t *testing.T) {
		assert.Error(t, lifecycle.CheckMultitaskStrategy(lifecycle.StatusRunning, lifecycle.MultitaskStrategy("bogus")))
	})
}
