package lifecycle

import (
	"time"

	"github.com/duragraph/boardgraph/internal/pkg/eventbus"
	"github.com/duragraph/boardgraph/internal/pkg/idgen"
)

// MultitaskStrategy governs what happens when a new top-level run
// targets a board whose previous run on the same thread hasn't reached
// a terminal or paused state. Grounded on the teacher's
// CheckMultitaskStrategy/ApplyMultitaskStrategy.
type MultitaskStrategy string

const (
	StrategyReject    MultitaskStrategy = "reject"
	StrategyInterrupt MultitaskStrategy = "interrupt"
	StrategyRollback  MultitaskStrategy = "rollback"
	StrategyEnqueue    MultitaskStrategy = "enqueue"
)

// Run is the lifecycle aggregate for one board invocation: it tracks
// status transitions and a recursion limit, and records domain events
// the way every other aggregate in this codebase does. The recursion
// limit is only recorded here; Engine does not pass it to the
// traversal machine.
type Run struct {
	id             string
	threadID       string
	status         Status
	recursionLimit int
	createdAt      time.Time
	updatedAt      time.Time

	events []eventbus.Event
}

// NewRun creates a Run in StatusIdle. recursionLimit defaults to 25,
// matching the teacher's Run.RecursionLimit default.
func NewRun(threadID string, recursionLimit int) *Run {
	if recursionLimit <= 0 {
		recursionLimit = 25
	}
	now := time.Now()
	id := idgen.New()
	r := &Run{
		id:             id,
		threadID:       threadID,
		status:         StatusIdle,
		recursionLimit: recursionLimit,
		createdAt:      now,
		updatedAt:      now,
	}
	r.record(RunCreated{RunID: id, ThreadID: threadID, OccurredAt: now})
	return r
}

func (r *Run) ID() string             { return r.id }
func (r *Run) ThreadID() string       { return r.threadID }
func (r *Run) Status() Status         { return r.status }
func (r *Run) RecursionLimit() int    { return r.recursionLimit }
func (r *Run) CreatedAt() time.Time   { return r.createdAt }
func (r *Run) UpdatedAt() time.Time   { return r.updatedAt }

func (r *Run) transition(next Status) error {
	if err := r.status.validate(next); err != nil {
		return err
	}
	r.status = next
	r.updatedAt = time.Now()
	return nil
}

// Start moves the run from idle to running.
func (r *Run) Start() error {
	if err := r.transition(StatusRunning); err != nil {
		return err
	}
	r.record(RunStarted{RunID: r.id, OccurredAt: r.updatedAt})
	return nil
}

// Pause moves a running run to paused-for-input, recording the ticket
// a caller must present to resume it.
func (r *Run) Pause(ticket string) error {
	if err := r.transition(StatusPausedForInput); err != nil {
		return err
	}
	r.record(RunPaused{RunID: r.id, Ticket: ticket, OccurredAt: r.updatedAt})
	return nil
}

// Resume moves a paused run back to running.
func (r *Run) Resume() error {
	if err := r.transition(StatusRunning); err != nil {
		return err
	}
	r.record(RunResumed{RunID: r.id, OccurredAt: r.updatedAt})
	return nil
}

// Complete moves a running run to done, recording its captured output.
func (r *Run) Complete(output map[string]interface{}) error {
	if err := r.transition(StatusDone); err != nil {
		return err
	}
	r.record(RunCompleted{RunID: r.id, Output: output, OccurredAt: r.updatedAt})
	return nil
}

// Fail moves a run to errored, regardless of whether it was running or
// paused, recording the failure reason.
func (r *Run) Fail(reason string) error {
	if err := r.transition(StatusErrored); err != nil {
		return err
	}
	r.record(RunFailed{RunID: r.id, Reason: reason, OccurredAt: r.updatedAt})
	return nil
}

func (r *Run) Events() []eventbus.Event { return r.events }
func (r *Run) ClearEvents()             { r.events = nil }
func (r *Run) record(e eventbus.Event)  { r.events = append(r.events, e) }
