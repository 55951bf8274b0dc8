// Package lifecycle implements the run lifecycle and reanimation (C7):
// the idle → running → paused-for-input → running → done|errored state
// machine, and the ReanimationState a pause captures so a resume can
// reconstruct scheduler state verbatim. Grounded on the teacher's Run
// aggregate/Status state machine and its Checkpoint
// serialize/reconstitute pattern, plus the humanloop Interrupt
// aggregate for the pause-capture shape.
package lifecycle

import "github.com/duragraph/boardgraph/internal/pkg/boarderrors"

// Status is a run's position in its lifecycle.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusRunning         Status = "running"
	StatusPausedForInput  Status = "paused-for-input"
	StatusDone            Status = "done"
	StatusErrored         Status = "errored"
)

// IsTerminal reports whether a run in this status can never transition
// again.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusErrored
}

var validTransitions = map[Status][]Status{
	StatusIdle:           {StatusRunning},
	StatusRunning:        {StatusPausedForInput, StatusDone, StatusErrored},
	StatusPausedForInput: {StatusRunning, StatusErrored},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range validTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s Status) validate(next Status) error {
	if !s.CanTransitionTo(next) {
		return boarderrors.InvalidState(string(s), string(next))
	}
	return nil
}
