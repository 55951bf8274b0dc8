package lifecycle

import "time"

type RunCreated struct {
	RunID      string
	ThreadID   string
	OccurredAt time.Time
}

func (e RunCreated) EventType() string     { return "run.created" }
func (e RunCreated) AggregateID() string   { return e.RunID }
func (e RunCreated) AggregateType() string { return "run" }

type RunStarted struct {
	RunID      string
	OccurredAt time.Time
}

func (e RunStarted) EventType() string     { return "run.started" }
func (e RunStarted) AggregateID() string   { return e.RunID }
func (e RunStarted) AggregateType() string { return "run" }

type RunPaused struct {
	RunID      string
	Ticket     string
	OccurredAt time.Time
}

func (e RunPaused) EventType() string     { return "run.paused" }
func (e RunPaused) AggregateID() string   { return e.RunID }
func (e RunPaused) AggregateType() string { return "run" }

type RunResumed struct {
	RunID      string
	OccurredAt time.Time
}

func (e RunResumed) EventType() string     { return "run.resumed" }
func (e RunResumed) AggregateID() string   { return e.RunID }
func (e RunResumed) AggregateType() string { return "run" }

type RunCompleted struct {
	RunID      string
	Output     map[string]interface{}
	OccurredAt time.Time
}

func (e RunCompleted) EventType() string     { return "run.completed" }
func (e RunCompleted) AggregateID() string   { return e.RunID }
func (e RunCompleted) AggregateType() string { return "run" }

type RunFailed struct {
	RunID      string
	Reason     string
	OccurredAt time.Time
}

func (e RunFailed) EventType() string     { return "run.failed" }
func (e RunFailed) AggregateID() string   { return e.RunID }
func (e RunFailed) AggregateType() string { return "run" }
