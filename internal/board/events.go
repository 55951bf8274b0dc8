package board

import "time"

// BoardDefined is recorded when a board is first authored. The runtime
// engine never consumes this event — only an embedding editor or audit
// projection would — but the aggregate records it the way every other
// aggregate in this codebase records its own history.
type BoardDefined struct {
	BoardID    string
	Name       string
	Descriptor *Descriptor
	OccurredAt time.Time
}

func (e BoardDefined) EventType() string     { return "board.defined" }
func (e BoardDefined) AggregateID() string   { return e.BoardID }
func (e BoardDefined) AggregateType() string { return "board" }

// BoardUpdated is recorded when a board's descriptor is replaced.
type BoardUpdated struct {
	BoardID    string
	Descriptor *Descriptor
	OccurredAt time.Time
}

func (e BoardUpdated) EventType() string     { return "board.updated" }
func (e BoardUpdated) AggregateID() string   { return e.BoardID }
func (e BoardUpdated) AggregateType() string { return "board" }
