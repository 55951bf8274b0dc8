// Package harness defines the lazy, finite, non-restartable event
// stream a board run emits: graphstart/graphend bracket a run or
// subgraph invocation, nodestart/nodeend/skip bracket a node, and
// input/output/secret/error/end mark the boundary conditions of a run.
// Grounded on the teacher's typed execution events plus its streaming
// bridge's event envelope, generalized to the full taxonomy a board
// engine's caller needs.
package harness

// Kind identifies an event's place in the taxonomy. Ordering within a
// single graph is strictly monotonic; a nested graphstart/graphend pair
// always fully brackets the child invocation's own events, and the
// child's graphend is always emitted before the parent's next nodeend.
type Kind string

const (
	KindGraphStart Kind = "graphstart"
	KindGraphEnd   Kind = "graphend"
	KindNodeStart  Kind = "nodestart"
	KindNodeEnd    Kind = "nodeend"
	KindSkip       Kind = "skip"
	KindInput      Kind = "input"
	KindOutput     Kind = "output"
	KindSecret     Kind = "secret"
	KindError      Kind = "error"
	KindEnd        Kind = "end"
)

// Event is a single point in the stream. Path addresses nested
// subgraph invocations: an empty path is the top-level run, and each
// element appended is one invokeGraph call deeper.
type Event struct {
	Kind     Kind
	Path     []string
	NodeID   string                 `json:"node_id,omitempty"`
	NodeType string                 `json:"node_type,omitempty"`
	Values   map[string]interface{} `json:"values,omitempty"`
	Error    *ErrorInfo              `json:"error,omitempty"`
}

// ErrorInfo classifies an error event per the engine's error taxonomy.
type ErrorInfo struct {
	Kind    string
	Message string
	NodeID  string `json:"node_id,omitempty"`
}

// Stream is a single-reader, single-writer event channel: Emit must
// only be called from the goroutine driving the traversal machine that
// owns it, and Events must be drained to completion (through a KindEnd)
// or abandoned — it is never restarted.
type Stream struct {
	ch chan Event
}

// NewStream creates a Stream with the given buffer size. A buffer of 0
// makes Emit block until the reader drains it, giving the traversal
// machine natural backpressure.
func NewStream(buffer int) *Stream {
	return &Stream{ch: make(chan Event, buffer)}
}

// Emit sends an event, blocking if the stream is unbuffered and has no
// reader yet.
func (s *Stream) Emit(e Event) { s.ch <- e }

// Close signals no further events will be emitted. Callers must emit a
// KindEnd event before calling Close.
func (s *Stream) Close() { close(s.ch) }

// Events returns the receive-only channel a caller ranges over.
func (s *Stream) Events() <-chan Event { return s.ch }
