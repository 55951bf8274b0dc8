package lifecycle

import (
	"encoding/json"
	"time"

	"github.com/duragraph/boardgraph/internal/sched"
)

// ReanimationState is everything needed to reconstruct a paused run
// verbatim: the scheduler snapshot, which node it paused at, and the
// invocation path it paused inside (non-empty when the pause happened
// inside a nested subgraph invocation). Grounded on the teacher's
// Checkpoint aggregate (channel values/versions/pending sends) and its
// humanloop Interrupt's resumption-point capture.
type ReanimationState struct {
	RunID          string          `json:"run_id"`
	Snapshot       sched.Snapshot  `json:"snapshot"`
	PendingNodeID  string          `json:"pending_node_id"`
	PendingSchema  map[string]any  `json:"pending_schema,omitempty"`
	InvocationPath []string        `json:"invocation_path,omitempty"`
	PausedAt       time.Time       `json:"paused_at"`
}

// Marshal serializes the reanimation state for storage behind an
// opaque ticket.
func (r ReanimationState) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal reconstructs a ReanimationState from stored bytes.
func Unmarshal(data []byte) (ReanimationState, error) {
	var r ReanimationState
	if err := json.Unmarshal(data, &r); err != nil {
		return ReanimationState{}, err
	}
	return r, nil
}
