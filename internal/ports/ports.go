// Package ports declares the external collaborator interfaces the board
// engine depends on but does not implement: resolving a board URL to a
// Descriptor, persisting reanimation state across a pause, and
// substituting large blobs at graph boundaries. Concrete adapters live
// under internal/infra.
package ports

import (
	"context"

	"github.com/duragraph/boardgraph/internal/board"
)

// Loader resolves a graph-valued handler type (a URL-like string) to a
// Descriptor. base is the URL the referencing board was itself loaded
// from, used to resolve relative references.
type Loader interface {
	Load(ctx context.Context, urlLike, base string) (*board.Descriptor, error)
}

// ReanimationRecord is the opaque-to-the-store payload a RunStateStore
// persists under a single-use ticket.
type ReanimationRecord struct {
	RunID   string
	State   []byte // json-encoded lifecycle.ReanimationState
	Created int64  // unix seconds, for TTL/sweep bookkeeping
}

// RunStateStore persists and retrieves reanimation state keyed by an
// opaque, single-use ticket. Load must not return the same ticket's
// record twice once Delete has been called for it; callers are expected
// to delete a ticket immediately after a successful resume.
type RunStateStore interface {
	Save(ctx context.Context, ticket string, rec ReanimationRecord) error
	Load(ctx context.Context, ticket string) (ReanimationRecord, error)
	Delete(ctx context.Context, ticket string) error
}

// DataStore substitutes large values crossing a graph boundary with a
// small handle, so event payloads and reanimation state stay bounded.
type DataStore interface {
	Put(ctx context.Context, data []byte) (handle string, err error)
	Get(ctx context.Context, handle string) ([]byte, error)
}
