package board

import (
	"time"

	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/pkg/eventbus"
	"github.com/duragraph/boardgraph/internal/pkg/idgen"
)

// Board is the aggregate wrapper around a Descriptor: identity, name,
// and the authoring history an embedding system persists even though
// the traversal machine only ever reads the Descriptor it points to.
type Board struct {
	id         string
	name       string
	descriptor *Descriptor
	createdAt  time.Time
	updatedAt  time.Time

	events []eventbus.Event
}

// NewBoard validates the descriptor and constructs a new Board
// aggregate, recording a BoardDefined event.
func NewBoard(name string, descriptor *Descriptor) (*Board, error) {
	if name == "" {
		return nil, boarderrors.InvalidInput("name", "name is required")
	}
	if descriptor == nil {
		return nil, boarderrors.InvalidInput("descriptor", "descriptor is required")
	}
	if err := descriptor.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	id := idgen.New()
	b := &Board{
		id:         id,
		name:       name,
		descriptor: descriptor,
		createdAt:  now,
		updatedAt:  now,
	}
	b.recordEvent(BoardDefined{BoardID: id, Name: name, Descriptor: descriptor, OccurredAt: now})
	return b, nil
}

func (b *Board) ID() string             { return b.id }
func (b *Board) Name() string           { return b.name }
func (b *Board) Descriptor() *Descriptor { return b.descriptor }
func (b *Board) CreatedAt() time.Time   { return b.createdAt }
func (b *Board) UpdatedAt() time.Time   { return b.updatedAt }

// Update replaces the board's descriptor after revalidating it.
func (b *Board) Update(descriptor *Descriptor) error {
	if descriptor == nil {
		return boarderrors.InvalidInput("descriptor", "descriptor is required")
	}
	if err := descriptor.Validate(); err != nil {
		return err
	}
	b.descriptor = descriptor
	b.updatedAt = time.Now()
	b.recordEvent(BoardUpdated{BoardID: b.id, Descriptor: descriptor, OccurredAt: b.updatedAt})
	return nil
}

func (b *Board) Events() []eventbus.Event { return b.events }
func (b *Board) ClearEvents()             { b.events = nil }

func (b *Board) recordEvent(e eventbus.Event) { b.events = append(b.events, e) }
