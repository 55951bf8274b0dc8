package board

import "context"

// Repository persists Board aggregates, grounded on the teacher's
// GraphRepository shape.
type Repository interface {
	Save(ctx context.Context, b *Board) error
	FindByID(ctx context.Context, id string) (*Board, error)
	Update(ctx context.Context, b *Board) error
	Delete(ctx context.Context, id string) error
}
