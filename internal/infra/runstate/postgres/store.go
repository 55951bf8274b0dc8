// Package postgres implements ports.RunStateStore on top of a pgx pool,
// grounded on the teacher's checkpoint_repository.go (upsert-by-natural-
// key, JSON-marshaled payload column) — generalized from a checkpoint's
// thread/namespace/id triple to a single opaque ticket string.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/ports"
)

// Store persists reanimation records in a reanimation_states table:
//
//	CREATE TABLE reanimation_states (
//	    ticket       TEXT PRIMARY KEY,
//	    run_id       TEXT NOT NULL,
//	    state        JSONB NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
//
// golang-migrate owns this schema; the migration lives under
// internal/infra/migrate/migrations/.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Save(ctx context.Context, ticket string, rec ports.ReanimationRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reanimation_states (ticket, run_id, state, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticket) DO UPDATE SET state = EXCLUDED.state
	`, ticket, rec.RunID, rec.State, time.Unix(rec.Created, 0))
	if err != nil {
		return boarderrors.New("INTERNAL_ERROR", "failed to save reanimation state", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, ticket string) (ports.ReanimationRecord, error) {
	var rec ports.ReanimationRecord
	var created time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT run_id, state, created_at FROM reanimation_states WHERE ticket = $1
	`, ticket).Scan(&rec.RunID, &rec.State, &created)
	if err != nil {
		return ports.ReanimationRecord{}, boarderrors.UnknownTicket(ticket)
	}
	rec.Created = created.Unix()
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, ticket string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM reanimation_states WHERE ticket = $1`, ticket)
	if err != nil {
		return boarderrors.New("INTERNAL_ERROR", "failed to delete reanimation state", err)
	}
	return nil
}

// NewPool mirrors the teacher's persistence/postgres.NewPool: a small
// convenience wrapper so cmd/boardrun doesn't hand-roll pgxpool setup.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, boarderrors.New("INTERNAL_ERROR", "failed to parse postgres dsn", err)
	}
	cfg.MaxConns = 25
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, boarderrors.New("INTERNAL_ERROR", "failed to create postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, boarderrors.New("INTERNAL_ERROR", "failed to ping postgres", err)
	}
	return pool, nil
}
