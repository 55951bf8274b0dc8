// Package postgres implements ports.DataStore: large blob values (a
// node output too big to carry inline through the harness stream, e.g.
// a file body or a multi-megabyte document) are substituted at a graph
// boundary for a reference key, stored here, and resolved back by the
// caller. Grounded on persistence/postgres/db.go's pool config plus
// event_store.go's append-only blob-column pattern.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/pkg/idgen"
)

// Store persists opaque blobs in a data_blobs table:
//
//	CREATE TABLE data_blobs (
//	    key        TEXT PRIMARY KEY,
//	    data       BYTEA NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	key := idgen.New()
	_, err := s.pool.Exec(ctx, `INSERT INTO data_blobs (key, data) VALUES ($1, $2)`, key, data)
	if err != nil {
		return "", boarderrors.New("INTERNAL_ERROR", "failed to put blob", err)
	}
	return key, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM data_blobs WHERE key = $1`, key).Scan(&data)
	if err != nil {
		return nil, boarderrors.NotFound("blob", key)
	}
	return data, nil
}
