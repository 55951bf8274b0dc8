// Package outbox gives the NATS sink at-least-once delivery across a
// process restart: harness events are written to a Postgres table as
// they are forwarded, and a relay polls and publishes them separately. Grounded on the teacher's
// outbox.go + outbox_relay.go, narrowed from a generic aggregate-event
// outbox to one carrying harness.Event envelopes.
package outbox

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duragraph/boardgraph/internal/harness"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
)

// Message is one row of the outbox table:
//
//	CREATE TABLE event_outbox (
//	    id            BIGSERIAL PRIMARY KEY,
//	    run_id        TEXT NOT NULL,
//	    event         JSONB NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    published     BOOLEAN NOT NULL DEFAULT false,
//	    published_at  TIMESTAMPTZ,
//	    attempts      INT NOT NULL DEFAULT 0,
//	    next_retry_at TIMESTAMPTZ
//	);
type Message struct {
	ID      int64
	RunID   string
	Event   harness.Event
	Created time.Time
}

type Outbox struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Outbox { return &Outbox{pool: pool} }

// Append writes one harness.Event to the outbox with a single insert
// on the pool. It does not join a caller's transaction.
func (o *Outbox) Append(ctx context.Context, runID string, e harness.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = o.pool.Exec(ctx, `
		INSERT INTO event_outbox (run_id, event) VALUES ($1, $2)
	`, runID, data)
	if err != nil {
		return boarderrors.New("INTERNAL_ERROR", "failed to append to outbox", err)
	}
	return nil
}

func (o *Outbox) GetUnpublished(ctx context.Context, limit int) ([]Message, error) {
	rows, err := o.pool.Query(ctx, `
		SELECT id, run_id, event, created_at FROM event_outbox
		WHERE NOT published AND (next_retry_at IS NULL OR next_retry_at <= now())
		ORDER BY created_at ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, boarderrors.New("INTERNAL_ERROR", "failed to query outbox", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var raw []byte
		if err := rows.Scan(&m.ID, &m.RunID, &raw, &m.Created); err != nil {
			return nil, boarderrors.New("INTERNAL_ERROR", "failed to scan outbox row", err)
		}
		if err := json.Unmarshal(raw, &m.Event); err != nil {
			return nil, boarderrors.New("INTERNAL_ERROR", "failed to unmarshal outbox event", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (o *Outbox) MarkPublished(ctx context.Context, id int64) error {
	_, err := o.pool.Exec(ctx, `UPDATE event_outbox SET published = true, published_at = now() WHERE id = $1`, id)
	return err
}

func (o *Outbox) MarkFailed(ctx context.Context, id int64, reason string) error {
	var attempts int
	if err := o.pool.QueryRow(ctx, `SELECT attempts FROM event_outbox WHERE id = $1`, id).Scan(&attempts); err != nil {
		return err
	}
	backoff := time.Duration(1<<attempts) * time.Minute
	if backoff > time.Hour {
		backoff = time.Hour
	}
	_, err := o.pool.Exec(ctx, `
		UPDATE event_outbox SET attempts = attempts + 1, next_retry_at = $1 WHERE id = $2
	`, time.Now().Add(backoff), id)
	return err
}

// Cleanup deletes published rows older than retentionDays.
func (o *Outbox) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := o.pool.Exec(ctx, `
		DELETE FROM event_outbox WHERE published AND published_at < now() - make_interval(days => $1)
	`, retentionDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Forward appends every event off stream to the outbox under runID,
// giving the eventual NATS publish at-least-once delivery across a
// process restart instead of the fire-and-forget in-memory forward a
// bare Publisher.Forward gives.
func (o *Outbox) Forward(ctx context.Context, runID string, stream *harness.Stream) {
	for e := range stream.Events() {
		if err := o.Append(ctx, runID, e); err != nil {
			log.Printf("outbox: failed to append event: %v", err)
		}
	}
}
