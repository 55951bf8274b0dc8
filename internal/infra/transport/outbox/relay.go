package outbox

import (
	"context"
	"log"
	"time"

	"github.com/duragraph/boardgraph/internal/harness"
)

// Publisher is the subset of nats.Publisher the relay depends on, kept
// narrow so it can be tested against a fake instead of a live broker.
type Publisher interface {
	PublishEvent(ctx context.Context, runID string, e harness.Event) error
}

// Relay polls the outbox table and republishes rows that haven't made
// it to NATS yet, grounded on the teacher's outbox_relay.go polling
// loop (interval tick, batch fetch, per-row publish-then-mark).
type Relay struct {
	Outbox    *Outbox
	Publisher Publisher
	Interval  time.Duration
	BatchSize int
}

func NewRelay(ob *Outbox, pub Publisher) *Relay {
	return &Relay{Outbox: ob, Publisher: pub, Interval: time.Second, BatchSize: 100}
}

// Run polls until ctx is cancelled. Each tick fetches one batch of
// unpublished rows and publishes them in order; a row that fails to
// publish is marked failed with backoff and retried on a later tick,
// so a stuck broker never blocks the rest of the batch indefinitely.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Relay) tick(ctx context.Context) {
	msgs, err := r.Outbox.GetUnpublished(ctx, r.BatchSize)
	if err != nil {
		log.Printf("outbox relay: fetch failed: %v", err)
		return
	}
	for _, m := range msgs {
		if err := r.Publisher.PublishEvent(ctx, m.RunID, m.Event); err != nil {
			log.Printf("outbox relay: publish failed for message %d: %v", m.ID, err)
			if markErr := r.Outbox.MarkFailed(ctx, m.ID, err.Error()); markErr != nil {
				log.Printf("outbox relay: mark-failed failed for message %d: %v", m.ID, markErr)
			}
			continue
		}
		if err := r.Outbox.MarkPublished(ctx, m.ID); err != nil {
			log.Printf("outbox relay: mark-published failed for message %d: %v", m.ID, err)
		}
	}
}
