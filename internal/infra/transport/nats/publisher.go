// Package nats ships harness events to JetStream so an external
// subscriber can follow a run durably. Grounded on the teacher's
// Watermill+NATS publisher/subscriber pair and its stream-bootstrap
// step, generalized from a fixed set of duragraph.* subjects to one
// per harness event kind.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/duragraph/boardgraph/internal/harness"
)

const streamName = "boardgraph-events"

// Publisher fans harness.Events out to a JetStream stream, one subject
// per event kind: boardgraph.events.<kind>.
type Publisher struct {
	publisher *wmnats.Publisher
	logger    watermill.LoggerAdapter
}

func NewPublisher(natsURL string, logger watermill.LoggerAdapter) (*Publisher, error) {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	if err := ensureStream(js); err != nil {
		return nil, err
	}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:       natsURL,
		Marshaler: wmnats.GobMarshaler{},
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Publisher{publisher: pub, logger: logger}, nil
}

// PublishEvent ships one harness.Event to its per-kind subject.
func (p *Publisher) PublishEvent(ctx context.Context, runID string, e harness.Event) error {
	data, err := json.Marshal(envelope{RunID: runID, Event: e})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("boardgraph.events.%s", e.Kind)
	return p.publisher.Publish(subject, message.NewMessage(watermill.NewUUID(), data))
}

// Forward adapts Publisher to harness consumption: it ranges over a
// harness.Stream until it is closed and calls PublishEvent per event,
// logging publish failures. Callers run it on its own goroutine.
func (p *Publisher) Forward(ctx context.Context, runID string, stream *harness.Stream) {
	for e := range stream.Events() {
		if err := p.PublishEvent(ctx, runID, e); err != nil && p.logger != nil {
			p.logger.Error("failed to publish harness event", err, nil)
		}
	}
}

func (p *Publisher) Close() error { return p.publisher.Close() }

type envelope struct {
	RunID string        `json:"run_id"`
	Event harness.Event `json:"event"`
}

func ensureStream(js natsgo.JetStreamContext) error {
	if _, err := js.StreamInfo(streamName); err == nil {
		return nil
	}
	_, err := js.AddStream(&natsgo.StreamConfig{
		Name:     streamName,
		Subjects: []string{"boardgraph.events.>"},
		Storage:  natsgo.FileStorage,
		Replicas: 1,
	})
	return err
}
