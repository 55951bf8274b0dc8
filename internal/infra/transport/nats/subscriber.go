package nats

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Subscriber wraps a Watermill NATS subscriber for consumers that want
// to follow the boardgraph.events.> subject tree.
type Subscriber struct {
	subscriber *wmnats.Subscriber
}

func NewSubscriber(natsURL string, logger watermill.LoggerAdapter) (*Subscriber, error) {
	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:         natsURL,
		Unmarshaler: wmnats.GobMarshaler{},
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Subscriber{subscriber: sub}, nil
}

func (s *Subscriber) Subscribe(ctx context.Context, subject string) (<-chan *message.Message, error) {
	return s.subscriber.Subscribe(ctx, subject)
}

func (s *Subscriber) Close() error { return s.subscriber.Close() }
