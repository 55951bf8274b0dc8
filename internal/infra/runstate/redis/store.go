// Package redis implements ports.RunStateStore on top of go-redis,
// grounded on the teacher's RedisCache/RedisStateStore wrapper —
// generalized from an OAuth-state key namespace to a reanimation-ticket
// one, with a TTL bounding how long a pause can sit unresumed.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/ports"
)

const keyPrefix = "reanimation:"

// Store persists reanimation records as Redis strings with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to addr and pings it, matching the teacher's
// NewRedisCache connection-on-construction behavior. ttl of zero means
// tickets never expire.
func New(addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, boarderrors.New("INTERNAL_ERROR", "failed to connect to redis", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

func (s *Store) key(ticket string) string { return keyPrefix + ticket }

func (s *Store) Save(ctx context.Context, ticket string, rec ports.ReanimationRecord) error {
	if err := s.client.Set(ctx, s.key(ticket), rec.State, s.ttl).Err(); err != nil {
		return boarderrors.New("INTERNAL_ERROR", "failed to save reanimation state", err)
	}
	return s.client.HSet(ctx, s.key(ticket)+":meta", "run_id", rec.RunID, "created", rec.Created).Err()
}

func (s *Store) Load(ctx context.Context, ticket string) (ports.ReanimationRecord, error) {
	data, err := s.client.Get(ctx, s.key(ticket)).Bytes()
	if err != nil {
		return ports.ReanimationRecord{}, boarderrors.UnknownTicket(ticket)
	}
	runID, _ := s.client.HGet(ctx, s.key(ticket)+":meta", "run_id").Result()
	return ports.ReanimationRecord{RunID: runID, State: data}, nil
}

func (s *Store) Delete(ctx context.Context, ticket string) error {
	return s.client.Del(ctx, s.key(ticket), s.key(ticket)+":meta").Err()
}

func (s *Store) Close() error { return s.client.Close() }
