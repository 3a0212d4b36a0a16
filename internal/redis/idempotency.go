package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyStore caches the first successful response for a
// (subject, Idempotency-Key) pair so retried accept/decline calls do not
// re-enter the dispatch protocol.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *goredis.Client, ttlSeconds int) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func (s *IdempotencyStore) Check(ctx context.Context, subject, key string) ([]byte, bool, error) {
	bytes, err := s.client.Get(ctx, idempotencyKey(subject, key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("check idempotency key: %w", err)
	}
	return bytes, true, nil
}

func (s *IdempotencyStore) Set(ctx context.Context, subject, key string, response []byte) error {
	_, err := s.client.SetNX(ctx, idempotencyKey(subject, key), response, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}

func idempotencyKey(subject, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", subject, key)
}
