package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "procsight:progress:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Store backed by Redis. Snapshots expire after ttl
// so abandoned runs do not accumulate.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Set(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal progress snapshot: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+snap.RunID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store progress snapshot: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, runID string) (Snapshot, error) {
	payload, err := s.client.Get(ctx, keyPrefix+runID).Bytes()
	if err == redis.Nil {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load progress snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode progress snapshot: %w", err)
	}
	return snap, nil
}

func (s *redisStore) Delete(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, keyPrefix+runID).Err(); err != nil {
		return fmt.Errorf("delete progress snapshot: %w", err)
	}
	return nil
}
