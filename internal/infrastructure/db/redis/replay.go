package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	replayTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold a key.
	pendingTTL   = time.Minute
	pendingValue = "pending"
)

// ReplayStore remembers the createid produced for an Idempotency-Key.
// Key format: replay:task:<user_id>:<idempotency_key>
// The value is "pending" from Reserve until Remember stores the createid.
type ReplayStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayStore creates a ReplayStore wrapping the given Redis client.
func NewReplayStore(client *redis.Client) *ReplayStore {
	return &ReplayStore{client: client, ttl: replayTTL}
}

// Reserve claims key with SETNX. When the key is already held it returns
// the stored createid, or 0 while the holder is still pending.
func (s *ReplayStore) Reserve(ctx context.Context, key string) (int64, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), pendingValue, pendingTTL).Result()
	if err != nil {
		return 0, false, fmt.Errorf("replay reserve: %w", err)
	}
	if ok {
		return 0, true, nil
	}

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) || v == pendingValue {
		// Expired between SETNX and GET, or still running: caller retries.
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("replay reserve: %w", err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("replay reserve: corrupt value %q: %w", v, err)
	}
	return id, false, nil
}

// Remember replaces the reservation with createID for replayTTL.
func (s *ReplayStore) Remember(ctx context.Context, key string, createID int64) error {
	return s.client.Set(ctx, s.key(key), strconv.FormatInt(createID, 10), s.ttl).Err()
}

// Release drops a reservation whose create failed so the key can be retried.
func (s *ReplayStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *ReplayStore) key(key string) string {
	return "replay:task:" + key
}
