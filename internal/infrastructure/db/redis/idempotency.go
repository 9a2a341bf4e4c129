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
	idempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed holder blocks its key.
	pendingTTL   = 30 * time.Second
	pendingValue = "pending"
)

// IdempotencyStore maps Idempotency-Key headers to the course they created.
// Key format: idem:course:<key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve claims key with SETNX. A held key reads back as pendingValue
// until Remember stores the course id.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, int64, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), pendingValue, pendingTTL).Result()
	if err != nil {
		return false, 0, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; the next Reserve can claim it.
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("idempotency reserve: %w", err)
	}
	if v == pendingValue {
		return false, 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false, 0, fmt.Errorf("idempotency reserve: corrupt value %q", v)
	}
	return false, id, nil
}

// Remember records that key created courseID (expires after idempotencyTTL).
func (s *IdempotencyStore) Remember(ctx context.Context, key string, courseID int64) error {
	return s.client.Set(ctx, s.key(key), strconv.FormatInt(courseID, 10), idempotencyTTL).Err()
}

// Release deletes a claim so a failed create can be retried with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *IdempotencyStore) key(key string) string {
	return "idem:course:" + key
}
