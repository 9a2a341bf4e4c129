package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/learnhub/course-portal/internal/core/domain"
)

const defaultSessionTTL = 12 * time.Hour

// SessionStore keeps sessions in Redis under an opaque random token.
// Key format: session:<token>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore whose entries expire after ttl.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Create stores s and returns the token that identifies it.
func (st *SessionStore) Create(ctx context.Context, s domain.Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	token := uuid.NewString()
	if err := st.client.Set(ctx, st.key(token), payload, st.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get loads the session for token, or domain.ErrNoSession.
func (st *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNoSession
	}
	payload, err := st.client.Get(ctx, st.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Delete removes the session. Deleting an unknown token is not an error.
func (st *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return st.client.Del(ctx, st.key(token)).Err()
}

func (st *SessionStore) key(token string) string {
	return "session:" + token
}
