package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/incident-service/internal/domain"
)

const sessionKeyPrefix = "session:"

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository builds the redis-backed session token store. Expiry is
// enforced lazily by the auth layer, so records are written without a TTL and
// an expired token still resolves here.
func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Put(ctx context.Context, token *domain.SessionToken) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(token.Token), payload, 0).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*domain.SessionToken, error) {
	raw, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session domain.SessionToken
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
