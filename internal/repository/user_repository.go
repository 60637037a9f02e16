package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/incident-service/internal/domain"
)

const userKeyPrefix = "user:"

func userKey(email string) string {
	return userKeyPrefix + email
}

type userRepository struct {
	client *redis.Client
}

// NewUserRepository builds the redis-backed user directory keyed by email.
func NewUserRepository(client *redis.Client) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	ok, err := r.client.SetNX(ctx, userKey(user.Email), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, email string) (*domain.User, error) {
	raw, err := r.client.Get(ctx, userKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	// XX: only overwrite an existing record.
	ok, err := r.client.SetXX(ctx, userKey(user.Email), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ListWorkers(ctx context.Context, area string) ([]domain.User, error) {
	var result []domain.User
	iter := r.client.Scan(ctx, 0, userKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		var user domain.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if user.Role == domain.RoleWorker && user.Area == area {
			result = append(result, user)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return result, nil
}
