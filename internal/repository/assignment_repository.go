package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/incident-service/internal/domain"
)

const assignmentKeyPrefix = "assignment:"

func assignmentKey(incidentID string) string {
	return assignmentKeyPrefix + incidentID
}

type assignmentRepository struct {
	client *redis.Client
}

// NewAssignmentRepository builds the redis-backed assignment join store keyed
// by incident id.
func NewAssignmentRepository(client *redis.Client) AssignmentRepository {
	return &assignmentRepository{client: client}
}

func (r *assignmentRepository) Put(ctx context.Context, assignment *domain.Assignment) error {
	payload, err := json.Marshal(assignment)
	if err != nil {
		return fmt.Errorf("marshal assignment: %w", err)
	}
	if err := r.client.Set(ctx, assignmentKey(assignment.IncidentID), payload, 0).Err(); err != nil {
		return fmt.Errorf("store assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepository) Get(ctx context.Context, incidentID string) (*domain.Assignment, error) {
	raw, err := r.client.Get(ctx, assignmentKey(incidentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	var assignment domain.Assignment
	if err := json.Unmarshal(raw, &assignment); err != nil {
		return nil, fmt.Errorf("decode assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, incidentID string) error {
	if err := r.client.Del(ctx, assignmentKey(incidentID)).Err(); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
