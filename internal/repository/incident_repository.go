package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/incident-service/internal/domain"
)

const incidentKeyPrefix = "incident:"

func incidentKey(id string) string {
	return incidentKeyPrefix + id
}

type incidentRepository struct {
	client *redis.Client
}

// NewIncidentRepository builds the redis-backed incident store. Records are
// JSON values keyed by incident id; conditional updates run inside a WATCH
// transaction so that a concurrent mutation aborts the write.
func NewIncidentRepository(client *redis.Client) IncidentRepository {
	return &incidentRepository{client: client}
}

func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	payload, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("marshal incident: %w", err)
	}
	ok, err := r.client.SetNX(ctx, incidentKey(incident.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store incident: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (r *incidentRepository) Get(ctx context.Context, id string) (*domain.Incident, error) {
	raw, err := r.client.Get(ctx, incidentKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load incident: %w", err)
	}
	var incident domain.Incident
	if err := json.Unmarshal(raw, &incident); err != nil {
		return nil, fmt.Errorf("decode incident: %w", err)
	}
	return &incident, nil
}

// UpdateIf writes the incident only while the stored record still carries the
// expected status. The WATCH/MULTI pair gives single-item compare-and-swap:
// if another caller mutated the key between read and EXEC the transaction
// fails and ErrConflict is returned.
func (r *incidentRepository) UpdateIf(ctx context.Context, incident *domain.Incident, expected domain.IncidentStatus) error {
	key := incidentKey(incident.ID)
	payload, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("marshal incident: %w", err)
	}

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load incident: %w", err)
		}
		var current domain.Incident
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode incident: %w", err)
		}
		if current.Status != expected {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func (r *incidentRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, incidentKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// List performs a full scan with in-memory predicate filtering. Acceptable at
// this system's scale; an indexed backend may substitute as long as filter
// semantics are preserved.
func (r *incidentRepository) List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	var result []domain.Incident
	iter := r.client.Scan(ctx, 0, incidentKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load incident: %w", err)
		}
		var incident domain.Incident
		if err := json.Unmarshal(raw, &incident); err != nil {
			return nil, fmt.Errorf("decode incident: %w", err)
		}
		if filter.Matches(&incident) {
			result = append(result, incident)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan incidents: %w", err)
	}
	return result, nil
}
