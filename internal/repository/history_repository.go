package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// ErrTrailDisabled is returned when no postgres pool was configured.
var ErrTrailDisabled = errors.New("history trail store not configured")

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds the postgres-backed append-only trail store.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	if r.pool == nil {
		return ErrTrailDisabled
	}
	const query = `
        INSERT INTO incident_history (incident_id, changed_at, old_status, new_status, reason, actor_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.IncidentID,
		entry.ChangedAt,
		entry.OldStatus,
		entry.NewStatus,
		entry.Reason,
		entry.ActorID,
	).Scan(&entry.ID)
}

func (r *historyRepository) ListByIncident(ctx context.Context, incidentID string) ([]domain.HistoryEntry, error) {
	if r.pool == nil {
		return nil, ErrTrailDisabled
	}
	const query = `
        SELECT id, incident_id, changed_at, old_status, new_status, reason, actor_id
        FROM incident_history WHERE incident_id=$1 ORDER BY changed_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.IncidentID,
			&entry.ChangedAt,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Reason,
			&entry.ActorID,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
