package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/incident-service/internal/domain"
)

// Store-level sentinel errors. Services translate these into domain errors at
// the boundary; using sentinels keeps the redis and in-memory backends
// interchangeable.
var (
	// ErrNotFound is returned when a record keyed by primary key is absent.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write observed a concurrent
	// mutation, or when a uniqueness condition failed.
	ErrConflict = errors.New("conditional write conflict")
)

// IncidentFilter captures listing predicates. All fields are conjunctive; nil
// fields match everything.
type IncidentFilter struct {
	Status     *domain.IncidentStatus
	Category   *domain.IncidentCategory
	Area       *string
	AssigneeID *string
	ReporterID *string
}

// Matches applies the filter predicates to one incident.
func (f IncidentFilter) Matches(inc *domain.Incident) bool {
	if f.Status != nil && inc.Status != *f.Status {
		return false
	}
	if f.Category != nil && inc.Category != *f.Category {
		return false
	}
	if f.Area != nil && inc.Area != *f.Area {
		return false
	}
	if f.AssigneeID != nil {
		if inc.AssigneeID == nil || *inc.AssigneeID != *f.AssigneeID {
			return false
		}
	}
	if f.ReporterID != nil && inc.ReporterID != *f.ReporterID {
		return false
	}
	return true
}

// IncidentRepository encapsulates incident persistence. UpdateIf is the only
// mutation path for existing records: it commits only when the stored status
// still equals expected, surfacing ErrConflict otherwise (optimistic
// concurrency).
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id string) (*domain.Incident, error)
	UpdateIf(ctx context.Context, incident *domain.Incident, expected domain.IncidentStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
}

// UserRepository encapsulates user/worker directory persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// ListWorkers enumerates role=worker accounts serving the given area.
	ListWorkers(ctx context.Context, area string) ([]domain.User, error)
}

// SessionRepository stores opaque session tokens. Tokens are looked up lazily;
// expired entries are rejected by the caller, not removed here.
type SessionRepository interface {
	Put(ctx context.Context, token *domain.SessionToken) error
	Get(ctx context.Context, token string) (*domain.SessionToken, error)
}

// AssignmentRepository stores the incident→worker join records.
type AssignmentRepository interface {
	Put(ctx context.Context, assignment *domain.Assignment) error
	Get(ctx context.Context, incidentID string) (*domain.Assignment, error)
	// Delete is a no-op when the record is absent, so retrying a partial
	// incident delete stays safe.
	Delete(ctx context.Context, incidentID string) error
}

// HistoryRepository appends immutable trail entries.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByIncident(ctx context.Context, incidentID string) ([]domain.HistoryEntry, error)
}
