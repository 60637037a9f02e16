package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// IncidentService owns the incident lifecycle: creation, the state-transition
// table, listing and deletion. All mutation of existing records goes through
// the store's conditional write; on a concurrency conflict the caller retries
// from a fresh read, the service never retries internally.
type IncidentService struct {
	incidents   repository.IncidentRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
}

// IncidentDependencies bundles the stores for the lifecycle engine.
type IncidentDependencies struct {
	IncidentRepo   repository.IncidentRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
}

// IncidentCreateInput describes the creation payload.
type IncidentCreateInput struct {
	Description string
	Location    string
	Floor       string
	Category    domain.IncidentCategory
	Severity    domain.IncidentSeverity
}

// IncidentListFilter describes listing filters.
type IncidentListFilter struct {
	Status     string
	Category   string
	Area       string
	AssigneeID string
	ReporterID string
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	return &IncidentService{
		incidents:   deps.IncidentRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Create validates the payload and persists a fresh incident in REPORTED state
// with no assignee.
func (s *IncidentService) Create(ctx context.Context, actor events.Actor, input IncidentCreateInput) (*domain.Incident, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, apperrors.NewValidationError("reporter required", nil)
	}
	if strings.TrimSpace(input.Description) == "" || strings.TrimSpace(input.Location) == "" {
		return nil, apperrors.NewValidationError("description and location required", nil)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("unrecognized category",
			map[string]any{"category": string(input.Category)})
	}
	if !domain.ValidSeverity(input.Severity) {
		return nil, apperrors.NewValidationError("unrecognized severity",
			map[string]any{"severity": string(input.Severity)})
	}

	area, _ := domain.AreaForCategory(input.Category)
	now := time.Now().UTC()
	incident := &domain.Incident{
		ID:          uuid.NewString(),
		ReporterID:  actor.ID,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Floor:       strings.TrimSpace(input.Floor),
		Category:    input.Category,
		Severity:    input.Severity,
		Area:        area,
		Status:      domain.IncidentStatusReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentCreated,
		IncidentID: incident.ID,
		Actor:      actor,
		Payload: events.IncidentCreatedPayload{
			Category: incident.Category,
			Severity: incident.Severity,
			Area:     incident.Area,
			Location: incident.Location,
		},
	})
	return incident, nil
}

// Transition moves an incident to the requested state when, and only when, it
// is the single legal successor of the current state. Jumping a stage or
// moving backward is rejected, never silently corrected. The write is
// conditioned on the state that was read; a concurrent mutation surfaces as a
// conflict the caller must retry from fresh state.
func (s *IncidentService) Transition(ctx context.Context, id string, requested domain.IncidentStatus, actor events.Actor) (*domain.Incident, error) {
	if !domain.ValidStatus(requested) {
		return nil, apperrors.NewValidationError("unrecognized status",
			map[string]any{"status": string(requested)})
	}

	incident, err := s.incidents.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "incident")
	}

	current := incident.Status
	next, ok := domain.NextStatus(current)
	if !ok || requested != next {
		return nil, apperrors.NewInvalidTransition("illegal state transition", map[string]any{
			"current":   string(current),
			"requested": string(requested),
		})
	}

	now := time.Now().UTC()
	incident.Status = requested
	incident.UpdatedAt = now
	if requested == domain.IncidentStatusResolved {
		incident.ResolvedAt = &now
		if actor.ID != "" {
			resolvedBy := actor.ID
			incident.ResolvedBy = &resolvedBy
		}
	}

	if err := s.incidents.UpdateIf(ctx, incident, current); err != nil {
		return nil, mapStoreError(err, "incident")
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentStatusChanged,
		IncidentID: incident.ID,
		Actor:      actor,
		Payload: events.IncidentStatusChangedPayload{
			OldStatus: current,
			NewStatus: requested,
		},
	})
	return incident, nil
}

// Delete removes the incident and its assignment record. Assignment removal
// is a no-op when absent, so a retry of a failed partial delete stays safe.
func (s *IncidentService) Delete(ctx context.Context, id string, actor events.Actor) error {
	incident, err := s.incidents.Get(ctx, id)
	if err != nil {
		return mapStoreError(err, "incident")
	}

	if err := s.incidents.Delete(ctx, id); err != nil {
		return mapStoreError(err, "incident")
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentDeleted,
		IncidentID: id,
		Actor:      actor,
		Payload:    events.IncidentDeletedPayload{LastStatus: incident.Status},
	})
	return nil
}

// Get loads one incident by id.
func (s *IncidentService) Get(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := s.incidents.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "incident")
	}
	return incident, nil
}

// List returns incidents matching the filter, sorted by creation time
// descending.
func (s *IncidentService) List(ctx context.Context, filter IncidentListFilter) ([]domain.Incident, error) {
	repoFilter := repository.IncidentFilter{}
	if filter.Status != "" {
		status := domain.IncidentStatus(filter.Status)
		if !domain.ValidStatus(status) {
			return nil, apperrors.NewValidationError("unrecognized status filter",
				map[string]any{"status": filter.Status})
		}
		repoFilter.Status = &status
	}
	if filter.Category != "" {
		category := domain.IncidentCategory(filter.Category)
		if !domain.ValidCategory(category) {
			return nil, apperrors.NewValidationError("unrecognized category filter",
				map[string]any{"category": filter.Category})
		}
		repoFilter.Category = &category
	}
	if filter.Area != "" {
		repoFilter.Area = &filter.Area
	}
	if filter.AssigneeID != "" {
		repoFilter.AssigneeID = &filter.AssigneeID
	}
	if filter.ReporterID != "" {
		repoFilter.ReporterID = &filter.ReporterID
	}

	incidents, err := s.incidents.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
	return incidents, nil
}

func (s *IncidentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// mapStoreError translates store sentinels into domain errors without leaking
// backend detail.
func mapStoreError(err error, resource string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict("concurrent modification, retry from fresh state", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
