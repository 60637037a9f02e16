package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// DefaultCapacityCap is the open-assignment count at which a worker stops
// being considered available.
const DefaultCapacityCap = 3

// AssignmentService binds unassigned incidents to eligible workers. The
// capacity check is advisory: the worker scan is not transactional, so two
// concurrent assignments of different incidents may both pick the same
// worker. The "at most one assignment per incident" invariant, by contrast,
// rests on the store's conditional write and does hold.
type AssignmentService struct {
	incidents   repository.IncidentRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	capacityCap int
}

// AssignmentDependencies bundles the stores for the matcher.
type AssignmentDependencies struct {
	IncidentRepo   repository.IncidentRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	CapacityCap    int
}

// NewAssignmentService constructs the matcher.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	cap := deps.CapacityCap
	if cap <= 0 {
		cap = DefaultCapacityCap
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		incidents:   deps.IncidentRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		capacityCap: cap,
	}
}

// Assign matches the incident to the first eligible worker with available
// capacity and commits the ASSIGNED transition with a conditional write.
func (s *AssignmentService) Assign(ctx context.Context, incidentID string) (*domain.Assignment, error) {
	incident, err := s.incidents.Get(ctx, incidentID)
	if err != nil {
		return nil, mapStoreError(err, "incident")
	}
	if err := s.requireAssignable(incident); err != nil {
		return nil, err
	}

	area, ok := domain.AreaForCategory(incident.Category)
	if !ok {
		return nil, apperrors.NewUnmappedCategory(string(incident.Category))
	}

	workers, err := s.users.ListWorkers(ctx, area)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(workers) == 0 {
		return nil, apperrors.NewNoEligibleWorker(area)
	}

	worker, err := s.pickAvailable(ctx, workers)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, apperrors.NewNoEligibleWorker(area)
	}

	return s.commit(ctx, incident, worker, area)
}

// AssignToWorker binds the incident to a specific worker, used by the admin
// endpoint when the caller names a target instead of letting the matcher
// choose.
func (s *AssignmentService) AssignToWorker(ctx context.Context, incidentID, workerID string) (*domain.Assignment, error) {
	incident, err := s.incidents.Get(ctx, incidentID)
	if err != nil {
		return nil, mapStoreError(err, "incident")
	}
	if err := s.requireAssignable(incident); err != nil {
		return nil, err
	}

	area, ok := domain.AreaForCategory(incident.Category)
	if !ok {
		return nil, apperrors.NewUnmappedCategory(string(incident.Category))
	}

	worker, err := s.users.Get(ctx, workerID)
	if err != nil {
		return nil, mapStoreError(err, "worker")
	}
	if worker.Role != domain.RoleWorker {
		return nil, apperrors.NewValidationError("user is not a worker",
			map[string]any{"worker_id": workerID})
	}
	if worker.Area != area {
		return nil, apperrors.NewValidationError("worker area does not match incident area",
			map[string]any{"worker_area": worker.Area, "incident_area": area})
	}

	return s.commit(ctx, incident, worker, area)
}

// requireAssignable rejects incidents that are not freshly reported: an
// already-assigned incident is a conflict, a resolved one an invalid state.
func (s *AssignmentService) requireAssignable(incident *domain.Incident) error {
	switch incident.Status {
	case domain.IncidentStatusReported:
		return nil
	case domain.IncidentStatusAssigned:
		details := map[string]any{}
		if incident.AssigneeID != nil {
			details["assignee_id"] = *incident.AssigneeID
		}
		return apperrors.NewConflict("incident already assigned", details)
	default:
		return apperrors.NewInvalidState("incident is not assignable in its current state",
			map[string]any{"status": string(incident.Status)})
	}
}

// pickAvailable returns the first worker with fewer open assignments than the
// cap. Selection order among available workers is unspecified; first found
// wins. The count is a fresh scan per worker, advisory only.
func (s *AssignmentService) pickAvailable(ctx context.Context, workers []domain.User) (*domain.User, error) {
	assigned := domain.IncidentStatusAssigned
	for i := range workers {
		email := workers[i].Email
		open, err := s.incidents.List(ctx, repository.IncidentFilter{
			Status:     &assigned,
			AssigneeID: &email,
		})
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if len(open) < s.capacityCap {
			return &workers[i], nil
		}
	}
	return nil, nil
}

func (s *AssignmentService) commit(ctx context.Context, incident *domain.Incident, worker *domain.User, area string) (*domain.Assignment, error) {
	now := time.Now().UTC()
	previous := incident.Status
	incident.AssigneeID = &worker.Email
	incident.Status = domain.IncidentStatusAssigned
	incident.UpdatedAt = now

	if err := s.incidents.UpdateIf(ctx, incident, previous); err != nil {
		return nil, mapStoreError(err, "incident")
	}

	assignment := &domain.Assignment{
		IncidentID: incident.ID,
		WorkerID:   worker.Email,
		Area:       area,
		AssignedAt: now,
	}
	if err := s.assignments.Put(ctx, assignment); err != nil {
		// The incident record is authoritative and already committed; a
		// failed join-record write degrades queries but must not undo the
		// assignment.
		s.logger.Error("assignment record write failed after commit",
			zap.String("incident_id", incident.ID),
			zap.String("worker_id", worker.Email),
			zap.Error(err))
	}

	s.publishAssigned(ctx, assignment)
	return assignment, nil
}

// publishAssigned is fire-and-forget: a failed emission is a degraded
// condition, never a rollback of the committed assignment.
func (s *AssignmentService) publishAssigned(ctx context.Context, assignment *domain.Assignment) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventIncidentAssigned,
		IncidentID: assignment.IncidentID,
		Actor:      events.Actor{Role: domain.RoleWorker, ID: assignment.WorkerID},
		Timestamp:  time.Now().UTC(),
		Payload: events.IncidentAssignedPayload{
			WorkerID:   assignment.WorkerID,
			Area:       assignment.Area,
			AssignedAt: assignment.AssignedAt,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("assignment event emission failed",
			zap.String("incident_id", assignment.IncidentID),
			zap.Error(err))
	}
}
