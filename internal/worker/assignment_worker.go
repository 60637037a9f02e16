package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// Assigner runs the matching flow for one incident.
type Assigner interface {
	Assign(ctx context.Context, incidentID string) (*domain.Assignment, error)
}

// AssignmentSweeper periodically retries assignment for incidents still in
// REPORTED state, picking up reports that found no eligible worker at
// creation time.
type AssignmentSweeper struct {
	incidents repository.IncidentRepository
	assigner  Assigner
	logger    *zap.Logger
	interval  time.Duration
}

// NewAssignmentSweeper constructs the sweeper.
func NewAssignmentSweeper(incidents repository.IncidentRepository, assigner Assigner, logger *zap.Logger, interval time.Duration) *AssignmentSweeper {
	return &AssignmentSweeper{
		incidents: incidents,
		assigner:  assigner,
		logger:    logger,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (s *AssignmentSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("assignment sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("assignment sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep attempts assignment for every reported incident. Retriable
// conditions are logged and left for the next tick.
func (s *AssignmentSweeper) Sweep(ctx context.Context) {
	reported := domain.IncidentStatusReported
	incidents, err := s.incidents.List(ctx, repository.IncidentFilter{Status: &reported})
	if err != nil {
		s.logger.Warn("sweep listing failed", zap.Error(err))
		return
	}

	assigned := 0
	for i := range incidents {
		if _, err := s.assigner.Assign(ctx, incidents[i].ID); err != nil {
			switch apperrors.CodeOf(err) {
			case apperrors.CodeNoEligibleWorker, apperrors.CodeConflict, apperrors.CodeNotFound:
				s.logger.Debug("incident left for next sweep",
					zap.String("incident_id", incidents[i].ID),
					zap.String("code", apperrors.CodeOf(err)))
			default:
				s.logger.Warn("sweep assignment failed",
					zap.String("incident_id", incidents[i].ID),
					zap.Error(err))
			}
			continue
		}
		assigned++
	}
	if assigned > 0 {
		s.logger.Info("sweep assigned incidents", zap.Int("count", assigned))
	}
}
