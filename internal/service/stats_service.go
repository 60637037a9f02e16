package service

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// IncidentSummary aggregates counters over the current incident population.
type IncidentSummary struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Resolved   int            `json:"resolved"`
	ByStatus   map[string]int `json:"by_status"`
	BySeverity map[string]int `json:"by_severity"`
	ByCategory map[string]int `json:"by_category"`
	ByArea     map[string]int `json:"by_area"`
}

// StatsService computes summary counters by scanning the incident store.
// Counts are a point-in-time snapshot, not transactional.
type StatsService struct {
	incidents repository.IncidentRepository
}

// NewStatsService creates the service.
func NewStatsService(incidents repository.IncidentRepository) *StatsService {
	return &StatsService{incidents: incidents}
}

// Summary returns aggregate counters across all incidents.
func (s *StatsService) Summary(ctx context.Context) (*IncidentSummary, error) {
	incidents, err := s.incidents.List(ctx, repository.IncidentFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	summary := &IncidentSummary{
		ByStatus:   make(map[string]int),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
		ByArea:     make(map[string]int),
	}
	for _, incident := range incidents {
		summary.Total++
		if incident.Status == domain.IncidentStatusResolved {
			summary.Resolved++
		} else {
			summary.Active++
		}
		summary.ByStatus[string(incident.Status)]++
		summary.BySeverity[string(incident.Severity)]++
		summary.ByCategory[string(incident.Category)]++
		summary.ByArea[incident.Area]++
	}
	return summary, nil
}
