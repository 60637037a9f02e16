package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// CreateIncidentRequest payload.
type CreateIncidentRequest struct {
	Description string                  `json:"description"`
	Location    string                  `json:"location"`
	Floor       string                  `json:"floor"`
	Category    domain.IncidentCategory `json:"category"`
	Severity    domain.IncidentSeverity `json:"severity"`
}

// UpdateStatusRequest payload for lifecycle transitions.
type UpdateStatusRequest struct {
	Status domain.IncidentStatus `json:"status"`
}

// AssignIncidentRequest payload. WorkerID is optional; when empty the
// matcher picks an available worker for the mapped area.
type AssignIncidentRequest struct {
	WorkerID string `json:"worker_id"`
}

// IncidentResponse provides full incident info.
type IncidentResponse struct {
	ID          string                  `json:"id"`
	ReporterID  string                  `json:"reporter_id"`
	Description string                  `json:"description"`
	Location    string                  `json:"location"`
	Floor       string                  `json:"floor"`
	Category    domain.IncidentCategory `json:"category"`
	Severity    domain.IncidentSeverity `json:"severity"`
	Area        string                  `json:"area"`
	Status      domain.IncidentStatus   `json:"status"`
	AssigneeID  *string                 `json:"assignee_id"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	ResolvedAt  *time.Time              `json:"resolved_at,omitempty"`
	ResolvedBy  *string                 `json:"resolved_by,omitempty"`
}

// HistoryEntryResponse represents one trail record.
type HistoryEntryResponse struct {
	ID        int64                  `json:"id"`
	ChangedAt time.Time              `json:"changed_at"`
	OldStatus *domain.IncidentStatus `json:"old_status,omitempty"`
	NewStatus domain.IncidentStatus  `json:"new_status"`
	Reason    domain.HistoryReason   `json:"reason"`
	ActorID   *string                `json:"actor_id,omitempty"`
}

// NewIncidentResponse maps a domain incident.
func NewIncidentResponse(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          incident.ID,
		ReporterID:  incident.ReporterID,
		Description: incident.Description,
		Location:    incident.Location,
		Floor:       incident.Floor,
		Category:    incident.Category,
		Severity:    incident.Severity,
		Area:        incident.Area,
		Status:      incident.Status,
		AssigneeID:  incident.AssigneeID,
		CreatedAt:   incident.CreatedAt,
		UpdatedAt:   incident.UpdatedAt,
		ResolvedAt:  incident.ResolvedAt,
		ResolvedBy:  incident.ResolvedBy,
	}
}

// NewIncidentResponses maps a slice of domain incidents.
func NewIncidentResponses(incidents []domain.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(incidents))
	for i := range incidents {
		out = append(out, NewIncidentResponse(&incidents[i]))
	}
	return out
}

// NewHistoryEntryResponses maps trail records.
func NewHistoryEntryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			ID:        entry.ID,
			ChangedAt: entry.ChangedAt,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			Reason:    entry.Reason,
			ActorID:   entry.ActorID,
		})
	}
	return out
}
