package events

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated       EventType = "incident_created"
	EventIncidentAssigned      EventType = "incident_assigned"
	EventIncidentStatusChanged EventType = "incident_status_changed"
	EventIncidentDeleted       EventType = "incident_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role domain.Role `json:"role"`
	ID   string      `json:"id"`
}

// Event represents a domain event emitted by services. Emission is
// fire-and-forget: handler failures are logged by the dispatcher and never
// surfaced to the publisher.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID string      `json:"incident_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	Category domain.IncidentCategory `json:"category"`
	Severity domain.IncidentSeverity `json:"severity"`
	Area     string                  `json:"area"`
	Location string                  `json:"location"`
}

// IncidentAssignedPayload payload.
type IncidentAssignedPayload struct {
	WorkerID   string    `json:"worker_id"`
	Area       string    `json:"area"`
	AssignedAt time.Time `json:"assigned_at"`
}

// IncidentStatusChangedPayload payload.
type IncidentStatusChangedPayload struct {
	OldStatus domain.IncidentStatus `json:"old_status"`
	NewStatus domain.IncidentStatus `json:"new_status"`
}

// IncidentDeletedPayload payload.
type IncidentDeletedPayload struct {
	LastStatus domain.IncidentStatus `json:"last_status"`
}
