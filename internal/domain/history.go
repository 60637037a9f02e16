package domain

import "time"

// HistoryReason captures why a trail entry was recorded.
type HistoryReason string

const (
	HistoryReasonCreated      HistoryReason = "CREATED"
	HistoryReasonAssigned     HistoryReason = "ASSIGNED"
	HistoryReasonStatusChange HistoryReason = "STATUS_CHANGE"
	HistoryReasonDeleted      HistoryReason = "DELETED"
)

// HistoryEntry is an immutable trail record, one per lifecycle event, keyed by
// (incident id, changed-at).
type HistoryEntry struct {
	ID         int64          `json:"id"`
	IncidentID string         `json:"incident_id"`
	ChangedAt  time.Time      `json:"changed_at"`
	OldStatus  *IncidentStatus `json:"old_status,omitempty"`
	NewStatus  IncidentStatus `json:"new_status"`
	Reason     HistoryReason  `json:"reason"`
	ActorID    *string        `json:"actor_id,omitempty"`
}
