package domain

import "time"

// Assignment binds one incident to at most one worker. The incident record's
// assignee field is authoritative; this record is the queryable join written
// alongside the ASSIGNED transition and removed when the incident is deleted.
type Assignment struct {
	IncidentID string    `json:"incident_id"`
	WorkerID   string    `json:"worker_id"`
	Area       string    `json:"area"`
	AssignedAt time.Time `json:"assigned_at"`
}
