package domain

import "time"

// IncidentStatus enumerates the three lifecycle states of an incident.
type IncidentStatus string

const (
	IncidentStatusReported IncidentStatus = "REPORTED"
	IncidentStatusAssigned IncidentStatus = "ASSIGNED"
	IncidentStatusResolved IncidentStatus = "RESOLVED"
)

// IncidentSeverity enumerates severity levels as reported by users.
type IncidentSeverity string

const (
	SeverityWeak     IncidentSeverity = "debil"
	SeverityModerate IncidentSeverity = "moderado"
	SeverityStrong   IncidentSeverity = "fuerte"
)

// IncidentCategory enumerates the kinds of problems users can report.
type IncidentCategory string

const (
	CategoryLeaks        IncidentCategory = "Fugas"
	CategoryFurniture    IncidentCategory = "Calidad del Inmobiliario"
	CategoryCleanliness  IncidentCategory = "Limpieza y desorden"
	CategoryUtilities    IncidentCategory = "Calidad de los Servicios (Luz, Internet, Agua)"
	CategoryLockedRooms  IncidentCategory = "Aulas Cerradas"
	CategoryLostProperty IncidentCategory = "Objeto Perdido"
)

// Functional areas that resolve incidents. Worker accounts carry one of these.
const (
	AreaMaintenance = "Mantenimiento"
	AreaCleaning    = "Limpieza"
	AreaIT          = "OIT"
	AreaSecurity    = "Seguridad"
)

// Incident is the aggregate for reported campus problems.
type Incident struct {
	ID          string           `json:"id"`
	ReporterID  string           `json:"reporter_id"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Floor       string           `json:"floor,omitempty"`
	Category    IncidentCategory `json:"category"`
	Severity    IncidentSeverity `json:"severity"`
	Area        string           `json:"area"`
	Status      IncidentStatus   `json:"status"`
	AssigneeID  *string          `json:"assignee_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
	ResolvedBy  *string          `json:"resolved_by,omitempty"`
}

// successor holds the single legal next state for each status. RESOLVED is
// terminal and has no entry.
var successor = map[IncidentStatus]IncidentStatus{
	IncidentStatusReported: IncidentStatusAssigned,
	IncidentStatusAssigned: IncidentStatusResolved,
}

// NextStatus returns the single legal successor of the given status. The second
// return value is false when the status is terminal.
func NextStatus(current IncidentStatus) (IncidentStatus, bool) {
	next, ok := successor[current]
	return next, ok
}

// categoryAreas maps each incident category to the area accountable for it.
var categoryAreas = map[IncidentCategory]string{
	CategoryLeaks:        AreaMaintenance,
	CategoryFurniture:    AreaMaintenance,
	CategoryCleanliness:  AreaCleaning,
	CategoryUtilities:    AreaIT,
	CategoryLockedRooms:  AreaSecurity,
	CategoryLostProperty: AreaSecurity,
}

// AreaForCategory resolves the responsible area for a category. The second
// return value is false when the category has no mapping.
func AreaForCategory(category IncidentCategory) (string, bool) {
	area, ok := categoryAreas[category]
	return area, ok
}

// ValidStatus reports whether the label belongs to the canonical status set.
func ValidStatus(s IncidentStatus) bool {
	switch s {
	case IncidentStatusReported, IncidentStatusAssigned, IncidentStatusResolved:
		return true
	}
	return false
}

// ValidSeverity reports whether the label belongs to the severity set.
func ValidSeverity(s IncidentSeverity) bool {
	switch s {
	case SeverityWeak, SeverityModerate, SeverityStrong:
		return true
	}
	return false
}

// ValidCategory reports whether the label belongs to the category set.
func ValidCategory(c IncidentCategory) bool {
	_, ok := categoryAreas[c]
	return ok
}

// KnownAreas returns the set of functional areas workers can belong to.
func KnownAreas() []string {
	return []string{AreaMaintenance, AreaCleaning, AreaIT, AreaSecurity}
}

// ValidArea reports whether area is a known functional area.
func ValidArea(area string) bool {
	for _, known := range KnownAreas() {
		if area == known {
			return true
		}
	}
	return false
}
