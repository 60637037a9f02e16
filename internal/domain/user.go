package domain

import "time"

// Role distinguishes reporters, assignment-eligible workers and administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleWorker  Role = "worker"
	RoleAdmin   Role = "admin"
)

// StudentArea is the placeholder area carried by student accounts.
const StudentArea = "student"

// User is keyed by institutional email. Workers carry the functional area they
// serve; only role=worker accounts are eligible for incident assignment.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	Area         string    `json:"area"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether the label belongs to the role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleWorker, RoleAdmin:
		return true
	}
	return false
}
