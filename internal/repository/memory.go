package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/incident-service/internal/domain"
)

// In-memory implementations of the store interfaces. They mirror the redis
// backend's semantics, including the compare-and-swap contract of UpdateIf,
// and back the test suites.

// MemoryIncidentRepository is a map-backed IncidentRepository.
type MemoryIncidentRepository struct {
	mu        sync.Mutex
	incidents map[string]domain.Incident

	// FailNext, when set, makes the next call return the given error. Used by
	// tests to simulate store failures.
	FailNext error
}

// NewMemoryIncidentRepository builds an empty store.
func NewMemoryIncidentRepository() *MemoryIncidentRepository {
	return &MemoryIncidentRepository{incidents: make(map[string]domain.Incident)}
}

func (r *MemoryIncidentRepository) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

func (r *MemoryIncidentRepository) Create(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, exists := r.incidents[incident.ID]; exists {
		return ErrConflict
	}
	r.incidents[incident.ID] = *incident
	return nil
}

func (r *MemoryIncidentRepository) Get(_ context.Context, id string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	incident, ok := r.incidents[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := incident
	return &copied, nil
}

func (r *MemoryIncidentRepository) UpdateIf(_ context.Context, incident *domain.Incident, expected domain.IncidentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	current, ok := r.incidents[incident.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Status != expected {
		return ErrConflict
	}
	r.incidents[incident.ID] = *incident
	return nil
}

func (r *MemoryIncidentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.incidents[id]; !ok {
		return ErrNotFound
	}
	delete(r.incidents, id)
	return nil
}

func (r *MemoryIncidentRepository) List(_ context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	var result []domain.Incident
	for _, incident := range r.incidents {
		if filter.Matches(&incident) {
			result = append(result, incident)
		}
	}
	// Stable order keeps scans deterministic for callers that iterate.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MemoryUserRepository is a map-backed UserRepository.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewMemoryUserRepository builds an empty directory.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return ErrConflict
	}
	r.users[user.Email] = *user
	return nil
}

func (r *MemoryUserRepository) Get(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; !ok {
		return ErrNotFound
	}
	r.users[user.Email] = *user
	return nil
}

func (r *MemoryUserRepository) ListWorkers(_ context.Context, area string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == domain.RoleWorker && user.Area == area {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// MemorySessionRepository is a map-backed SessionRepository.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.SessionToken
}

// NewMemorySessionRepository builds an empty token store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domain.SessionToken)}
}

func (r *MemorySessionRepository) Put(_ context.Context, token *domain.SessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token.Token] = *token
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, token string) (*domain.SessionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	copied := session
	return &copied, nil
}

// MemoryAssignmentRepository is a map-backed AssignmentRepository.
type MemoryAssignmentRepository struct {
	mu          sync.Mutex
	assignments map[string]domain.Assignment
}

// NewMemoryAssignmentRepository builds an empty join store.
func NewMemoryAssignmentRepository() *MemoryAssignmentRepository {
	return &MemoryAssignmentRepository{assignments: make(map[string]domain.Assignment)}
}

func (r *MemoryAssignmentRepository) Put(_ context.Context, assignment *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignment.IncidentID] = *assignment
	return nil
}

func (r *MemoryAssignmentRepository) Get(_ context.Context, incidentID string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[incidentID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := assignment
	return &copied, nil
}

func (r *MemoryAssignmentRepository) Delete(_ context.Context, incidentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, incidentID)
	return nil
}

// MemoryHistoryRepository is a slice-backed HistoryRepository.
type MemoryHistoryRepository struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	nextID  int64
}

// NewMemoryHistoryRepository builds an empty trail.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

func (r *MemoryHistoryRepository) Append(_ context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *MemoryHistoryRepository) ListByIncident(_ context.Context, incidentID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.HistoryEntry
	for _, entry := range r.entries {
		if entry.IncidentID == incidentID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ChangedAt.Equal(result[j].ChangedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].ChangedAt.Before(result[j].ChangedAt)
	})
	return result, nil
}
