package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

type assignmentFixture struct {
	incidents   *repository.MemoryIncidentRepository
	assignments *repository.MemoryAssignmentRepository
	users       *repository.MemoryUserRepository
	svc         *AssignmentService
}

func newAssignmentFixture(capacityCap int) *assignmentFixture {
	f := &assignmentFixture{
		incidents:   repository.NewMemoryIncidentRepository(),
		assignments: repository.NewMemoryAssignmentRepository(),
		users:       repository.NewMemoryUserRepository(),
	}
	f.svc = NewAssignmentService(AssignmentDependencies{
		IncidentRepo:   f.incidents,
		AssignmentRepo: f.assignments,
		UserRepo:       f.users,
		Dispatcher:     events.NewInMemoryDispatcher(zap.NewNop()),
		Logger:         zap.NewNop(),
		CapacityCap:    capacityCap,
	})
	return f
}

func (f *assignmentFixture) addWorker(t *testing.T, email, area string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.users.Create(context.Background(), &domain.User{
		Email: email, Name: email, Role: domain.RoleWorker, Area: area,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *assignmentFixture) addIncident(t *testing.T, category domain.IncidentCategory, severity domain.IncidentSeverity) *domain.Incident {
	t.Helper()
	area, _ := domain.AreaForCategory(category)
	now := time.Now().UTC()
	incident := &domain.Incident{
		ID:          uuid.NewString(),
		ReporterID:  "alumno@utec.edu.pe",
		Description: "incidente de prueba",
		Location:    "Pabellon A",
		Category:    category,
		Severity:    severity,
		Area:        area,
		Status:      domain.IncidentStatusReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.incidents.Create(context.Background(), incident))
	return incident
}

func TestAssignMatchesAreaWorker(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	f.addWorker(t, "mantenimiento1@utec.edu.pe", domain.AreaMaintenance)
	f.addWorker(t, "limpieza1@utec.edu.pe", domain.AreaCleaning)
	incident := f.addIncident(t, domain.CategoryLeaks, domain.SeverityStrong)

	assignment, err := f.svc.Assign(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, incident.ID, assignment.IncidentID)
	assert.Equal(t, "mantenimiento1@utec.edu.pe", assignment.WorkerID)
	assert.Equal(t, domain.AreaMaintenance, assignment.Area)

	stored, err := f.incidents.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusAssigned, stored.Status)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, "mantenimiento1@utec.edu.pe", *stored.AssigneeID)

	joined, err := f.assignments.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.WorkerID, joined.WorkerID)
}

func TestAssignAlreadyAssigned(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	f.addWorker(t, "mantenimiento1@utec.edu.pe", domain.AreaMaintenance)
	incident := f.addIncident(t, domain.CategoryLeaks, domain.SeverityWeak)

	_, err := f.svc.Assign(ctx, incident.ID)
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, incident.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestAssignResolvedIncident(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	f.addWorker(t, "seguridad1@utec.edu.pe", domain.AreaSecurity)
	incident := f.addIncident(t, domain.CategoryLockedRooms, domain.SeverityWeak)

	stored, err := f.incidents.Get(ctx, incident.ID)
	require.NoError(t, err)
	stored.Status = domain.IncidentStatusAssigned
	require.NoError(t, f.incidents.UpdateIf(ctx, stored, domain.IncidentStatusReported))
	stored.Status = domain.IncidentStatusResolved
	require.NoError(t, f.incidents.UpdateIf(ctx, stored, domain.IncidentStatusAssigned))

	_, err = f.svc.Assign(ctx, incident.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
}

func TestAssignIncidentNotFound(t *testing.T) {
	f := newAssignmentFixture(3)

	_, err := f.svc.Assign(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestAssignNoEligibleWorker(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	// Only a cleaning worker exists; the incident maps to maintenance.
	f.addWorker(t, "limpieza1@utec.edu.pe", domain.AreaCleaning)
	incident := f.addIncident(t, domain.CategoryLeaks, domain.SeverityModerate)

	_, err := f.svc.Assign(ctx, incident.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNoEligibleWorker, apperrors.CodeOf(err))

	// The incident stays reported so a later retry can succeed.
	stored, err := f.incidents.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusReported, stored.Status)
}

func TestAssignUnmappedCategory(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	f.addWorker(t, "mantenimiento1@utec.edu.pe", domain.AreaMaintenance)

	// Seeded directly because the service rejects unknown categories at
	// creation time. A record with one can still exist, for example after a
	// category is retired from the mapping.
	now := time.Now().UTC()
	id := uuid.NewString()
	require.NoError(t, f.incidents.Create(ctx, &domain.Incident{
		ID:          id,
		ReporterID:  "alumno@utec.edu.pe",
		Description: "musica muy alta",
		Location:    "Pabellon A",
		Category:    "Ruido",
		Severity:    domain.SeverityWeak,
		Status:      domain.IncidentStatusReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	_, err := f.svc.Assign(ctx, id)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnmappedCategory, apperrors.CodeOf(err))

	// The failure leaves the record untouched.
	stored, err := f.incidents.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusReported, stored.Status)
	assert.Nil(t, stored.AssigneeID)
}

func TestAssignCapacityCap(t *testing.T) {
	f := newAssignmentFixture(2)
	ctx := context.Background()

	f.addWorker(t, "mantenimiento1@utec.edu.pe", domain.AreaMaintenance)

	for i := 0; i < 2; i++ {
		incident := f.addIncident(t, domain.CategoryLeaks, domain.SeverityWeak)
		_, err := f.svc.Assign(ctx, incident.ID)
		require.NoError(t, err)
	}

	// Worker is at capacity; the next report finds nobody available.
	overflow := f.addIncident(t, domain.CategoryLeaks, domain.SeverityWeak)
	_, err := f.svc.Assign(ctx, overflow.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNoEligibleWorker, apperrors.CodeOf(err))

	// Resolving one frees a slot.
	first, err := f.incidents.List(ctx, repository.IncidentFilter{})
	require.NoError(t, err)
	for i := range first {
		if first[i].Status == domain.IncidentStatusAssigned {
			first[i].Status = domain.IncidentStatusResolved
			require.NoError(t, f.incidents.UpdateIf(ctx, &first[i], domain.IncidentStatusAssigned))
			break
		}
	}
	_, err = f.svc.Assign(ctx, overflow.ID)
	require.NoError(t, err)
}

func TestAssignToWorker(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	f.addWorker(t, "oit1@utec.edu.pe", domain.AreaIT)
	f.addWorker(t, "oit2@utec.edu.pe", domain.AreaIT)
	incident := f.addIncident(t, domain.CategoryUtilities, domain.SeverityStrong)

	assignment, err := f.svc.AssignToWorker(ctx, incident.ID, "oit2@utec.edu.pe")
	require.NoError(t, err)
	assert.Equal(t, "oit2@utec.edu.pe", assignment.WorkerID)
}

func TestAssignToWorkerAreaMismatch(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	f.addWorker(t, "limpieza1@utec.edu.pe", domain.AreaCleaning)
	incident := f.addIncident(t, domain.CategoryUtilities, domain.SeverityWeak)

	_, err := f.svc.AssignToWorker(ctx, incident.ID, "limpieza1@utec.edu.pe")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestAssignToWorkerNotAWorker(t *testing.T) {
	f := newAssignmentFixture(3)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, f.users.Create(ctx, &domain.User{
		Email: "alumno@utec.edu.pe", Name: "Alumno", Role: domain.RoleStudent,
		Area: domain.StudentArea, CreatedAt: now, UpdatedAt: now,
	}))
	incident := f.addIncident(t, domain.CategoryLeaks, domain.SeverityWeak)

	_, err := f.svc.AssignToWorker(ctx, incident.ID, "alumno@utec.edu.pe")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestAssignConcurrentSingleWinner(t *testing.T) {
	f := newAssignmentFixture(5)
	ctx := context.Background()

	f.addWorker(t, "mantenimiento1@utec.edu.pe", domain.AreaMaintenance)
	f.addWorker(t, "mantenimiento2@utec.edu.pe", domain.AreaMaintenance)
	incident := f.addIncident(t, domain.CategoryLeaks, domain.SeverityStrong)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = f.svc.Assign(ctx, incident.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		code := apperrors.CodeOf(err)
		assert.Contains(t, []string{apperrors.CodeConflict}, code)
	}
	assert.Equal(t, 1, winners)

	stored, err := f.incidents.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusAssigned, stored.Status)
	require.NotNil(t, stored.AssigneeID)
}
