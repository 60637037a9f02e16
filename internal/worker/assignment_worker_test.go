package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
)

func sweepFixture(t *testing.T) (*AssignmentSweeper, *repository.MemoryIncidentRepository, *repository.MemoryUserRepository) {
	t.Helper()
	incidents := repository.NewMemoryIncidentRepository()
	users := repository.NewMemoryUserRepository()
	assigner := service.NewAssignmentService(service.AssignmentDependencies{
		IncidentRepo:   incidents,
		AssignmentRepo: repository.NewMemoryAssignmentRepository(),
		UserRepo:       users,
		Dispatcher:     events.NewInMemoryDispatcher(zap.NewNop()),
		Logger:         zap.NewNop(),
	})
	sweeper := NewAssignmentSweeper(incidents, assigner, zap.NewNop(), time.Minute)
	return sweeper, incidents, users
}

func seedIncident(t *testing.T, incidents *repository.MemoryIncidentRepository, id string, category domain.IncidentCategory, status domain.IncidentStatus) {
	t.Helper()
	area, _ := domain.AreaForCategory(category)
	require.NoError(t, incidents.Create(context.Background(), &domain.Incident{
		ID: id, ReporterID: "alumno@utec.edu.pe", Description: "pendiente",
		Location: "Pabellon A", Category: category,
		Severity: domain.SeverityModerate, Area: area, Status: status,
	}))
}

func TestSweepAssignsReportedIncidents(t *testing.T) {
	sweeper, incidents, users := sweepFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &domain.User{
		Email: "mantenimiento1@utec.edu.pe", Role: domain.RoleWorker, Area: domain.AreaMaintenance,
	}))
	seedIncident(t, incidents, "inc-1", domain.CategoryLeaks, domain.IncidentStatusReported)
	// No security worker exists, so this one has to stay reported.
	seedIncident(t, incidents, "inc-2", domain.CategoryLockedRooms, domain.IncidentStatusReported)

	sweeper.Sweep(ctx)

	first, err := incidents.Get(ctx, "inc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusAssigned, first.Status)

	second, err := incidents.Get(ctx, "inc-2")
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusReported, second.Status)
}

func TestSweepSkipsNonReported(t *testing.T) {
	sweeper, incidents, users := sweepFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &domain.User{
		Email: "mantenimiento1@utec.edu.pe", Role: domain.RoleWorker, Area: domain.AreaMaintenance,
	}))
	seedIncident(t, incidents, "inc-1", domain.CategoryLeaks, domain.IncidentStatusResolved)

	sweeper.Sweep(ctx)

	stored, err := incidents.Get(ctx, "inc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusResolved, stored.Status)
	assert.Nil(t, stored.AssigneeID)
}

func TestRunStopsOnCancel(t *testing.T) {
	sweeper, _, _ := sweepFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
