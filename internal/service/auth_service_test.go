package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

func newAuthFixture() (*AuthService, *repository.MemorySessionRepository) {
	sessions := repository.NewMemorySessionRepository()
	svc := NewAuthService(config.AuthConfig{SessionTTLMinutes: 60, BcryptCost: 4}, AuthDependencies{
		UserRepo:    repository.NewMemoryUserRepository(),
		SessionRepo: sessions,
	})
	return svc, sessions
}

func TestRegisterStudent(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Maria Lopez",
		Email:    "maria.lopez@utec.edu.pe",
		Password: "secreto123",
		Role:     domain.RoleStudent,
		Area:     "Mantenimiento",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, user.Role)
	// Students never carry a functional area, whatever the payload says.
	assert.Equal(t, domain.StudentArea, user.Area)
	assert.NotEqual(t, "secreto123", user.PasswordHash)
}

func TestRegisterWorker(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jose Diaz",
		Email:    "jose.diaz@utec.edu.pe",
		Password: "secreto123",
		Role:     domain.RoleWorker,
		Area:     domain.AreaMaintenance,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AreaMaintenance, user.Area)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"non institutional email", RegisterInput{
			Name: "X", Email: "x@gmail.com", Password: "p", Role: domain.RoleStudent,
		}},
		{"unknown role", RegisterInput{
			Name: "X", Email: "x@utec.edu.pe", Password: "p", Role: "profesor",
		}},
		{"worker without known area", RegisterInput{
			Name: "X", Email: "x@utec.edu.pe", Password: "p", Role: domain.RoleWorker, Area: "Jardineria",
		}},
		{"missing password", RegisterInput{
			Name: "X", Email: "x@utec.edu.pe", Role: domain.RoleStudent,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	input := RegisterInput{
		Name: "Maria", Email: "maria@utec.edu.pe", Password: "p", Role: domain.RoleStudent,
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Maria", Email: "maria@utec.edu.pe", Password: "secreto123", Role: domain.RoleStudent,
	})
	require.NoError(t, err)

	user, session, err := svc.Login(ctx, "maria@utec.edu.pe", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, "maria@utec.edu.pe", user.Email)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(session.IssuedAt))

	_, _, err = svc.Login(ctx, "maria@utec.edu.pe", "incorrecta")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, _, err = svc.Login(ctx, "nadie@utec.edu.pe", "secreto123")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestValidateToken(t *testing.T) {
	svc, sessions := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Maria", Email: "maria@utec.edu.pe", Password: "secreto123", Role: domain.RoleStudent,
	})
	require.NoError(t, err)
	_, issued, err := svc.Login(ctx, "maria@utec.edu.pe", "secreto123")
	require.NoError(t, err)

	user, session, err := svc.Validate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "maria@utec.edu.pe", user.Email)
	assert.Equal(t, issued.Token, session.Token)

	_, _, err = svc.Validate(ctx, "no-such-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	// Expire the stored record in place; validation checks expiry lazily.
	stored, err := sessions.Get(ctx, issued.Token)
	require.NoError(t, err)
	stored.ExpiresAt = stored.IssuedAt
	require.NoError(t, sessions.Put(ctx, stored))

	_, _, err = svc.Validate(ctx, issued.Token)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeTokenExpired, domainErr.Code)
	assert.Equal(t, true, domainErr.Details["expired"])
}
