package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

func TestSessionIssueAndValidate(t *testing.T) {
	store := repository.NewMemorySessionRepository()
	manager := NewSessionManager(store, 30*time.Minute)
	ctx := context.Background()

	user := &domain.User{Email: "w@utec.edu.pe", Role: domain.RoleWorker, Area: domain.AreaIT}
	token, err := manager.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, user.Email, token.Email)
	assert.Equal(t, 30*time.Minute, token.ExpiresAt.Sub(token.IssuedAt))

	session, err := manager.Validate(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, session.Email)
	assert.Equal(t, user.Role, session.Role)
}

func TestSessionValidateUnknownToken(t *testing.T) {
	manager := NewSessionManager(repository.NewMemorySessionRepository(), time.Hour)

	_, err := manager.Validate(context.Background(), "unknown")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestSessionValidateExpiredToken(t *testing.T) {
	store := repository.NewMemorySessionRepository()
	manager := NewSessionManager(store, time.Hour)
	ctx := context.Background()

	now := time.Now().UTC()
	expired := &domain.SessionToken{
		Token:     "expired-token",
		Email:     "w@utec.edu.pe",
		Role:      domain.RoleWorker,
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	require.NoError(t, store.Put(ctx, expired))

	_, err := manager.Validate(ctx, expired.Token)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTokenExpired, apperrors.CodeOf(err))

	// Lazy expiry: the record stays in the store after rejection.
	_, err = store.Get(ctx, expired.Token)
	require.NoError(t, err)
}

func TestSessionTokenBoundaryInstant(t *testing.T) {
	now := time.Now().UTC()
	token := domain.SessionToken{ExpiresAt: now}

	// A token is usable strictly before its expiry instant, never at it.
	assert.True(t, token.Expired(now))
	assert.False(t, token.Expired(now.Add(-time.Nanosecond)))
	assert.True(t, token.Expired(now.Add(time.Nanosecond)))
}
