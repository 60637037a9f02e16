package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// SessionManager issues and validates opaque session tokens. Tokens live in
// the session store; validation reads the record and checks expiry lazily, so
// an expired token is rejected without being deleted.
type SessionManager struct {
	sessions repository.SessionRepository
	ttl      time.Duration
}

// NewSessionManager builds a manager with the given token lifetime.
func NewSessionManager(sessions repository.SessionRepository, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionManager{sessions: sessions, ttl: ttl}
}

// Issue mints a fresh opaque token bound to the user and persists it.
func (m *SessionManager) Issue(ctx context.Context, user *domain.User) (*domain.SessionToken, error) {
	now := time.Now().UTC()
	token := &domain.SessionToken{
		Token:     uuid.NewString(),
		Email:     user.Email,
		Role:      user.Role,
		Area:      user.Area,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Put(ctx, token); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return token, nil
}

// Validate resolves a token to its session record. Unknown tokens are
// unauthorized; known-but-expired tokens surface the expired indication
// without the bound identity.
func (m *SessionManager) Validate(ctx context.Context, token string) (*domain.SessionToken, error) {
	session, err := m.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if session.Expired(time.Now().UTC()) {
		return nil, apperrors.NewTokenExpired()
	}
	return session, nil
}
