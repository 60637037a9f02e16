package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

var institutionalEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@utec\.edu\.pe$`)

// AuthService coordinates registration, login and token validation.
type AuthService struct {
	users      repository.UserRepository
	sessions   *auth.SessionManager
	bcryptCost int
}

// AuthDependencies encapsulates store requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
}

// RegisterInput describes the registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Area     string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   auth.NewSessionManager(deps.SessionRepo, cfg.SessionTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account. Students carry the placeholder area;
// workers must name a known functional area.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if !institutionalEmail.MatchString(input.Email) {
		return nil, apperrors.NewValidationError("email must be institutional (@utec.edu.pe)", nil)
	}
	if !domain.ValidRole(input.Role) {
		return nil, apperrors.NewValidationError("unrecognized role",
			map[string]any{"role": string(input.Role)})
	}

	area := input.Area
	switch input.Role {
	case domain.RoleStudent:
		area = domain.StudentArea
	case domain.RoleWorker:
		if !domain.ValidArea(area) {
			return nil, apperrors.NewValidationError("unknown worker area",
				map[string]any{"area": area})
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         input.Role,
		Area:         area,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewValidationError("email already registered", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Login authenticates a credential pair and issues a fresh session token with
// an expiry strictly after issuance.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.SessionToken, error) {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Validate resolves a bearer token to the bound identity. Expired tokens
// yield the expired indication without the identity.
func (s *AuthService) Validate(ctx context.Context, token string) (*domain.User, *domain.SessionToken, error) {
	session, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.Get(ctx, session.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// SessionManager exposes the underlying manager for middleware usage.
func (s *AuthService) SessionManager() *auth.SessionManager {
	return s.sessions
}
