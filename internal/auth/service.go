package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nxzen/ticketdesk/internal/config"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// Service coordinates registration and login flows.
type Service struct {
	users      repository.UserRepository
	settings   repository.SettingsRepository
	tokens     *TokenManager
	bcryptCost int
}

// NewService builds the auth service.
func NewService(cfg config.AuthConfig, users repository.UserRepository, settings repository.SettingsRepository) *Service {
	return &Service{
		users:      users,
		settings:   settings,
		tokens:     NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Tokens exposes the token manager for middleware wiring.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates a new account and provisions its default settings row.
func (s *Service) Register(ctx context.Context, name, email, password string, isStaff bool) (*domain.User, string, time.Time, error) {
	if name == "" || email == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(password) < 8 {
		return nil, "", time.Time{}, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      isStaff,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := s.settings.Create(ctx, domain.NewDefaultSettings(user.ID)); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokens.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a user by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account disabled")
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}
