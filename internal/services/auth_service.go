package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whutmovie/internal/metrics"
	"whutmovie/internal/models"
	"whutmovie/internal/repository"
	"whutmovie/internal/utils"

	"github.com/sirupsen/logrus"
)

// Principal is the authenticated admin behind a request.
type Principal struct {
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	SessionExpiresAt time.Time `json:"sessionExpiresAt"`
}

type AuthService interface {
	// Authenticate returns the user for a matching username/password pair
	// and nil otherwise. Unknown users and wrong passwords look the same.
	Authenticate(ctx context.Context, username, password string) (*models.AdminUser, error)
	// Login authenticates and opens a session, or returns ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	// CurrentPrincipal resolves a session token, deleting it if expired.
	// It returns nil when the token does not identify a live session.
	CurrentPrincipal(ctx context.Context, token string) (*Principal, error)
	// PeekPrincipal is CurrentPrincipal without side effects.
	PeekPrincipal(ctx context.Context, token string) (*Principal, error)
}

type authService struct {
	users     repository.AdminUserRepository
	sessions  *SessionStore
	dummyHash string
	logger    *logrus.Logger
}

func NewAuthService(users repository.AdminUserRepository, sessions *SessionStore, bcryptCost int, logger *logrus.Logger) AuthService {
	// Compared against when the username is unknown so both failure paths
	// pay for one bcrypt comparison.
	dummyHash, err := utils.HashPassword("whutmovie-unknown-user", bcryptCost)
	if err != nil {
		logger.WithError(err).Warn("Failed to prepare dummy password hash")
	}

	return &authService{
		users:     users,
		sessions:  sessions,
		dummyHash: dummyHash,
		logger:    logger,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.AdminUser, error) {
	user, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, repository.ErrNotFound) {
		utils.VerifyPassword(s.dummyHash, password)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin user: %w", err)
	}

	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	session.User = user

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.logger.WithField("user_id", user.ID).Info("Admin logged in")
	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

func (s *authService) CurrentPrincipal(ctx context.Context, token string) (*Principal, error) {
	session, err := s.sessions.Lookup(ctx, token)
	return principalFrom(session), err
}

func (s *authService) PeekPrincipal(ctx context.Context, token string) (*Principal, error) {
	session, err := s.sessions.Peek(ctx, token)
	return principalFrom(session), err
}

func principalFrom(session *models.Session) *Principal {
	if session == nil || session.User == nil {
		return nil
	}
	return &Principal{
		UserID:           session.UserID,
		Username:         session.User.Username,
		SessionExpiresAt: session.ExpiresAt,
	}
}
