package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"whutmovie/internal/metrics"
	"whutmovie/internal/models"
	"whutmovie/internal/repository"

	"github.com/sirupsen/logrus"
)

const sessionTokenBytes = 32

// SessionStore issues and resolves opaque session tokens backed by the
// sessions table. Sessions are never renewed.
type SessionStore struct {
	repo   repository.SessionRepository
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

func NewSessionStore(repo repository.SessionRepository, ttl time.Duration, logger *logrus.Logger) *SessionStore {
	return &SessionStore{
		repo:   repo,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// SetClock replaces the time source.
func (s *SessionStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SessionStore) Create(ctx context.Context, userID string) (*models.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return session, nil
}

// Lookup resolves token to a live session, or nil. An expired session is
// deleted on the way out.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*models.Session, error) {
	return s.lookup(ctx, token, true)
}

// Peek is Lookup without the deletion of expired sessions, for read-only
// request paths.
func (s *SessionStore) Peek(ctx context.Context, token string) (*models.Session, error) {
	return s.lookup(ctx, token, false)
}

func (s *SessionStore) lookup(ctx context.Context, token string, prune bool) (*models.Session, error) {
	if !isWellFormedToken(token) {
		if token != "" {
			metrics.SessionLookups.WithLabelValues("malformed").Inc()
		}
		return nil, nil
	}

	session, err := s.repo.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.SessionLookups.WithLabelValues("missing").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.IsExpired(s.now()) || session.User == nil {
		metrics.SessionLookups.WithLabelValues("expired").Inc()
		if prune {
			if err := s.repo.DeleteByToken(ctx, token); err != nil {
				s.logger.WithError(err).WithField("user_id", session.UserID).Warn("Failed to delete expired session")
			}
		}
		return nil, nil
	}

	metrics.SessionLookups.WithLabelValues("valid").Inc()
	return session, nil
}

// Destroy deletes the session. Unknown or malformed tokens are ignored.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if !isWellFormedToken(token) {
		return nil
	}
	if err := s.repo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Sweep removes every session that has already expired.
func (s *SessionStore) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func isWellFormedToken(token string) bool {
	if len(token) != sessionTokenBytes*2 {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
