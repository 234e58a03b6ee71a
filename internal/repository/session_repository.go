package repository

import (
	"context"
	"time"

	"whutmovie/internal/database"
	"whutmovie/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	// DeleteByToken is idempotent: a missing token is not an error.
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewSessionRepository(db *database.Database) SessionRepository {
	return &sessionRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *sessionRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.timeout)
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return translateError(r.db.WithContext(ctx).Omit("User").Create(session).Error)
}

func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var session models.Session
	err := r.db.WithContext(ctx).Preload("User").Where("token = ?", token).First(&session).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return translateError(r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error)
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	return result.RowsAffected, translateError(result.Error)
}
