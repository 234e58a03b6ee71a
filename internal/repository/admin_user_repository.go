package repository

import (
	"context"
	"time"

	"whutmovie/internal/database"
	"whutmovie/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	Update(ctx context.Context, user *models.AdminUser) error
	FindByID(ctx context.Context, id string) (*models.AdminUser, error)
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	FindAll(ctx context.Context) ([]models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes the user and every session it owns. It refuses with
	// ErrLastRecord when the user is the only admin left.
	Delete(ctx context.Context, id string) error
}

type adminUserRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewAdminUserRepository(db *database.Database) AdminUserRepository {
	return &adminUserRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *adminUserRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.timeout)
}

func (r *adminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *adminUserRepository) Update(ctx context.Context, user *models.AdminUser) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username":      user.Username,
			"password_hash": user.PasswordHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "admin user"}
	}
	return nil
}

func (r *adminUserRepository) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.AdminUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *adminUserRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.AdminUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *adminUserRepository) FindAll(ctx context.Context) ([]models.AdminUser, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var users []models.AdminUser
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("username ASC").Find(&users).Error
	return users, translateError(err)
}

func (r *adminUserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error
	return count, translateError(err)
}

func (r *adminUserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lock := tx
		if r.db.IsPostgres() {
			lock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var users []models.AdminUser
		if err := lock.Select("id").Find(&users).Error; err != nil {
			return translateError(err)
		}

		found := false
		for _, u := range users {
			if u.ID == id {
				found = true
				break
			}
		}
		if !found {
			return &NotFoundError{Entity: "admin user"}
		}
		if len(users) <= 1 {
			return ErrLastRecord
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return translateError(err)
		}
		return translateError(tx.Where("id = ?", id).Delete(&models.AdminUser{}).Error)
	})
}
