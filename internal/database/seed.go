package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whutmovie/internal/config"
	"whutmovie/internal/models"
	"whutmovie/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoAdmin means the database has no admin user and no seed password was
// configured to create one.
var ErrNoAdmin = errors.New("no admin user exists and ADMIN_SEED_PASSWORD is not set")

// BaseGenres is the genre list created when genre seeding is enabled.
var BaseGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary", "Drama",
	"Fantasy", "Horror", "Mystery", "Romance", "Sci-Fi", "Thriller", "Western",
}

// Seed makes sure an admin can sign in. With a seed password the seed admin
// is created, or its password reset when it already exists. Without one an
// existing admin must already be present.
func Seed(ctx context.Context, db *Database, cfg config.AuthConfig, log *logrus.Logger) error {
	if err := seedAdmin(db.WithContext(ctx), cfg, log); err != nil {
		return err
	}
	if cfg.SeedGenres {
		if err := seedGenres(db.WithContext(ctx), log); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, cfg config.AuthConfig, log *logrus.Logger) error {
	if cfg.SeedAdminPassword == "" {
		var count int64
		if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count admin users: %w", err)
		}
		if count == 0 {
			return ErrNoAdmin
		}
		log.Debug("ADMIN_SEED_PASSWORD not set, keeping existing admin users")
		return nil
	}

	username := strings.ToLower(strings.TrimSpace(cfg.SeedAdminUsername))
	hash, err := utils.HashPassword(cfg.SeedAdminPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	var existing models.AdminUser
	err = db.Where("username = ?", username).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := models.AdminUser{Username: username, PasswordHash: hash}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create seed admin: %w", err)
		}
		log.WithField("username", username).Info("Seed admin created")
	case err != nil:
		return fmt.Errorf("failed to load seed admin: %w", err)
	default:
		if err := db.Model(&existing).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("failed to update seed admin: %w", err)
		}
		log.WithField("username", username).Info("Seed admin password refreshed")
	}
	return nil
}

func seedGenres(db *gorm.DB, log *logrus.Logger) error {
	genres := make([]models.Genre, len(BaseGenres))
	for i, name := range BaseGenres {
		genres[i] = models.Genre{Name: name, Slug: utils.Slugify(name)}
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&genres)
	if result.Error != nil {
		return fmt.Errorf("failed to seed genres: %w", result.Error)
	}
	log.WithField("created", result.RowsAffected).Info("Base genres seeded")
	return nil
}
