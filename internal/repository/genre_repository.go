package repository

import (
	"context"
	"time"

	"whutmovie/internal/database"
	"whutmovie/internal/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, genre *models.Genre) error
	Update(ctx context.Context, genre *models.Genre) error
	// Delete detaches the genre from every movie, then removes it.
	Delete(ctx context.Context, id string) error
	FindByIDOrSlug(ctx context.Context, key string) (*models.Genre, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	FindAll(ctx context.Context, page Page) ([]models.Genre, int64, error)
	CountMovies(ctx context.Context, genreID string) (int64, error)
	CountMoviesByGenre(ctx context.Context, genreIDs []string) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
}

type genreRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewGenreRepository(db *database.Database) GenreRepository {
	return &genreRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *genreRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.timeout)
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return translateError(r.db.WithContext(ctx).Create(genre).Error)
}

func (r *genreRepository) Update(ctx context.Context, genre *models.Genre) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Model(&models.Genre{}).
		Where("id = ?", genre.ID).
		Updates(map[string]interface{}{"name": genre.Name, "slug": genre.Slug})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "genre"}
	}
	return nil
}

func (r *genreRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+models.MovieGenreTable+" WHERE genre_id = ?", id).Error; err != nil {
			return translateError(err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Genre{})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Entity: "genre"}
		}
		return nil
	})
}

func (r *genreRepository) FindByIDOrSlug(ctx context.Context, key string) (*models.Genre, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var genre models.Genre
	if err := r.db.WithContext(ctx).Where("id = ? OR slug = ?", key, key).First(&genre).Error; err != nil {
		return nil, translateError(err)
	}
	return &genre, nil
}

func (r *genreRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var genres []models.Genre
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&genres).Error
	return genres, translateError(err)
}

func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var genres []models.Genre
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name ASC").Find(&genres).Error
	return genres, translateError(err)
}

func (r *genreRepository) FindAll(ctx context.Context, page Page) ([]models.Genre, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var genres []models.Genre
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Genre{}).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	err := base.Order("name ASC").Offset(page.Offset()).Limit(page.Size).Find(&genres).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return genres, total, nil
}

func (r *genreRepository) CountMovies(ctx context.Context, genreID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Table(models.MovieGenreTable).Where("genre_id = ?", genreID).Count(&count).Error
	return count, translateError(err)
}

func (r *genreRepository) CountMoviesByGenre(ctx context.Context, genreIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(genreIDs))
	if len(genreIDs) == 0 {
		return counts, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []struct {
		GenreID string
		Total   int64
	}
	err := r.db.WithContext(ctx).Table(models.MovieGenreTable).
		Select("genre_id, COUNT(*) AS total").
		Where("genre_id IN ?", genreIDs).
		Group("genre_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	for _, row := range rows {
		counts[row.GenreID] = row.Total
	}
	return counts, nil
}

func (r *genreRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Genre{}).Count(&count).Error
	return count, translateError(err)
}
