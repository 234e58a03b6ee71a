package repository

import (
	"context"
	"strings"
	"time"

	"whutmovie/internal/database"
	"whutmovie/internal/models"

	"gorm.io/gorm"
)

// Movie list orderings.
const (
	MovieSortYear  = "year"
	MovieSortTitle = "title"
)

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type MovieFilter struct {
	Page     Page
	Genre    string // genre slug
	Category string // category slug
	Search   string // case-insensitive title fragment
	Sort     string
}

type MovieRepository interface {
	// Create inserts the movie and links it to genres, which must exist.
	Create(ctx context.Context, movie *models.Movie, genres []models.Genre) error
	// Update rewrites the scalar columns and replaces the genre set.
	Update(ctx context.Context, movie *models.Movie, genres []models.Genre) error
	// Delete removes the movie with its category assignments and genre links.
	Delete(ctx context.Context, id string) error
	FindByIDOrSlug(ctx context.Context, key string) (*models.Movie, error)
	FindAll(ctx context.Context, filter MovieFilter) ([]models.Movie, int64, error)
	Count(ctx context.Context) (int64, error)
}

type movieRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewMovieRepository(db *database.Database) MovieRepository {
	return &movieRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *movieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.timeout)
}

func (r *movieRepository) Create(ctx context.Context, movie *models.Movie, genres []models.Genre) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	movie.Genres = genres
	return translateError(r.db.WithContext(ctx).Omit("Genres.*", "Assignments").Create(movie).Error)
}

func (r *movieRepository) Update(ctx context.Context, movie *models.Movie, genres []models.Genre) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Movie{}).
			Where("id = ?", movie.ID).
			Updates(map[string]interface{}{
				"title":        movie.Title,
				"slug":         movie.Slug,
				"year":         movie.Year,
				"whut_summary": movie.WhutSummary,
				"description":  movie.Description,
				"poster_url":   movie.PosterURL,
			})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Entity: "movie"}
		}

		if err := tx.Exec("DELETE FROM "+models.MovieGenreTable+" WHERE movie_id = ?", movie.ID).Error; err != nil {
			return translateError(err)
		}
		for _, g := range genres {
			err := tx.Exec("INSERT INTO "+models.MovieGenreTable+" (movie_id, genre_id) VALUES (?, ?)", movie.ID, g.ID).Error
			if err != nil {
				return translateError(err)
			}
		}
		movie.Genres = genres
		return nil
	})
}

func (r *movieRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&models.CategoryAssignment{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Exec("DELETE FROM "+models.MovieGenreTable+" WHERE movie_id = ?", id).Error; err != nil {
			return translateError(err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Movie{})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Entity: "movie"}
		}
		return nil
	})
}

func (r *movieRepository) FindByIDOrSlug(ctx context.Context, key string) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderGenres).
		Preload("Assignments.Category").
		Where("id = ? OR slug = ?", key, key).
		First(&movie).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &movie, nil
}

func (r *movieRepository) FindAll(ctx context.Context, filter MovieFilter) ([]models.Movie, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	var total int64

	db := r.db.WithContext(ctx)
	query := db.Model(&models.Movie{})

	if filter.Genre != "" {
		sub := db.Table(models.MovieGenreTable).
			Select("movie_genres.movie_id").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("genres.slug = ?", filter.Genre)
		query = query.Where("movies.id IN (?)", sub)
	}

	if filter.Category != "" {
		sub := db.Table("category_assignments").
			Select("category_assignments.movie_id").
			Joins("JOIN categories ON categories.id = category_assignments.category_id").
			Where("categories.slug = ?", filter.Category)
		query = query.Where("movies.id IN (?)", sub)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(movies.title) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}

	base := query.Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	ordered := base
	switch filter.Sort {
	case MovieSortTitle:
		ordered = ordered.Order("movies.title ASC")
	default:
		ordered = ordered.
			Order("movies.year IS NULL").
			Order("movies.year DESC").
			Order("movies.title ASC")
	}

	err := ordered.
		Preload("Genres", orderGenres).
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Size).
		Find(&movies).Error
	if err != nil {
		return nil, 0, translateError(err)
	}

	return movies, total, nil
}

func (r *movieRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Movie{}).Count(&count).Error
	return count, translateError(err)
}

func orderGenres(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name ASC")
}
