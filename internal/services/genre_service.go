package services

import (
	"context"
	"fmt"
	"strings"

	"whutmovie/internal/models"
	"whutmovie/internal/repository"
	"whutmovie/internal/utils"

	"github.com/sirupsen/logrus"
)

type GenreInput struct {
	Name string
	// Slug overrides the slug derived from Name on create.
	Slug string
}

type GenreService interface {
	List(ctx context.Context, page repository.Page, includeMovieCount bool) ([]models.Genre, int64, error)
	Get(ctx context.Context, key string) (*models.Genre, error)
	Create(ctx context.Context, input GenreInput) (*models.Genre, error)
	Update(ctx context.Context, id string, input GenreInput) (*models.Genre, error)
	// Delete refuses genres still tagged on movies unless force is set, in
	// which case the movies lose the tag and survive.
	Delete(ctx context.Context, id string, force bool) error
}

type genreService struct {
	repo   repository.GenreRepository
	pages  PageInvalidator
	logger *logrus.Logger
}

func NewGenreService(repo repository.GenreRepository, pages PageInvalidator, logger *logrus.Logger) GenreService {
	return &genreService{
		repo:   repo,
		pages:  pages,
		logger: logger,
	}
}

func (s *genreService) List(ctx context.Context, page repository.Page, includeMovieCount bool) ([]models.Genre, int64, error) {
	genres, total, err := s.repo.FindAll(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list genres: %w", err)
	}
	if !includeMovieCount || len(genres) == 0 {
		return genres, total, nil
	}

	ids := make([]string, len(genres))
	for i, g := range genres {
		ids[i] = g.ID
	}
	counts, err := s.repo.CountMoviesByGenre(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count genre movies: %w", err)
	}
	for i := range genres {
		n := counts[genres[i].ID]
		genres[i].MovieCount = &n
	}
	return genres, total, nil
}

func (s *genreService) Get(ctx context.Context, key string) (*models.Genre, error) {
	genre, err := s.repo.FindByIDOrSlug(ctx, key)
	if err != nil {
		return nil, fromRepository(err, "genre")
	}
	count, err := s.repo.CountMovies(ctx, genre.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count genre movies: %w", err)
	}
	genre.MovieCount = &count
	return genre, nil
}

func (s *genreService) Create(ctx context.Context, input GenreInput) (*models.Genre, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	slugSource := name
	if strings.TrimSpace(input.Slug) != "" {
		slugSource = input.Slug
	}
	slug, err := slugFor("name", slugSource)
	if err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: name, Slug: slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, fromRepository(err, "genre")
	}

	invalidatePages(ctx, s.pages, PageGroupGenres)
	s.logger.WithFields(logrus.Fields{"genre_id": genre.ID, "slug": genre.Slug}).Info("Genre created")
	return genre, nil
}

func (s *genreService) Update(ctx context.Context, id string, input GenreInput) (*models.Genre, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	slug, err := slugFor("name", name)
	if err != nil {
		return nil, err
	}

	genre, err := s.repo.FindByIDOrSlug(ctx, id)
	if err != nil {
		return nil, fromRepository(err, "genre")
	}
	genre.Name = name
	genre.Slug = slug
	if err := s.repo.Update(ctx, genre); err != nil {
		return nil, fromRepository(err, "genre")
	}

	invalidatePages(ctx, s.pages, allPageGroups...)
	s.logger.WithFields(logrus.Fields{"genre_id": genre.ID, "slug": genre.Slug}).Info("Genre updated")
	return genre, nil
}

func (s *genreService) Delete(ctx context.Context, id string, force bool) error {
	genre, err := s.repo.FindByIDOrSlug(ctx, id)
	if err != nil {
		return fromRepository(err, "genre")
	}

	count, err := s.repo.CountMovies(ctx, genre.ID)
	if err != nil {
		return fmt.Errorf("failed to count genre movies: %w", err)
	}
	if count > 0 && !force {
		return &InvariantError{
			Message: fmt.Sprintf("Genre has %d associated movie(s). Add ?force=true to delete anyway.", count),
			Details: map[string]interface{}{"movieCount": count},
		}
	}

	if err := s.repo.Delete(ctx, genre.ID); err != nil {
		return fromRepository(err, "genre")
	}

	invalidatePages(ctx, s.pages, allPageGroups...)
	s.logger.WithFields(logrus.Fields{"genre_id": genre.ID, "detached_movies": count}).Info("Genre deleted")
	return nil
}

// slugFor derives a slug and rejects text that yields none.
func slugFor(field, text string) (string, error) {
	slug := utils.Slugify(text)
	if slug == "" {
		return "", invalid(field, "%s must contain at least one letter or digit", field)
	}
	return slug, nil
}
