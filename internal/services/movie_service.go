package services

import (
	"context"
	"fmt"
	"strings"

	"whutmovie/internal/models"
	"whutmovie/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	minMovieYear = 1800
	maxMovieYear = 2100
)

// MovieInput is the full editable state of a movie. Update replaces every
// field, including the genre set.
type MovieInput struct {
	Title string
	// Slug overrides the slug derived from Title on create only.
	Slug        string
	WhutSummary string
	Description *string
	Year        *int
	GenreIDs    []string
	GenreSlugs  []string
	PosterURL   string
}

type MovieService interface {
	List(ctx context.Context, filter repository.MovieFilter) ([]models.Movie, int64, error)
	Get(ctx context.Context, key string) (*models.Movie, error)
	Create(ctx context.Context, input MovieInput) (*models.Movie, error)
	Update(ctx context.Context, id string, input MovieInput) (*models.Movie, error)
	Delete(ctx context.Context, id string) error
}

type movieService struct {
	repo      repository.MovieRepository
	genreRepo repository.GenreRepository
	posters   PosterStorage
	pages     PageInvalidator
	logger    *logrus.Logger
}

// NewMovieService wires the movie rules. posters may be nil when no object
// storage is configured.
func NewMovieService(repo repository.MovieRepository, genreRepo repository.GenreRepository, posters PosterStorage, pages PageInvalidator, logger *logrus.Logger) MovieService {
	return &movieService{
		repo:      repo,
		genreRepo: genreRepo,
		posters:   posters,
		pages:     pages,
		logger:    logger,
	}
}

func (s *movieService) List(ctx context.Context, filter repository.MovieFilter) ([]models.Movie, int64, error) {
	if filter.Sort != repository.MovieSortTitle {
		filter.Sort = repository.MovieSortYear
	}
	movies, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, total, nil
}

func (s *movieService) Get(ctx context.Context, key string) (*models.Movie, error) {
	movie, err := s.repo.FindByIDOrSlug(ctx, key)
	if err != nil {
		return nil, fromRepository(err, "movie")
	}
	return movie, nil
}

func (s *movieService) Create(ctx context.Context, input MovieInput) (*models.Movie, error) {
	movie, err := movieFromInput(input, true)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, movie, genres); err != nil {
		return nil, fromRepository(err, "movie")
	}

	invalidatePages(ctx, s.pages, PageGroupMovies, PageGroupGenres)
	s.logger.WithFields(logrus.Fields{"movie_id": movie.ID, "slug": movie.Slug}).Info("Movie created")
	return movie, nil
}

func (s *movieService) Update(ctx context.Context, id string, input MovieInput) (*models.Movie, error) {
	movie, err := movieFromInput(input, false)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByIDOrSlug(ctx, id)
	if err != nil {
		return nil, fromRepository(err, "movie")
	}

	movie.ID = existing.ID
	movie.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, movie, genres); err != nil {
		return nil, fromRepository(err, "movie")
	}

	if existing.PosterURL != movie.PosterURL {
		s.deletePoster(ctx, existing.PosterURL)
	}

	invalidatePages(ctx, s.pages, allPageGroups...)
	s.logger.WithFields(logrus.Fields{"movie_id": movie.ID, "slug": movie.Slug}).Info("Movie updated")
	return s.Get(ctx, movie.ID)
}

func (s *movieService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByIDOrSlug(ctx, id)
	if err != nil {
		return fromRepository(err, "movie")
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return fromRepository(err, "movie")
	}
	s.deletePoster(ctx, existing.PosterURL)

	invalidatePages(ctx, s.pages, allPageGroups...)
	s.logger.WithFields(logrus.Fields{
		"movie_id":    existing.ID,
		"assignments": len(existing.Assignments),
	}).Info("Movie deleted")
	return nil
}

func (s *movieService) deletePoster(ctx context.Context, publicURL string) {
	if s.posters == nil || !s.posters.Owns(publicURL) {
		return
	}
	if err := s.posters.Delete(ctx, publicURL); err != nil {
		s.logger.WithError(err).Warn("Failed to delete old poster")
	}
}

// resolveGenres loads every referenced genre and fails on unknown ones.
func (s *movieService) resolveGenres(ctx context.Context, input MovieInput) ([]models.Genre, error) {
	ids := uniqueNonEmpty(input.GenreIDs)
	slugs := uniqueNonEmpty(input.GenreSlugs)

	byID := make(map[string]models.Genre)
	if len(ids) > 0 {
		found, err := s.genreRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load genres: %w", err)
		}
		if len(found) != len(ids) {
			return nil, invalid("genreIds", "One or more genres do not exist")
		}
		for _, g := range found {
			byID[g.ID] = g
		}
	}
	if len(slugs) > 0 {
		found, err := s.genreRepo.FindBySlugs(ctx, slugs)
		if err != nil {
			return nil, fmt.Errorf("failed to load genres: %w", err)
		}
		if len(found) != len(slugs) {
			return nil, invalid("genreSlugs", "One or more genres do not exist")
		}
		for _, g := range found {
			byID[g.ID] = g
		}
	}

	genres := make([]models.Genre, 0, len(byID))
	for _, g := range byID {
		genres = append(genres, g)
	}
	return genres, nil
}

func movieFromInput(input MovieInput, allowSlugOverride bool) (*models.Movie, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title", "Title is required")
	}
	summary := strings.TrimSpace(input.WhutSummary)
	if summary == "" {
		return nil, invalid("whutSummary", "Whut summary is required")
	}
	if input.Year != nil && (*input.Year < minMovieYear || *input.Year > maxMovieYear) {
		return nil, invalid("year", "Year must be between %d and %d", minMovieYear, maxMovieYear)
	}

	slugSource := title
	if allowSlugOverride && strings.TrimSpace(input.Slug) != "" {
		slugSource = input.Slug
	}
	slug, err := slugFor("title", slugSource)
	if err != nil {
		return nil, err
	}

	return &models.Movie{
		Title:       title,
		Slug:        slug,
		Year:        input.Year,
		WhutSummary: summary,
		Description: trimmedOrNil(input.Description),
		PosterURL:   strings.TrimSpace(input.PosterURL),
	}, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
