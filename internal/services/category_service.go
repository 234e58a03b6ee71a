package services

import (
	"context"
	"fmt"
	"strings"

	"whutmovie/internal/metrics"
	"whutmovie/internal/models"
	"whutmovie/internal/repository"

	"github.com/sirupsen/logrus"
)

type PickInput struct {
	MovieID string
	Rank    int
}

type CategoryInput struct {
	Title             string
	Description       string
	Picks             []PickInput
	HonorableMentions []string
}

// CategoryUpdateInput carries a partial update; nil fields are left alone.
type CategoryUpdateInput struct {
	Title       *string
	Description *string
}

type AssignInput struct {
	MovieID            string
	Rank               *int
	IsHonorableMention bool
	AngleLabel         *string
}

type CategoryService interface {
	List(ctx context.Context, filter repository.CategoryFilter) ([]models.Category, int64, error)
	Get(ctx context.Context, key string) (*models.Category, error)
	Create(ctx context.Context, input CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, input CategoryUpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id string) error

	// Assign places a movie in a category. A ranked assignment evicts the
	// current holder of that rank, and any earlier slot of the same movie in
	// the category is replaced.
	Assign(ctx context.Context, categoryKey string, input AssignInput) (*models.CategoryAssignment, error)
	RemoveAssignment(ctx context.Context, categoryKey, movieID string) error
	UpdateAngleLabel(ctx context.Context, categoryKey, movieID string, label *string) (*models.CategoryAssignment, error)
}

type categoryService struct {
	repo   repository.CategoryRepository
	pages  PageInvalidator
	logger *logrus.Logger
}

func NewCategoryService(repo repository.CategoryRepository, pages PageInvalidator, logger *logrus.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		pages:  pages,
		logger: logger,
	}
}

func (s *categoryService) List(ctx context.Context, filter repository.CategoryFilter) ([]models.Category, int64, error) {
	categories, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

func (s *categoryService) Get(ctx context.Context, key string) (*models.Category, error) {
	category, err := s.repo.FindByIDOrSlug(ctx, key)
	if err != nil {
		return nil, fromRepository(err, "category")
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title", "Title is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, invalid("description", "Description is required")
	}
	slug, err := slugFor("title", title)
	if err != nil {
		return nil, err
	}
	assignments, err := initialAssignments(input.Picks, input.HonorableMentions)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Title: title, Slug: slug, Description: description}
	if err := s.repo.Create(ctx, category, assignments); err != nil {
		return nil, fromRepository(err, "category")
	}

	invalidatePages(ctx, s.pages, PageGroupCategories, PageGroupMovies)
	s.logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"slug":        category.Slug,
		"assignments": len(assignments),
	}).Info("Category created")
	return s.Get(ctx, category.ID)
}

// initialAssignments validates the picks and honorable mentions of a new
// category as one set.
func initialAssignments(picks []PickInput, honorable []string) ([]models.CategoryAssignment, error) {
	seenMovies := make(map[string]struct{}, len(picks)+len(honorable))
	seenRanks := make(map[int]struct{}, len(picks))
	assignments := make([]models.CategoryAssignment, 0, len(picks)+len(honorable))

	for _, p := range picks {
		movieID := strings.TrimSpace(p.MovieID)
		if movieID == "" {
			return nil, invalid("picks", "Each pick needs a movieId")
		}
		if err := validateRank(p.Rank); err != nil {
			return nil, err
		}
		if _, ok := seenRanks[p.Rank]; ok {
			return nil, invalid("picks", "Rank %d is used more than once", p.Rank)
		}
		if _, ok := seenMovies[movieID]; ok {
			return nil, invalid("picks", "A movie can only be picked once per category")
		}
		seenRanks[p.Rank] = struct{}{}
		seenMovies[movieID] = struct{}{}

		rank := p.Rank
		assignments = append(assignments, models.CategoryAssignment{MovieID: movieID, Rank: &rank})
	}

	for _, id := range honorable {
		movieID := strings.TrimSpace(id)
		if movieID == "" {
			return nil, invalid("honorableMentions", "Honorable mentions must be movie ids")
		}
		if _, ok := seenMovies[movieID]; ok {
			return nil, invalid("honorableMentions", "Movie %s is already in picks or honorable mentions", movieID)
		}
		seenMovies[movieID] = struct{}{}
		assignments = append(assignments, models.CategoryAssignment{MovieID: movieID, IsHonorableMention: true})
	}

	return assignments, nil
}

func (s *categoryService) Update(ctx context.Context, id string, input CategoryUpdateInput) (*models.Category, error) {
	if input.Title == nil && input.Description == nil {
		return nil, invalid("", "No fields to update")
	}

	category, err := s.repo.FindByIDOrSlug(ctx, id)
	if err != nil {
		return nil, fromRepository(err, "category")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, invalid("title", "Title is required")
		}
		slug, err := slugFor("title", title)
		if err != nil {
			return nil, err
		}
		category.Title = title
		category.Slug = slug
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, invalid("description", "Description is required")
		}
		category.Description = description
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fromRepository(err, "category")
	}

	invalidatePages(ctx, s.pages, allPageGroups...)
	s.logger.WithFields(logrus.Fields{"category_id": category.ID, "slug": category.Slug}).Info("Category updated")
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	category, err := s.repo.FindByIDOrSlug(ctx, id)
	if err != nil {
		return fromRepository(err, "category")
	}
	if err := s.repo.Delete(ctx, category.ID); err != nil {
		return fromRepository(err, "category")
	}

	invalidatePages(ctx, s.pages, allPageGroups...)
	s.logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"assignments": len(category.Assignments),
	}).Info("Category deleted")
	return nil
}

func (s *categoryService) Assign(ctx context.Context, categoryKey string, input AssignInput) (*models.CategoryAssignment, error) {
	movieID := strings.TrimSpace(input.MovieID)
	if movieID == "" {
		return nil, invalid("movieId", "Movie is required")
	}

	assignment := &models.CategoryAssignment{
		MovieID:            movieID,
		IsHonorableMention: input.IsHonorableMention,
		AngleLabel:         trimmedOrNil(input.AngleLabel),
	}
	if input.IsHonorableMention {
		if input.Rank != nil {
			return nil, invalid("rank", "Honorable mentions cannot have a rank")
		}
	} else {
		if input.Rank == nil {
			return nil, invalid("rank", "Rank is required for a ranked pick")
		}
		if err := validateRank(*input.Rank); err != nil {
			return nil, err
		}
		rank := *input.Rank
		assignment.Rank = &rank
	}

	categoryID, err := s.resolveID(ctx, categoryKey)
	if err != nil {
		return nil, err
	}
	assignment.CategoryID = categoryID

	result, err := s.repo.AssignMovie(ctx, assignment)
	if err != nil {
		return nil, fromRepository(err, "assignment")
	}

	for _, d := range result.Displaced {
		metrics.RankDisplacements.Inc()
		s.logger.WithFields(logrus.Fields{
			"category_id": categoryID,
			"rank":        *d.Rank,
			"displaced":   d.MovieID,
			"movie_id":    movieID,
		}).Info("Ranked pick displaced")
	}

	invalidatePages(ctx, s.pages, PageGroupCategories, PageGroupMovies)
	s.logger.WithFields(logrus.Fields{
		"category_id": categoryID,
		"movie_id":    movieID,
		"honorable":   assignment.IsHonorableMention,
		"replaced":    len(result.Previous) > 0,
	}).Info("Movie assigned to category")
	return result.Assignment, nil
}

func (s *categoryService) RemoveAssignment(ctx context.Context, categoryKey, movieID string) error {
	categoryID, err := s.resolveID(ctx, categoryKey)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveAssignment(ctx, categoryID, movieID); err != nil {
		return fromRepository(err, "assignment")
	}

	invalidatePages(ctx, s.pages, PageGroupCategories, PageGroupMovies)
	s.logger.WithFields(logrus.Fields{"category_id": categoryID, "movie_id": movieID}).Info("Assignment removed")
	return nil
}

func (s *categoryService) UpdateAngleLabel(ctx context.Context, categoryKey, movieID string, label *string) (*models.CategoryAssignment, error) {
	categoryID, err := s.resolveID(ctx, categoryKey)
	if err != nil {
		return nil, err
	}
	assignment, err := s.repo.UpdateAngleLabel(ctx, categoryID, movieID, trimmedOrNil(label))
	if err != nil {
		return nil, fromRepository(err, "assignment")
	}

	// Movie detail pages embed their assignments.
	invalidatePages(ctx, s.pages, PageGroupCategories, PageGroupMovies)
	return assignment, nil
}

func (s *categoryService) resolveID(ctx context.Context, key string) (string, error) {
	category, err := s.repo.FindByIDOrSlug(ctx, key)
	if err != nil {
		return "", fromRepository(err, "category")
	}
	return category.ID, nil
}

func validateRank(rank int) error {
	if rank < 1 || rank > models.RanksPerCategory {
		return invalid("rank", "Rank must be 1, 2 or 3")
	}
	return nil
}
