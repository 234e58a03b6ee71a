package services

import (
	"context"
	"fmt"

	"whutmovie/internal/models"
	"whutmovie/internal/repository"
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	// IncompleteCategories lists categories without exactly three ranked
	// picks, for the admin banner on public pages.
	IncompleteCategories(ctx context.Context) ([]models.CategorySketch, error)
}

type dashboardService struct {
	movies     repository.MovieRepository
	genres     repository.GenreRepository
	categories repository.CategoryRepository
}

func NewDashboardService(movies repository.MovieRepository, genres repository.GenreRepository, categories repository.CategoryRepository) DashboardService {
	return &dashboardService{
		movies:     movies,
		genres:     genres,
		categories: categories,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	totalMovies, err := s.movies.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}
	totalCategories, err := s.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	totalGenres, err := s.genres.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count genres: %w", err)
	}
	incomplete, err := s.IncompleteCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalMovies:          totalMovies,
		TotalCategories:      totalCategories,
		TotalGenres:          totalGenres,
		IncompleteCategories: incomplete,
	}, nil
}

func (s *dashboardService) IncompleteCategories(ctx context.Context) ([]models.CategorySketch, error) {
	sketches, err := s.categories.FindIncomplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete categories: %w", err)
	}
	if sketches == nil {
		sketches = []models.CategorySketch{}
	}
	return sketches, nil
}
