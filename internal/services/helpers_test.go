package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"whutmovie/internal/database"
	"whutmovie/internal/models"
	"whutmovie/internal/repository"
	"whutmovie/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testCost = bcrypt.MinCost

type fixture struct {
	db         *database.Database
	pages      *recordingInvalidator
	userRepo   repository.AdminUserRepository
	sessions   *SessionStore
	auth       AuthService
	users      UserService
	genres     GenreService
	movies     MovieService
	categories CategoryService
	dashboard  DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDatabase(t)
	logger := testutil.NewLogger()
	pages := &recordingInvalidator{}

	userRepo := repository.NewAdminUserRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	sessions := NewSessionStore(repository.NewSessionRepository(db), 7*24*time.Hour, logger)

	return &fixture{
		db:         db,
		pages:      pages,
		userRepo:   userRepo,
		sessions:   sessions,
		auth:       NewAuthService(userRepo, sessions, testCost, logger),
		users:      NewUserService(userRepo, testCost, logger),
		genres:     NewGenreService(genreRepo, pages, logger),
		movies:     NewMovieService(movieRepo, genreRepo, nil, pages, logger),
		categories: NewCategoryService(categoryRepo, pages, logger),
		dashboard:  NewDashboardService(movieRepo, genreRepo, categoryRepo),
	}
}

func (f *fixture) admin(t *testing.T, username, password string) *models.AdminUser {
	t.Helper()
	user, err := f.users.Create(context.Background(), CreateUserInput{Username: username, Password: password})
	require.NoError(t, err)
	return user
}

func (f *fixture) genre(t *testing.T, name string) *models.Genre {
	t.Helper()
	genre, err := f.genres.Create(context.Background(), GenreInput{Name: name})
	require.NoError(t, err)
	return genre
}

func (f *fixture) movie(t *testing.T, title string, genreIDs ...string) *models.Movie {
	t.Helper()
	movie, err := f.movies.Create(context.Background(), MovieInput{
		Title:       title,
		WhutSummary: title + " but make it weird",
		GenreIDs:    genreIDs,
	})
	require.NoError(t, err)
	return movie
}

func (f *fixture) category(t *testing.T, title string) *models.Category {
	t.Helper()
	category, err := f.categories.Create(context.Background(), CategoryInput{
		Title:       title,
		Description: title + " description",
	})
	require.NoError(t, err)
	return category
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

type recordingInvalidator struct {
	mu     sync.Mutex
	groups []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, groups ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, groups...)
}

func (r *recordingInvalidator) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = nil
}

func (r *recordingInvalidator) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.groups...)
}
