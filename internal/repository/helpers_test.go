package repository

import (
	"context"
	"testing"

	"whutmovie/internal/database"
	"whutmovie/internal/models"
	"whutmovie/internal/testutil"
	"whutmovie/internal/utils"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	db         *database.Database
	users      AdminUserRepository
	sessions   SessionRepository
	genres     GenreRepository
	movies     MovieRepository
	categories CategoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDatabase(t)
	return &fixture{
		db:         db,
		users:      NewAdminUserRepository(db),
		sessions:   NewSessionRepository(db),
		genres:     NewGenreRepository(db),
		movies:     NewMovieRepository(db),
		categories: NewCategoryRepository(db),
	}
}

func (f *fixture) genre(t *testing.T, name string) models.Genre {
	t.Helper()
	g := models.Genre{Name: name, Slug: utils.Slugify(name)}
	require.NoError(t, f.genres.Create(context.Background(), &g))
	return g
}

func (f *fixture) movie(t *testing.T, title string, genres ...models.Genre) models.Movie {
	t.Helper()
	m := models.Movie{Title: title, Slug: utils.Slugify(title), WhutSummary: title + " summary"}
	require.NoError(t, f.movies.Create(context.Background(), &m, genres))
	return m
}

func (f *fixture) category(t *testing.T, title string) models.Category {
	t.Helper()
	c := models.Category{Title: title, Slug: utils.Slugify(title), Description: title + " description"}
	require.NoError(t, f.categories.Create(context.Background(), &c, nil))
	return c
}

func rank(n int) *int {
	return &n
}

func pick(categoryID, movieID string, r int) *models.CategoryAssignment {
	return &models.CategoryAssignment{CategoryID: categoryID, MovieID: movieID, Rank: rank(r)}
}

func honorable(categoryID, movieID string) *models.CategoryAssignment {
	return &models.CategoryAssignment{CategoryID: categoryID, MovieID: movieID, IsHonorableMention: true}
}

// assertCategoryInvariants checks rank uniqueness and movie uniqueness
// straight from the table.
func assertCategoryInvariants(t *testing.T, db *database.Database, categoryID string) {
	t.Helper()
	var rows []models.CategoryAssignment
	require.NoError(t, db.Where("category_id = ?", categoryID).Find(&rows).Error)

	ranks := map[int]int{}
	movies := map[string]int{}
	for _, a := range rows {
		movies[a.MovieID]++
		if a.IsPick() {
			ranks[*a.Rank]++
			require.True(t, *a.Rank >= 1 && *a.Rank <= 3, "rank out of range: %d", *a.Rank)
		} else {
			require.Nil(t, a.Rank, "honorable mention with a rank")
		}
	}
	for r, n := range ranks {
		require.LessOrEqual(t, n, 1, "rank %d held %d times", r, n)
	}
	for m, n := range movies {
		require.LessOrEqual(t, n, 1, "movie %s appears %d times", m, n)
	}
}
