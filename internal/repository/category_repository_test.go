package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"whutmovie/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignMovieDisplacesRankHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inception := f.movie(t, "Inception")
	looper := f.movie(t, "Looper")
	category := f.category(t, "Time Is a Lie")

	_, err := f.categories.AssignMovie(ctx, pick(category.ID, inception.ID, 1))
	require.NoError(t, err)

	result, err := f.categories.AssignMovie(ctx, pick(category.ID, looper.ID, 1))
	require.NoError(t, err)
	require.Len(t, result.Displaced, 1)
	assert.Equal(t, inception.ID, result.Displaced[0].MovieID)

	loaded, err := f.categories.FindByIDOrSlug(ctx, category.Slug)
	require.NoError(t, err)
	require.Len(t, loaded.Assignments, 1)
	assert.Equal(t, looper.ID, loaded.Assignments[0].MovieID)
	assert.Equal(t, 1, *loaded.Assignments[0].Rank)

	// The displaced movie itself is untouched.
	still, err := f.movies.FindByIDOrSlug(ctx, "inception")
	require.NoError(t, err)
	assert.Equal(t, "Inception", still.Title)

	assertCategoryInvariants(t, f.db, category.ID)
}

func TestAssignMovieConcurrentReassignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.category(t, "Crowded Podium")

	const workers = 8
	movies := make([]models.Movie, workers)
	for i := range movies {
		movies[i] = f.movie(t, fmt.Sprintf("Contender %d", i))
	}

	// run fires every assignment at once and returns how many landed.
	run := func(assignments []*models.CategoryAssignment) int {
		errs := make([]error, len(assignments))
		var wg sync.WaitGroup
		for i, a := range assignments {
			wg.Add(1)
			go func(i int, a *models.CategoryAssignment) {
				defer wg.Done()
				_, errs[i] = f.categories.AssignMovie(ctx, a)
			}(i, a)
		}
		wg.Wait()

		landed := 0
		for _, err := range errs {
			if err == nil {
				landed++
				continue
			}
			var dup *DuplicateError
			require.ErrorAs(t, err, &dup, "only a unique clash may reject a concurrent assignment")
		}
		return landed
	}

	// Everyone wants rank 1.
	batch := make([]*models.CategoryAssignment, workers)
	for i, m := range movies {
		batch[i] = pick(category.ID, m.ID, 1)
	}
	require.Positive(t, run(batch))
	assertCategoryInvariants(t, f.db, category.ID)

	var holders []models.CategoryAssignment
	require.NoError(t, f.db.Where("category_id = ? AND rank = ?", category.ID, 1).Find(&holders).Error)
	require.Len(t, holders, 1)

	// One movie pulled into every rank and the honorable list at once.
	star := movies[0].ID
	batch = []*models.CategoryAssignment{
		pick(category.ID, star, 1),
		pick(category.ID, star, 2),
		pick(category.ID, star, 3),
		honorable(category.ID, star),
		pick(category.ID, movies[1].ID, 2),
		pick(category.ID, movies[2].ID, 3),
	}
	require.Positive(t, run(batch))
	assertCategoryInvariants(t, f.db, category.ID)

	var slots int64
	require.NoError(t, f.db.Model(&models.CategoryAssignment{}).
		Where("category_id = ? AND movie_id = ?", category.ID, star).
		Count(&slots).Error)
	assert.Equal(t, int64(1), slots)
}

func TestAssignMovieMovesMovieWithinCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	heat := f.movie(t, "Heat")
	category := f.category(t, "Heists")

	_, err := f.categories.AssignMovie(ctx, pick(category.ID, heat.ID, 2))
	require.NoError(t, err)

	result, err := f.categories.AssignMovie(ctx, pick(category.ID, heat.ID, 3))
	require.NoError(t, err)
	assert.Empty(t, result.Displaced)
	require.Len(t, result.Previous, 1)
	assert.Equal(t, 2, *result.Previous[0].Rank)

	result, err = f.categories.AssignMovie(ctx, honorable(category.ID, heat.ID))
	require.NoError(t, err)
	require.Len(t, result.Previous, 1)

	loaded, err := f.categories.FindByIDOrSlug(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Assignments, 1)
	assert.True(t, loaded.Assignments[0].IsHonorableMention)
	assert.Nil(t, loaded.Assignments[0].Rank)

	assertCategoryInvariants(t, f.db, category.ID)
}

func TestAssignMovieKeepsInvariantsAcrossSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category := f.category(t, "Mind Benders")
	titles := []string{"Primer", "Memento", "Coherence", "Predestination", "Tenet"}
	var ids []string
	for _, title := range titles {
		ids = append(ids, f.movie(t, title).ID)
	}

	steps := []*models.CategoryAssignment{
		pick(category.ID, ids[0], 1),
		pick(category.ID, ids[1], 2),
		pick(category.ID, ids[2], 3),
		pick(category.ID, ids[3], 1),
		honorable(category.ID, ids[0]),
		honorable(category.ID, ids[4]),
		pick(category.ID, ids[4], 2),
		pick(category.ID, ids[1], 3),
		pick(category.ID, ids[0], 1),
	}
	for _, step := range steps {
		_, err := f.categories.AssignMovie(ctx, step)
		require.NoError(t, err)
		assertCategoryInvariants(t, f.db, category.ID)
	}

	loaded, err := f.categories.FindByIDOrSlug(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.RankedCount())
	require.NotNil(t, loaded.IsComplete)
	assert.True(t, *loaded.IsComplete)
}

func TestAssignMovieUnknownEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	movie := f.movie(t, "Arrival")
	category := f.category(t, "Linguistics")

	_, err := f.categories.AssignMovie(ctx, pick("missing", movie.ID, 1))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "category", nf.Entity)

	_, err = f.categories.AssignMovie(ctx, pick(category.ID, "missing", 1))
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "movie", nf.Entity)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorageRejectsDuplicateRank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.movie(t, "Alien")
	b := f.movie(t, "Aliens")
	category := f.category(t, "Space Horror")

	_, err := f.categories.AssignMovie(ctx, pick(category.ID, a.ID, 1))
	require.NoError(t, err)

	// Bypass the reassignment logic: the unique index must still hold.
	err = translateError(f.db.Create(&models.CategoryAssignment{CategoryID: category.ID, MovieID: b.ID, Rank: rank(1)}).Error)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "rank", dup.Field)

	err = translateError(f.db.Create(&models.CategoryAssignment{CategoryID: category.ID, MovieID: a.ID, IsHonorableMention: true}).Error)
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "movie", dup.Field)
}

func TestStorageRejectsRankOutOfRange(t *testing.T) {
	f := newFixture(t)

	movie := f.movie(t, "Gattaca")
	category := f.category(t, "Near Future")

	err := f.db.Create(&models.CategoryAssignment{CategoryID: category.ID, MovieID: movie.ID, Rank: rank(4)}).Error
	assert.Error(t, err)
}

func TestRemoveAssignmentAndAngleLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	movie := f.movie(t, "Palm Springs")
	category := f.category(t, "Loops")

	_, err := f.categories.AssignMovie(ctx, pick(category.ID, movie.ID, 1))
	require.NoError(t, err)

	label := "Rom-com twist"
	updated, err := f.categories.UpdateAngleLabel(ctx, category.ID, movie.ID, &label)
	require.NoError(t, err)
	require.NotNil(t, updated.AngleLabel)
	assert.Equal(t, label, *updated.AngleLabel)

	cleared, err := f.categories.UpdateAngleLabel(ctx, category.ID, movie.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.AngleLabel)

	require.NoError(t, f.categories.RemoveAssignment(ctx, category.ID, movie.ID))
	assert.ErrorIs(t, f.categories.RemoveAssignment(ctx, category.ID, movie.ID), ErrNotFound)

	_, err = f.categories.UpdateAngleLabel(ctx, category.ID, movie.ID, &label)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryCreateWithAssignmentsAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.movie(t, "Groundhog Day")
	b := f.movie(t, "Edge of Tomorrow")
	c := f.movie(t, "Happy Death Day")
	d := f.movie(t, "Russian Doll")

	category := models.Category{Title: "Again and Again", Slug: "again-and-again", Description: "Loops"}
	assignments := []models.CategoryAssignment{
		{MovieID: a.ID, Rank: rank(1)},
		{MovieID: b.ID, Rank: rank(2)},
		{MovieID: c.ID, Rank: rank(3)},
		{MovieID: d.ID, IsHonorableMention: true},
	}
	require.NoError(t, f.categories.Create(ctx, &category, assignments))

	loaded, err := f.categories.FindByIDOrSlug(ctx, "again-and-again")
	require.NoError(t, err)
	require.Len(t, loaded.Assignments, 4)
	assert.Equal(t, "Groundhog Day", loaded.Assignments[0].Movie.Title)
	assert.Equal(t, "Russian Doll", loaded.Assignments[3].Movie.Title)
	assert.True(t, *loaded.IsComplete)

	require.NoError(t, f.categories.Delete(ctx, category.ID))

	var remaining int64
	require.NoError(t, f.db.Model(&models.CategoryAssignment{}).Where("category_id = ?", category.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	count, err := f.movies.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	assert.ErrorIs(t, f.categories.Delete(ctx, category.ID), ErrNotFound)
}

func TestCategoryCreateRejectsUnknownMovie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category := models.Category{Title: "Ghost Picks", Slug: "ghost-picks", Description: "none"}
	err := f.categories.Create(ctx, &category, []models.CategoryAssignment{{MovieID: "nope", Rank: rank(1)}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.categories.FindByIDOrSlug(ctx, "ghost-picks")
	assert.ErrorIs(t, err, ErrNotFound, "category insert must roll back")
}

func TestCategoryFindAllGenreFilterAndCompleteness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scifi := f.genre(t, "Sci-Fi")
	drama := f.genre(t, "Drama")

	m1 := f.movie(t, "Moon", scifi)
	m2 := f.movie(t, "Her", drama, scifi)
	m3 := f.movie(t, "Manchester by the Sea", drama)

	lonely := f.category(t, "Lonely")
	sad := f.category(t, "Sad")
	empty := f.category(t, "Empty")

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []models.Category{lonely, sad, empty} {
		err := f.db.Model(&models.Category{}).
			Where("id = ?", c.ID).
			Update("created_at", created.Add(time.Duration(i)*time.Hour)).Error
		require.NoError(t, err)
	}

	for i, m := range []models.Movie{m1, m2, m3} {
		_, err := f.categories.AssignMovie(ctx, pick(lonely.ID, m.ID, i+1))
		require.NoError(t, err)
	}
	_, err := f.categories.AssignMovie(ctx, pick(sad.ID, m3.ID, 1))
	require.NoError(t, err)
	_, err = f.categories.AssignMovie(ctx, honorable(sad.ID, m1.ID))
	require.NoError(t, err)

	all, total, err := f.categories.FindAll(ctx, CategoryFilter{Page: Page{Number: 1, Size: 50}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, []string{"Empty", "Sad", "Lonely"}, []string{all[0].Title, all[1].Title, all[2].Title})
	assert.False(t, *all[0].IsComplete)
	assert.False(t, *all[1].IsComplete)
	assert.True(t, *all[2].IsComplete)

	// Honorable mentions do not qualify a category for a genre.
	filtered, total, err := f.categories.FindAll(ctx, CategoryFilter{Page: Page{Number: 1, Size: 50}, Genre: "sci-fi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Lonely", filtered[0].Title)

	withAssignments, _, err := f.categories.FindAll(ctx, CategoryFilter{Page: Page{Number: 1, Size: 1}, IncludeAssignments: true})
	require.NoError(t, err)
	require.Len(t, withAssignments, 1)
	assert.Empty(t, withAssignments[0].Assignments)

	incomplete, err := f.categories.FindIncomplete(ctx)
	require.NoError(t, err)
	require.Len(t, incomplete, 2)
	assert.Equal(t, "Empty", incomplete[0].Title)
	assert.Equal(t, 0, incomplete[0].RankedPicks)
	assert.Equal(t, "Sad", incomplete[1].Title)
	assert.Equal(t, 1, incomplete[1].RankedPicks)
}
