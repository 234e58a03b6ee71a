package services

import (
	"context"
	"testing"

	"whutmovie/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageOf(number, size int) repository.Page {
	return repository.Page{Number: number, Size: size}
}

func TestCreateMovieDerivesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scifi := f.genre(t, "Sci-Fi")

	movie, err := f.movies.Create(ctx, MovieInput{
		Title:       "Inception",
		WhutSummary: "A heist, but the vault is a nap.",
		Year:        intPtr(2010),
		GenreSlugs:  []string{scifi.Slug},
	})
	require.NoError(t, err)
	assert.Equal(t, "inception", movie.Slug)
	require.Len(t, movie.Genres, 1)
	assert.Equal(t, scifi.ID, movie.Genres[0].ID)
}

func TestCreateMovieValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input MovieInput
		field string
	}{
		{"missing title", MovieInput{WhutSummary: "x"}, "title"},
		{"missing summary", MovieInput{Title: "Heat"}, "whutSummary"},
		{"year too early", MovieInput{Title: "Heat", WhutSummary: "x", Year: intPtr(1700)}, "year"},
		{"unknown genre id", MovieInput{Title: "Heat", WhutSummary: "x", GenreIDs: []string{"missing"}}, "genreIds"},
		{"unknown genre slug", MovieInput{Title: "Heat", WhutSummary: "x", GenreSlugs: []string{"nope"}}, "genreSlugs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.movies.Create(ctx, tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDuplicateMovieTitleConflicts(t *testing.T) {
	f := newFixture(t)
	f.movie(t, "Heat")

	_, err := f.movies.Create(context.Background(), MovieInput{Title: "Heat", WhutSummary: "again"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "title", conflict.Field)
}

func TestUpdateMovieRegeneratesSlugAndReplacesGenres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	action := f.genre(t, "Action")
	crime := f.genre(t, "Crime")
	movie := f.movie(t, "Heat", action.ID)

	updated, err := f.movies.Update(ctx, movie.ID, MovieInput{
		Title:       "Heat (1995)",
		Slug:        "ignored-on-update",
		WhutSummary: "Two men, one diner, zero chill.",
		GenreIDs:    []string{crime.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "heat-1995", updated.Slug)
	require.Len(t, updated.Genres, 1)
	assert.Equal(t, crime.ID, updated.Genres[0].ID)

	_, err = f.movies.Get(ctx, "heat")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteMovieCascadesAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drama := f.genre(t, "Drama")
	movie := f.movie(t, "Whiplash", drama.ID)
	category := f.category(t, "Tempo Tantrums")

	_, err := f.categories.Assign(ctx, category.ID, AssignInput{MovieID: movie.ID, Rank: intPtr(1)})
	require.NoError(t, err)

	f.pages.reset()
	require.NoError(t, f.movies.Delete(ctx, movie.Slug))
	assert.ElementsMatch(t, allPageGroups, f.pages.seen())

	loaded, err := f.categories.Get(ctx, category.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Assignments)

	genre, err := f.genres.Get(ctx, drama.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), *genre.MovieCount)
}

func TestListMoviesDefaultsToYearOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, m := range []MovieInput{
		{Title: "Alien", WhutSummary: "x", Year: intPtr(1979)},
		{Title: "Arrival", WhutSummary: "x", Year: intPtr(2016)},
		{Title: "Undated", WhutSummary: "x"},
	} {
		_, err := f.movies.Create(ctx, m)
		require.NoError(t, err)
	}

	movies, total, err := f.movies.List(ctx, repository.MovieFilter{Page: pageOf(1, 12), Sort: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, movies, 3)
	assert.Equal(t, "Arrival", movies[0].Title)
	assert.Equal(t, "Alien", movies[1].Title)
	assert.Equal(t, "Undated", movies[2].Title)
}
