package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreSlugFollowsName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	genre, err := f.genres.Create(ctx, GenreInput{Name: "Sci Fi", Slug: "science-fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", genre.Slug)

	updated, err := f.genres.Update(ctx, genre.ID, GenreInput{Name: "Space Opera"})
	require.NoError(t, err)
	assert.Equal(t, "space-opera", updated.Slug)

	_, err = f.genres.Create(ctx, GenreInput{Name: "Space Opera"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestGenreRejectsUnsluggableName(t *testing.T) {
	f := newFixture(t)

	_, err := f.genres.Create(context.Background(), GenreInput{Name: "!!!"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestDeleteGenreNeedsForceWhenInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drama := f.genre(t, "Drama")
	movie := f.movie(t, "Whiplash", drama.ID)

	err := f.genres.Delete(ctx, drama.ID, false)
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, int64(1), inv.Details["movieCount"])
	assert.Contains(t, inv.Message, "force=true")

	require.NoError(t, f.genres.Delete(ctx, drama.ID, true))

	survivor, err := f.movies.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.Genres)
}

func TestDeleteUnusedGenre(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	western := f.genre(t, "Western")

	require.NoError(t, f.genres.Delete(ctx, western.Slug, false))

	_, err := f.genres.Get(ctx, western.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListGenresWithMovieCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	horror := f.genre(t, "Horror")
	f.genre(t, "Comedy")
	f.movie(t, "Get Out", horror.ID)
	f.movie(t, "Us", horror.ID)

	genres, total, err := f.genres.List(ctx, pageOf(1, 50), true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, genres, 2)
	assert.Equal(t, "Comedy", genres[0].Name)
	require.NotNil(t, genres[0].MovieCount)
	assert.Equal(t, int64(0), *genres[0].MovieCount)
	assert.Equal(t, int64(2), *genres[1].MovieCount)

	genres, _, err = f.genres.List(ctx, pageOf(1, 50), false)
	require.NoError(t, err)
	assert.Nil(t, genres[0].MovieCount)
}
