package services

import (
	"context"
	"testing"

	"whutmovie/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignDisplacesPreviousRankHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inception := f.movie(t, "Inception")
	assert.Equal(t, "inception", inception.Slug)
	looper := f.movie(t, "Looper")
	category := f.category(t, "Time Is a Lie")

	_, err := f.categories.Assign(ctx, category.Slug, AssignInput{MovieID: inception.ID, Rank: intPtr(1)})
	require.NoError(t, err)
	_, err = f.categories.Assign(ctx, category.Slug, AssignInput{MovieID: looper.ID, Rank: intPtr(1)})
	require.NoError(t, err)

	loaded, err := f.categories.Get(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Assignments, 1)
	assert.Equal(t, looper.ID, loaded.Assignments[0].MovieID)

	// Inception still exists and can take another slot.
	_, err = f.movies.Get(ctx, "inception")
	require.NoError(t, err)
	_, err = f.categories.Assign(ctx, category.ID, AssignInput{MovieID: inception.ID, IsHonorableMention: true})
	require.NoError(t, err)

	loaded, err = f.categories.Get(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Assignments, 2)
	assert.Equal(t, looper.ID, loaded.Assignments[0].MovieID)
	assert.Equal(t, inception.ID, loaded.Assignments[1].MovieID)
	assert.Nil(t, loaded.Assignments[1].Rank)
}

func TestAssignRejectsInvalidRanks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movie := f.movie(t, "Primer")
	category := f.category(t, "Time Is a Lie")

	tests := []struct {
		name  string
		input AssignInput
	}{
		{"rank four", AssignInput{MovieID: movie.ID, Rank: intPtr(4)}},
		{"rank zero", AssignInput{MovieID: movie.ID, Rank: intPtr(0)}},
		{"ranked without rank", AssignInput{MovieID: movie.ID}},
		{"honorable with rank", AssignInput{MovieID: movie.ID, Rank: intPtr(2), IsHonorableMention: true}},
		{"no movie", AssignInput{Rank: intPtr(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.categories.Assign(ctx, category.ID, tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	loaded, err := f.categories.Get(ctx, category.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Assignments)
}

func TestAssignRankFourMessage(t *testing.T) {
	f := newFixture(t)
	movie := f.movie(t, "Primer")
	category := f.category(t, "Time Is a Lie")

	_, err := f.categories.Assign(context.Background(), category.ID, AssignInput{MovieID: movie.ID, Rank: intPtr(4)})
	require.EqualError(t, err, "Rank must be 1, 2 or 3")
}

func TestAssignUnknownEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movie := f.movie(t, "Primer")
	category := f.category(t, "Time Is a Lie")

	var nf *NotFoundError
	_, err := f.categories.Assign(ctx, "missing", AssignInput{MovieID: movie.ID, Rank: intPtr(1)})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "category", nf.Entity)

	_, err = f.categories.Assign(ctx, category.ID, AssignInput{MovieID: "missing", Rank: intPtr(1)})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "movie", nf.Entity)
}

func TestCreateCategoryWithPicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c, d := f.movie(t, "Alien"), f.movie(t, "Aliens"), f.movie(t, "Prometheus"), f.movie(t, "Covenant")

	category, err := f.categories.Create(ctx, CategoryInput{
		Title:       "Space Is Hostile",
		Description: "Nobody can hear you review.",
		Picks: []PickInput{
			{MovieID: b.ID, Rank: 2},
			{MovieID: a.ID, Rank: 1},
			{MovieID: c.ID, Rank: 3},
		},
		HonorableMentions: []string{d.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "space-is-hostile", category.Slug)
	require.Len(t, category.Assignments, 4)
	assert.Equal(t, a.ID, category.Assignments[0].MovieID)
	assert.Equal(t, b.ID, category.Assignments[1].MovieID)
	assert.Equal(t, c.ID, category.Assignments[2].MovieID)
	assert.True(t, category.Assignments[3].IsHonorableMention)
	require.NotNil(t, category.IsComplete)
	assert.True(t, *category.IsComplete)
}

func TestCreateCategoryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.movie(t, "Alien"), f.movie(t, "Aliens")

	tests := []struct {
		name  string
		input CategoryInput
	}{
		{"missing title", CategoryInput{Description: "d"}},
		{"missing description", CategoryInput{Title: "T"}},
		{"duplicate rank", CategoryInput{Title: "T", Description: "d", Picks: []PickInput{{a.ID, 1}, {b.ID, 1}}}},
		{"movie picked twice", CategoryInput{Title: "T", Description: "d", Picks: []PickInput{{a.ID, 1}, {a.ID, 2}}}},
		{"rank out of range", CategoryInput{Title: "T", Description: "d", Picks: []PickInput{{a.ID, 4}}}},
		{"pick also honorable", CategoryInput{Title: "T", Description: "d", Picks: []PickInput{{a.ID, 1}}, HonorableMentions: []string{a.ID}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.categories.Create(ctx, tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	_, total, err := f.categories.List(ctx, repository.CategoryFilter{Page: pageOf(1, 50)})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateCategoryWithUnknownMovieWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, CategoryInput{
		Title:       "Ghost Picks",
		Description: "d",
		Picks:       []PickInput{{MovieID: "missing", Rank: 1}},
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = f.categories.Get(ctx, "ghost-picks")
	assert.ErrorAs(t, err, &nf)
}

func TestUpdateCategoryRegeneratesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.category(t, "Time Is a Lie")

	updated, err := f.categories.Update(ctx, category.ID, CategoryUpdateInput{Title: strPtr("Time Is Still a Lie")})
	require.NoError(t, err)
	assert.Equal(t, "time-is-still-a-lie", updated.Slug)

	_, err = f.categories.Update(ctx, category.ID, CategoryUpdateInput{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAngleLabelAndRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movie := f.movie(t, "Palm Springs")
	category := f.category(t, "Time Is a Lie")

	_, err := f.categories.Assign(ctx, category.ID, AssignInput{MovieID: movie.ID, IsHonorableMention: true})
	require.NoError(t, err)
	f.pages.reset()

	assignment, err := f.categories.UpdateAngleLabel(ctx, category.Slug, movie.ID, strPtr("  Rom-com twist "))
	require.NoError(t, err)
	require.NotNil(t, assignment.AngleLabel)
	assert.Equal(t, "Rom-com twist", *assignment.AngleLabel)
	assert.ElementsMatch(t, []string{PageGroupCategories, PageGroupMovies}, f.pages.seen())

	detail, err := f.movies.Get(ctx, movie.Slug)
	require.NoError(t, err)
	require.Len(t, detail.Assignments, 1)
	require.NotNil(t, detail.Assignments[0].AngleLabel)
	assert.Equal(t, "Rom-com twist", *detail.Assignments[0].AngleLabel)

	assignment, err = f.categories.UpdateAngleLabel(ctx, category.Slug, movie.ID, strPtr("   "))
	require.NoError(t, err)
	assert.Nil(t, assignment.AngleLabel)

	require.NoError(t, f.categories.RemoveAssignment(ctx, category.ID, movie.ID))

	var nf *NotFoundError
	require.ErrorAs(t, f.categories.RemoveAssignment(ctx, category.ID, movie.ID), &nf)
	assert.Equal(t, "assignment", nf.Entity)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.genre(t, "Drama")
	a, b, c := f.movie(t, "Alien"), f.movie(t, "Aliens"), f.movie(t, "Prometheus")

	_, err := f.categories.Create(ctx, CategoryInput{
		Title:       "Complete",
		Description: "d",
		Picks:       []PickInput{{a.ID, 1}, {b.ID, 2}, {c.ID, 3}},
	})
	require.NoError(t, err)
	partial := f.category(t, "Partial")
	_, err = f.categories.Assign(ctx, partial.ID, AssignInput{MovieID: a.ID, Rank: intPtr(1)})
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalMovies)
	assert.Equal(t, int64(2), stats.TotalCategories)
	assert.Equal(t, int64(1), stats.TotalGenres)
	require.Len(t, stats.IncompleteCategories, 1)
	assert.Equal(t, "partial", stats.IncompleteCategories[0].Slug)
	assert.Equal(t, 1, stats.IncompleteCategories[0].RankedPicks)
}
