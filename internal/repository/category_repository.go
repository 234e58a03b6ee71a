package repository

import (
	"context"
	"errors"
	"time"

	"whutmovie/internal/database"
	"whutmovie/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryFilter struct {
	Page               Page
	Genre              string // genre slug; keeps categories with a ranked pick in it
	IncludeAssignments bool
}

// AssignResult describes what an assignment replaced.
type AssignResult struct {
	Assignment *models.CategoryAssignment
	// Displaced holds the other movie's assignment that occupied the rank.
	Displaced []models.CategoryAssignment
	// Previous holds the movie's own earlier slot in the category.
	Previous []models.CategoryAssignment
}

type CategoryRepository interface {
	// Create inserts the category together with its initial assignments.
	Create(ctx context.Context, category *models.Category, assignments []models.CategoryAssignment) error
	Update(ctx context.Context, category *models.Category) error
	// Delete removes the category and its assignments.
	Delete(ctx context.Context, id string) error
	FindByIDOrSlug(ctx context.Context, key string) (*models.Category, error)
	FindAll(ctx context.Context, filter CategoryFilter) ([]models.Category, int64, error)
	FindIncomplete(ctx context.Context) ([]models.CategorySketch, error)
	Count(ctx context.Context) (int64, error)

	// AssignMovie atomically evicts the holder of the requested rank (if
	// any), evicts the movie's current slot in the category (if any) and
	// inserts the new assignment.
	AssignMovie(ctx context.Context, assignment *models.CategoryAssignment) (*AssignResult, error)
	RemoveAssignment(ctx context.Context, categoryID, movieID string) error
	UpdateAngleLabel(ctx context.Context, categoryID, movieID string, label *string) (*models.CategoryAssignment, error)
}

type categoryRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewCategoryRepository(db *database.Database) CategoryRepository {
	return &categoryRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *categoryRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.timeout)
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category, assignments []models.CategoryAssignment) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(category).Error; err != nil {
			return translateError(err)
		}
		if len(assignments) == 0 {
			return nil
		}

		if err := ensureMoviesExist(tx, assignments); err != nil {
			return err
		}
		for i := range assignments {
			assignments[i].CategoryID = category.ID
		}
		if err := tx.Omit(clause.Associations).Create(&assignments).Error; err != nil {
			return translateError(err)
		}
		category.Assignments = assignments
		return nil
	})
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"title":       category.Title,
			"slug":        category.Slug,
			"description": category.Description,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "category"}
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CategoryAssignment{}).Error; err != nil {
			return translateError(err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Category{})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Entity: "category"}
		}
		return nil
	})
}

func (r *categoryRepository) FindByIDOrSlug(ctx context.Context, key string) (*models.Category, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Assignments.Movie").
		Where("id = ? OR slug = ?", key, key).
		First(&category).Error
	if err != nil {
		return nil, translateError(err)
	}
	category.SortAssignments()
	category.MarkCompleteness()
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context, filter CategoryFilter) ([]models.Category, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var categories []models.Category
	var total int64

	db := r.db.WithContext(ctx)
	query := db.Model(&models.Category{})

	if filter.Genre != "" {
		sub := db.Table("category_assignments").
			Select("category_assignments.category_id").
			Joins("JOIN "+models.MovieGenreTable+" ON movie_genres.movie_id = category_assignments.movie_id").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("genres.slug = ? AND category_assignments.is_honorable_mention = ?", filter.Genre, false)
		query = query.Where("categories.id IN (?)", sub)
	}

	base := query.Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	page := base.Order("categories.created_at DESC").Order("categories.title ASC").Offset(filter.Page.Offset()).Limit(filter.Page.Size)
	if filter.IncludeAssignments {
		page = page.Preload("Assignments.Movie")
	}
	if err := page.Find(&categories).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if filter.IncludeAssignments {
		for i := range categories {
			categories[i].SortAssignments()
			categories[i].MarkCompleteness()
		}
		return categories, total, nil
	}

	if err := r.markCompleteness(db, categories); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// markCompleteness sets IsComplete without loading the assignments.
func (r *categoryRepository) markCompleteness(db *gorm.DB, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	var rows []struct {
		CategoryID string
		Total      int
	}
	err := db.Model(&models.CategoryAssignment{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IN ? AND is_honorable_mention = ? AND rank IS NOT NULL", ids, false).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return translateError(err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	for i := range categories {
		complete := counts[categories[i].ID] == models.RanksPerCategory
		categories[i].IsComplete = &complete
	}
	return nil
}

func (r *categoryRepository) FindIncomplete(ctx context.Context) ([]models.CategorySketch, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var sketches []models.CategorySketch
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.title, c.slug, COUNT(a.id) AS ranked_picks
		FROM categories c
		LEFT JOIN category_assignments a
			ON a.category_id = c.id AND a.is_honorable_mention = ? AND a.rank IS NOT NULL
		GROUP BY c.id, c.title, c.slug
		HAVING COUNT(a.id) <> ?
		ORDER BY c.title ASC`, false, models.RanksPerCategory).
		Scan(&sketches).Error
	return sketches, translateError(err)
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error
	return count, translateError(err)
}

func (r *categoryRepository) AssignMovie(ctx context.Context, assignment *models.CategoryAssignment) (*AssignResult, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := &AssignResult{Assignment: assignment}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Concurrent reassignments in one category queue on this row lock.
		lock := tx
		if r.db.IsPostgres() {
			lock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var category models.Category
		if err := lock.Select("id").Where("id = ?", assignment.CategoryID).First(&category).Error; err != nil {
			err = translateError(err)
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Entity: "category"}
			}
			return err
		}

		if err := ensureMoviesExist(tx, []models.CategoryAssignment{*assignment}); err != nil {
			return err
		}

		if assignment.Rank != nil {
			err := tx.Where("category_id = ? AND rank = ? AND movie_id <> ?",
				assignment.CategoryID, *assignment.Rank, assignment.MovieID).
				Find(&result.Displaced).Error
			if err != nil {
				return translateError(err)
			}
			if len(result.Displaced) > 0 {
				if err := tx.Delete(&result.Displaced).Error; err != nil {
					return translateError(err)
				}
			}
		}

		err := tx.Where("category_id = ? AND movie_id = ?", assignment.CategoryID, assignment.MovieID).
			Find(&result.Previous).Error
		if err != nil {
			return translateError(err)
		}
		if len(result.Previous) > 0 {
			if err := tx.Delete(&result.Previous).Error; err != nil {
				return translateError(err)
			}
		}

		assignment.ID = ""
		return translateError(tx.Omit(clause.Associations).Create(assignment).Error)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *categoryRepository) RemoveAssignment(ctx context.Context, categoryID, movieID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).
		Where("category_id = ? AND movie_id = ?", categoryID, movieID).
		Delete(&models.CategoryAssignment{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "assignment"}
	}
	return nil
}

func (r *categoryRepository) UpdateAngleLabel(ctx context.Context, categoryID, movieID string, label *string) (*models.CategoryAssignment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	result := db.Model(&models.CategoryAssignment{}).
		Where("category_id = ? AND movie_id = ?", categoryID, movieID).
		Update("angle_label", label)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "assignment"}
	}

	var assignment models.CategoryAssignment
	err := db.Preload("Movie").
		Where("category_id = ? AND movie_id = ?", categoryID, movieID).
		First(&assignment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &assignment, nil
}

func ensureMoviesExist(tx *gorm.DB, assignments []models.CategoryAssignment) error {
	seen := make(map[string]struct{}, len(assignments))
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.MovieID]; ok {
			continue
		}
		seen[a.MovieID] = struct{}{}
		ids = append(ids, a.MovieID)
	}

	var count int64
	if err := tx.Model(&models.Movie{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count != int64(len(ids)) {
		return &NotFoundError{Entity: "movie"}
	}
	return nil
}
