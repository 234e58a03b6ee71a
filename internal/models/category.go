package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RanksPerCategory is the number of ranked picks a complete category holds.
const RanksPerCategory = 3

type Category struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	Title       string               `gorm:"uniqueIndex;not null;size:255" json:"title" example:"Time Is a Lie"`
	Slug        string               `gorm:"uniqueIndex;not null;size:255" json:"slug" example:"time-is-a-lie"`
	Description string               `gorm:"type:text;not null" json:"description"`
	Assignments []CategoryAssignment `gorm:"foreignKey:CategoryID" json:"assignments,omitempty"`
	IsComplete  *bool                `gorm:"-" json:"isComplete,omitempty"`
	CreatedAt   time.Time            `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CategoryAssignment places a movie in a category, either as a ranked pick
// (Rank 1..3) or as an honorable mention (Rank nil).
//
// (movie_id, category_id) and (category_id, rank) are unique. NULL ranks never
// collide, so any number of honorable mentions fit in one category.
type CategoryAssignment struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	CategoryID         string    `gorm:"size:36;not null;uniqueIndex:idx_assignment_movie_category,priority:2;uniqueIndex:idx_assignment_category_rank,priority:1" json:"categoryId"`
	MovieID            string    `gorm:"size:36;not null;index;uniqueIndex:idx_assignment_movie_category,priority:1" json:"movieId"`
	Rank               *int      `gorm:"uniqueIndex:idx_assignment_category_rank,priority:2;check:chk_assignment_rank,rank BETWEEN 1 AND 3" json:"rank"`
	IsHonorableMention bool      `gorm:"not null;default:false" json:"isHonorableMention"`
	AngleLabel         *string   `gorm:"size:255" json:"angleLabel"`
	Movie              *Movie    `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	Category           *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (CategoryAssignment) TableName() string {
	return "category_assignments"
}

func (a *CategoryAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsPick reports whether the assignment holds a ranked slot.
func (a CategoryAssignment) IsPick() bool {
	return !a.IsHonorableMention && a.Rank != nil
}

// SortAssignments orders ranked picks by rank, then honorable mentions by
// movie title.
func (c *Category) SortAssignments() {
	sort.SliceStable(c.Assignments, func(i, j int) bool {
		a, b := c.Assignments[i], c.Assignments[j]
		if a.IsPick() != b.IsPick() {
			return a.IsPick()
		}
		if a.IsPick() {
			return *a.Rank < *b.Rank
		}
		return strings.ToLower(movieTitle(a)) < strings.ToLower(movieTitle(b))
	})
}

// RankedCount returns how many ranked picks are loaded.
func (c *Category) RankedCount() int {
	n := 0
	for _, a := range c.Assignments {
		if a.IsPick() {
			n++
		}
	}
	return n
}

// MarkCompleteness sets IsComplete from the loaded assignments.
func (c *Category) MarkCompleteness() {
	complete := c.RankedCount() == RanksPerCategory
	c.IsComplete = &complete
}

func movieTitle(a CategoryAssignment) string {
	if a.Movie == nil {
		return ""
	}
	return a.Movie.Title
}
