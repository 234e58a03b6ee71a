package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Movie struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	Title       string               `gorm:"uniqueIndex;not null;size:255" json:"title" example:"Inception"`
	Slug        string               `gorm:"uniqueIndex;not null;size:255" json:"slug" example:"inception"`
	Year        *int                 `gorm:"index" json:"year" example:"2010"`
	WhutSummary string               `gorm:"type:text;not null" json:"whutSummary" example:"A man falls asleep in a meeting and it gets out of hand."`
	Description *string              `gorm:"type:text" json:"description"`
	PosterURL   string               `gorm:"size:512" json:"posterUrl,omitempty"`
	Genres      []Genre              `gorm:"many2many:movie_genres;" json:"genres"`
	Assignments []CategoryAssignment `gorm:"foreignKey:MovieID" json:"assignments,omitempty"`
	CreatedAt   time.Time            `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func (Movie) TableName() string {
	return "movies"
}

func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
