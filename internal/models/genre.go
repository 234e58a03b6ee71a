package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Genre struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"uniqueIndex;not null;size:100" json:"name" example:"Science Fiction"`
	Slug       string    `gorm:"uniqueIndex;not null;size:120" json:"slug" example:"science-fiction"`
	MovieCount *int64    `gorm:"-" json:"movieCount,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Genre) TableName() string {
	return "genres"
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// MovieGenreTable is the join table behind Movie.Genres.
const MovieGenreTable = "movie_genres"
