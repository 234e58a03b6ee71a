package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is an opaque login credential. Token is the 64-char hex value
// carried by the session cookie.
type Session struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	UserID    string     `gorm:"index;not null;size:36" json:"userId"`
	User      *AdminUser `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ExpiresAt time.Time  `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the session is no longer usable at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
