package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" example:"5f0c6a1e-8f7a-4c1e-9a53-1d2b3c4d5e6f"`
	Username     string    `gorm:"uniqueIndex;not null;size:64" json:"username" example:"admin"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
