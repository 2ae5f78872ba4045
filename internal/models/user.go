package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries the gamification counters alongside identity.
// Level is derived from ReviewCount and recomputed on every review
// create/delete through RecalcLevel.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	DisplayName  string         `gorm:"size:100" json:"display_name"`
	AvatarURL    string         `gorm:"size:500" json:"avatar_url,omitempty"`
	Level        int            `gorm:"not null;default:1" json:"level"`
	ReviewCount  int            `gorm:"not null;default:0" json:"review_count"`
	Points       int            `gorm:"not null;default:0" json:"points"`
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`
	AuthProvider string         `gorm:"size:50;default:'email'" json:"-"`
	VKUserID     *string        `gorm:"size:255;index" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RecalcLevel applies level = max(1, 1 + reviewCount/5).
func (u *User) RecalcLevel() {
	u.Level = 1 + u.ReviewCount/5
	if u.Level < 1 {
		u.Level = 1
	}
}
