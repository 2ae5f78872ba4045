package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement records a badge a user has earned. Append-only: rows are
// never removed or re-evaluated, so achievements cannot be revoked even if
// the underlying counts later drop.
type UserAchievement struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	AchievementID uuid.UUID `gorm:"type:uuid;primaryKey" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`

	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"-"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
