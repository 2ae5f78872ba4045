package dto

import (
	"time"

	"github.com/google/uuid"
)

// AchievementResponse describes a badge together with the caller's progress
// toward it. Earned badges always report progress 100.
type AchievementResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Progress    int        `json:"progress"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

type ProfileResponse struct {
	User         UserResponse          `json:"user"`
	Achievements []AchievementResponse `json:"achievements"`
}

type RatingEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Points      int       `json:"points"`
	Level       int       `json:"level"`
}

type RatingsResponse struct {
	Top      []RatingEntry `json:"top"`
	Position int           `json:"position"`
	Me       RatingEntry   `json:"me"`
}
