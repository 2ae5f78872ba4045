package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AchievementProgressType selects the evaluator for an achievement. The set
// is closed: each variant maps to exactly one progress function in the
// achievement service.
type AchievementProgressType string

const (
	ProgressFirstPlaceAdded        AchievementProgressType = "first_place_added"
	ProgressReviewsCount           AchievementProgressType = "reviews_count"
	ProgressPhotosCount            AchievementProgressType = "photos_count"
	ProgressDetailedReviewsCount   AchievementProgressType = "detailed_reviews_count"
	ProgressBalancedReviews        AchievementProgressType = "balanced_reviews"
	ProgressNewPlacesAdded         AchievementProgressType = "new_places_added"
	ProgressHighRatedHealthyPlaces AchievementProgressType = "high_rated_healthy_places"
	ProgressTopThreeRating         AchievementProgressType = "top_three_rating"
	ProgressPlacesReviewedByOthers AchievementProgressType = "places_reviewed_by_others"
	ProgressAllRatingsUsed         AchievementProgressType = "all_ratings_used"
	ProgressPlacesInOneDay         AchievementProgressType = "places_in_one_day"
)

// Achievement is a static gamification badge definition, seeded at startup.
type Achievement struct {
	ID           uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string                  `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Title        string                  `gorm:"size:100;not null" json:"title"`
	Description  string                  `gorm:"size:300" json:"description"`
	Icon         string                  `gorm:"size:16" json:"icon"`
	ProgressType AchievementProgressType `gorm:"size:40;not null" json:"progress_type"`
	TargetValue  int                     `gorm:"not null;default:0" json:"target_value"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
