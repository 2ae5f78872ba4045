package database

import (
	"errors"
	"fmt"

	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

// achievementSeeds is the static badge catalog. Rows are matched by code, so
// re-running the seed on every startup is safe; titles and targets of
// existing rows are left untouched.
var achievementSeeds = []models.Achievement{
	{
		Code:         "first-steps",
		Title:        "First Steps",
		Description:  "Add your first place to the map",
		Icon:         "👣",
		ProgressType: models.ProgressFirstPlaceAdded,
		TargetValue:  1,
	},
	{
		Code:         "attentive-citizen",
		Title:        "Attentive Citizen",
		Description:  "Review 10 different places",
		Icon:         "👁️",
		ProgressType: models.ProgressReviewsCount,
		TargetValue:  10,
	},
	{
		Code:         "health-photographer",
		Title:        "Health Photographer",
		Description:  "Attach photos to 15 reviews",
		Icon:         "📸",
		ProgressType: models.ProgressPhotosCount,
		TargetValue:  15,
	},
	{
		Code:         "storyteller",
		Title:        "Storyteller",
		Description:  "Write 10 detailed reviews",
		Icon:         "✍️",
		ProgressType: models.ProgressDetailedReviewsCount,
		TargetValue:  10,
	},
	{
		Code:         "balanced-explorer",
		Title:        "Balanced Explorer",
		Description:  "Review 2 places in each major category",
		Icon:         "⚖️",
		ProgressType: models.ProgressBalancedReviews,
		TargetValue:  2,
	},
	{
		Code:         "cartographer",
		Title:        "Cartographer",
		Description:  "Add 3 new places to the map",
		Icon:         "🗺️",
		ProgressType: models.ProgressNewPlacesAdded,
		TargetValue:  3,
	},
	{
		Code:         "healthy-gourmet",
		Title:        "Healthy Gourmet",
		Description:  "10 healthy food spots rated 4.5 or higher",
		Icon:         "🥗",
		ProgressType: models.ProgressHighRatedHealthyPlaces,
		TargetValue:  10,
	},
	{
		Code:         "podium",
		Title:        "On the Podium",
		Description:  "Reach the top 3 of the user leaderboard",
		Icon:         "🏆",
		ProgressType: models.ProgressTopThreeRating,
		TargetValue:  1,
	},
	{
		Code:         "community-magnet",
		Title:        "Community Magnet",
		Description:  "5 of your places reviewed by other users",
		Icon:         "🧲",
		ProgressType: models.ProgressPlacesReviewedByOthers,
		TargetValue:  5,
	},
	{
		Code:         "full-spectrum",
		Title:        "Full Spectrum",
		Description:  "Use every rating from 1 to 5 stars",
		Icon:         "🌈",
		ProgressType: models.ProgressAllRatingsUsed,
		TargetValue:  5,
	},
	{
		Code:         "marathon-mapper",
		Title:        "Marathon Mapper",
		Description:  "Add 3 places in a single day",
		Icon:         "🏃",
		ProgressType: models.ProgressPlacesInOneDay,
		TargetValue:  3,
	},
}

// SeedAchievements inserts any badge definitions missing from the database.
func SeedAchievements(db *gorm.DB) error {
	for _, seed := range achievementSeeds {
		var existing models.Achievement
		err := db.Where("code = ?", seed.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check achievement %s: %w", seed.Code, err)
		}
		if err := db.Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", seed.Code, err)
		}
	}
	return nil
}
