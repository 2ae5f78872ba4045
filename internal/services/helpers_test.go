package services_test

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/palmmap/palmmap/internal/database"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
	"github.com/palmmap/palmmap/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAchievements(db))
	return db
}

func newPhotoStore(t *testing.T) *storage.PhotoStore {
	t.Helper()
	ps, err := storage.NewPhotoStore(t.TempDir())
	require.NoError(t, err)
	return ps
}

// newReviewStack wires the review service with its collaborators against a
// fresh in-memory database.
func newReviewStack(t *testing.T) (*gorm.DB, *services.ReviewService) {
	t.Helper()
	db := newTestDB(t)
	photos := newPhotoStore(t)
	achievements := services.NewAchievementService(db)
	moderation := services.NewModerationService(db, photos)
	return db, services.NewReviewService(db, achievements, moderation, photos)
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:       email,
		Password:    "x",
		DisplayName: email,
		Level:       1,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := createUser(t, db, email)
	require.NoError(t, db.Model(user).Update("is_admin", true).Error)
	user.IsAdmin = true
	return user
}

func callerFor(u *models.User) identity.Caller {
	return identity.Caller{ID: u.ID, Email: u.Email, Admin: u.IsAdmin}
}

func createPlace(t *testing.T, db *gorm.DB, placeType string, creator *models.User) *models.Place {
	t.Helper()
	place := &models.Place{
		Name:      fmt.Sprintf("%s place", placeType),
		Type:      placeType,
		Latitude:  55.75,
		Longitude: 37.61,
	}
	if creator != nil {
		id := creator.ID
		place.CreatedByUserID = &id
	}
	require.NoError(t, db.Create(place).Error)
	return place
}

func approveAllReviews(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Model(&models.Review{}).
		Where("moderation_status = ?", models.ModerationPending).
		Update("moderation_status", models.ModerationApproved).Error)
}

func intPtr(v int) *int { return &v }
