package services_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func earnedCodes(earned []models.Achievement) []string {
	codes := make([]string, len(earned))
	for i, a := range earned {
		codes[i] = a.Code
	}
	return codes
}

func TestFirstPlaceAddedFiresOnce(t *testing.T) {
	db := newTestDB(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")

	createPlace(t, db, "pharmacy", user)

	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "first-steps")

	// The badge stays earned but must not be reported as new again.
	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "first-steps")
}

func TestReviewsCountApprovedOnly(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	for i := 0; i < 10; i++ {
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
	}

	// All pending: no credit yet.
	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "attentive-citizen")

	approveAllReviews(t, db)

	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "attentive-citizen")
}

func TestProgressPercentage(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	for i := 0; i < 3; i++ {
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
	}
	approveAllReviews(t, db)

	statuses, err := achievements.Snapshot(user.ID)
	require.NoError(t, err)

	var found bool
	for _, st := range statuses {
		if st.Achievement.Code == "attentive-citizen" {
			found = true
			// 3 of 10 distinct places.
			assert.Equal(t, 30, st.Progress)
			assert.False(t, st.Completed)
			assert.False(t, st.Earned)
		}
	}
	require.True(t, found)
}

func TestAchievementNeverRevoked(t *testing.T) {
	db := newTestDB(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")

	place := createPlace(t, db, "pharmacy", user)

	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	require.Contains(t, earnedCodes(result.NewlyEarned), "first-steps")

	// Removing the underlying place must not take the badge back.
	require.NoError(t, db.Delete(place).Error)

	statuses, err := achievements.Snapshot(user.ID)
	require.NoError(t, err)
	for _, st := range statuses {
		if st.Achievement.Code == "first-steps" {
			assert.True(t, st.Earned)
			assert.Equal(t, 100, st.Progress)
		}
	}
}

func TestSnapshotDoesNotAward(t *testing.T) {
	db := newTestDB(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")

	createPlace(t, db, "pharmacy", user)

	statuses, err := achievements.Snapshot(user.ID)
	require.NoError(t, err)
	for _, st := range statuses {
		if st.Achievement.Code == "first-steps" {
			assert.True(t, st.Completed)
			assert.False(t, st.Earned, "snapshot must stay read-only")
		}
	}

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAllRatingsUsed(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	for rating := 1; rating <= 5; rating++ {
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(rating),
		})
		require.NoError(t, err)
	}
	approveAllReviews(t, db)

	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "full-spectrum")
}

func TestDetailedReviewsCountLongCommentsOnly(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	longComment := strings.Repeat("a great experience ", 8) // > 100 chars
	for i := 0; i < 9; i++ {
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(4),
			Comment: longComment,
		})
		require.NoError(t, err)
	}
	_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
		Comment: "short",
	})
	require.NoError(t, err)
	approveAllReviews(t, db)

	// 9 detailed of target 10: not yet.
	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "storyteller")

	_, err = reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
		Comment: longComment,
	})
	require.NoError(t, err)
	approveAllReviews(t, db)

	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "storyteller")
}

func TestPlacesReviewedByOthers(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")

	for i := 0; i < 5; i++ {
		place := createPlace(t, db, "pharmacy", owner)
		_, err := reviews.Submit(callerFor(other), &dto.CreateReviewRequest{
			PlaceID: place.ID.String(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
	}
	approveAllReviews(t, db)

	result, err := achievements.Evaluate(owner.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "community-magnet")

	// The owner's own reviews never count toward it.
	result, err = achievements.Evaluate(other.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "community-magnet")
}

func TestTopThreeRating(t *testing.T) {
	db := newTestDB(t)
	achievements := services.NewAchievementService(db)

	var users []*models.User
	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		u := createUser(t, db, email)
		require.NoError(t, db.Model(u).Update("points", (4-i)*10).Error)
		users = append(users, u)
	}

	result, err := achievements.Evaluate(users[0].ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "podium")

	result, err = achievements.Evaluate(users[3].ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "podium")
}

func TestBalancedExplorerNeedsEveryBucket(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	reviewPlace := func(placeType string) {
		place := createPlace(t, db, placeType, nil)
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: place.ID.String(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
	}

	// Two healthy food spots, two gyms, but only one in the
	// pharmacy/alcohol bucket.
	for _, placeType := range []string{"healthy_food", "healthy_food", "gym", "gym", "pharmacy"} {
		reviewPlace(placeType)
	}
	approveAllReviews(t, db)

	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "balanced-explorer")

	statuses, err := achievements.Snapshot(user.ID)
	require.NoError(t, err)
	for _, st := range statuses {
		if st.Achievement.Code == "balanced-explorer" {
			// Progress tracks the weakest bucket: 1 of 2.
			assert.Equal(t, 50, st.Progress)
		}
	}

	// An alcohol shop review fills the shared bucket.
	reviewPlace("alcohol")
	approveAllReviews(t, db)

	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "balanced-explorer")
}

func TestHealthyGourmetNeedsHighAverages(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	rateHealthyPlace := func(rating int) {
		place := createPlace(t, db, "healthy_food", nil)
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: place.ID.String(),
			Rating:  intPtr(rating),
		})
		require.NoError(t, err)
	}

	// Nine places averaging 5 stars plus one at 3: the low one never counts.
	for i := 0; i < 9; i++ {
		rateHealthyPlace(5)
	}
	rateHealthyPlace(3)
	approveAllReviews(t, db)

	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "healthy-gourmet")

	rateHealthyPlace(5)
	approveAllReviews(t, db)

	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "healthy-gourmet")
}

func TestHealthPhotographerCountsPhotoReviews(t *testing.T) {
	db, reviews := newReviewStack(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	attachPhotos := func() {
		require.NoError(t, db.Model(&models.Review{}).
			Where("user_id = ? AND photo_path = ''", user.ID).
			Update("photo_path", "photo.jpg").Error)
	}

	for i := 0; i < 14; i++ {
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
	}
	attachPhotos()
	approveAllReviews(t, db)

	// 14 of 15 photo reviews.
	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "health-photographer")

	// A 15th review without a photo does not count either.
	last, err := reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
	})
	require.NoError(t, err)
	approveAllReviews(t, db)

	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, earnedCodes(result.NewlyEarned), "health-photographer")

	require.NoError(t, db.Model(&models.Review{}).
		Where("id = ?", last.Review.ID).
		Update("photo_path", "photo.jpg").Error)

	result, err = achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "health-photographer")
}

func TestMarathonMapper(t *testing.T) {
	db := newTestDB(t)
	achievements := services.NewAchievementService(db)
	user := createUser(t, db, "alice@example.com")

	for i := 0; i < 3; i++ {
		createPlace(t, db, "gym", user)
	}

	result, err := achievements.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, earnedCodes(result.NewlyEarned), "marathon-mapper")
}
