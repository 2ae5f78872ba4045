package services_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDirectRating(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")

	result, err := reviews.Submit(callerFor(user), &dto.CreateReviewRequest{
		PlaceID:   uuid.NewString(),
		PlaceName: "Corner Pharmacy",
		Rating:    intPtr(4),
		Comment:   "Decent selection",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Review.Rating)
	assert.True(t, result.Review.IsDirectRating)
	assert.Equal(t, models.ModerationPending, result.Review.ModerationStatus)
}

func TestSubmitCriteriaRatingRoundsHalfUp(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")

	// Mean 4.5 rounds away from zero to 5.
	result, err := reviews.Submit(callerFor(user), &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		CriteriaRatings: map[string]int{
			"assortment":    5,
			"prices":        5,
			"service":       4,
			"accessibility": 4,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Review.Rating)
	assert.False(t, result.Review.IsDirectRating)
	assert.NotEmpty(t, result.Review.CriteriaRatings)

	// The stored row must also carry the flag, not just the in-memory struct.
	var stored models.Review
	require.NoError(t, db.First(&stored, "id = ?", result.Review.ID).Error)
	assert.False(t, stored.IsDirectRating)
	assert.NotEmpty(t, stored.CriteriaRatings)
}

func TestSubmitCommentLimitCountsCharacters(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	// 1500 Cyrillic characters are 3000 bytes; the limit is per character.
	result, err := reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
		Comment: strings.Repeat("ы", 1500),
	})
	require.NoError(t, err)
	assert.Equal(t, 1500, len([]rune(result.Review.Comment)))

	_, err = reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
		Comment: strings.Repeat("ы", 2001),
	})
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "comment", ve.Field)
}

func TestSubmitValidation(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	cases := []struct {
		name  string
		req   dto.CreateReviewRequest
		field string
	}{
		{
			name:  "missing place",
			req:   dto.CreateReviewRequest{Rating: intPtr(3)},
			field: "place_id",
		},
		{
			name:  "rating out of range",
			req:   dto.CreateReviewRequest{PlaceID: uuid.NewString(), Rating: intPtr(6)},
			field: "rating",
		},
		{
			name:  "neither rating nor criteria",
			req:   dto.CreateReviewRequest{PlaceID: uuid.NewString()},
			field: "rating",
		},
		{
			name: "wrong criteria count",
			req: dto.CreateReviewRequest{
				PlaceID:         uuid.NewString(),
				CriteriaRatings: map[string]int{"a": 5, "b": 4},
			},
			field: "criteria_ratings",
		},
		{
			name: "criterion out of range",
			req: dto.CreateReviewRequest{
				PlaceID:         uuid.NewString(),
				CriteriaRatings: map[string]int{"a": 5, "b": 4, "c": 3, "d": 0},
			},
			field: "criteria_ratings",
		},
		{
			name: "comment too long",
			req: dto.CreateReviewRequest{
				PlaceID: uuid.NewString(),
				Rating:  intPtr(3),
				Comment: strings.Repeat("x", 2001),
			},
			field: "comment",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reviews.Submit(caller, &tc.req)
			var ve *services.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSubmitDuplicateConflict(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)
	placeID := uuid.NewString()

	_, err := reviews.Submit(caller, &dto.CreateReviewRequest{PlaceID: placeID, Rating: intPtr(4)})
	require.NoError(t, err)

	_, err = reviews.Submit(caller, &dto.CreateReviewRequest{PlaceID: placeID, Rating: intPtr(2)})
	assert.ErrorIs(t, err, services.ErrDuplicateReview)

	// A different place is fine.
	_, err = reviews.Submit(caller, &dto.CreateReviewRequest{PlaceID: uuid.NewString(), Rating: intPtr(2)})
	assert.NoError(t, err)
}

func TestSubmitUpdatesCounters(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	for i := 0; i < 5; i++ {
		_, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
	}

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 5, fresh.ReviewCount)
	assert.Equal(t, 50, fresh.Points)
	assert.Equal(t, 2, fresh.Level)
}

func TestDeleteReviewTakesBackReward(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	var lastID uuid.UUID
	for i := 0; i < 5; i++ {
		result, err := reviews.Submit(caller, &dto.CreateReviewRequest{
			PlaceID: uuid.NewString(),
			Rating:  intPtr(4),
		})
		require.NoError(t, err)
		lastID = result.Review.ID
	}

	require.NoError(t, reviews.Delete(caller, lastID))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 4, fresh.ReviewCount)
	assert.Equal(t, 40, fresh.Points)
	assert.Equal(t, 1, fresh.Level)
}

func TestDeleteReviewFloorsAtZero(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	result, err := reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
	})
	require.NoError(t, err)

	// Drain the points earned by the submission before deleting.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("points", 0).Error)
	require.NoError(t, reviews.Delete(caller, result.Review.ID))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 0, fresh.ReviewCount)
	assert.Equal(t, 0, fresh.Points)
	assert.Equal(t, 1, fresh.Level)
}

func TestUpdateOwnerOnly(t *testing.T) {
	db, reviews := newReviewStack(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	result, err := reviews.Submit(callerFor(alice), &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(3),
	})
	require.NoError(t, err)

	_, err = reviews.Update(callerFor(bob), result.Review.ID, &dto.UpdateReviewRequest{Rating: intPtr(1)})
	assert.ErrorIs(t, err, services.ErrNotOwner)

	updated, err := reviews.Update(callerFor(alice), result.Review.ID, &dto.UpdateReviewRequest{Rating: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Rating)
}

func TestDeleteOwnerOnly(t *testing.T) {
	db, reviews := newReviewStack(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	result, err := reviews.Submit(callerFor(alice), &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(3),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, reviews.Delete(callerFor(bob), result.Review.ID), services.ErrNotOwner)
	assert.ErrorIs(t, reviews.Delete(callerFor(alice), uuid.New()), services.ErrReviewNotFound)
	assert.NoError(t, reviews.Delete(callerFor(alice), result.Review.ID))
}

func TestSubmitFlagsSuspiciousComment(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")

	result, err := reviews.Submit(callerFor(user), &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(3),
		Comment: "Visit https://cheap-meds.example for deals",
	})
	require.NoError(t, err)

	assert.True(t, result.Review.Flagged)
	assert.Equal(t, "url_not_allowed", result.Review.FlagReason)
	// Flagging is a hint for moderators; the review is still stored pending.
	assert.Equal(t, models.ModerationPending, result.Review.ModerationStatus)
}

func TestAttachPhotoReplacesPreviousFile(t *testing.T) {
	db := newTestDB(t)
	photos := newPhotoStore(t)
	achievements := services.NewAchievementService(db)
	moderation := services.NewModerationService(db, photos)
	reviews := services.NewReviewService(db, achievements, moderation, photos)

	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)
	result, err := reviews.Submit(caller, &dto.CreateReviewRequest{
		PlaceID: uuid.NewString(),
		Rating:  intPtr(4),
	})
	require.NoError(t, err)

	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	_, _, err = reviews.AttachPhoto(caller, result.Review.ID, "image/png", int64(len(png)), bytes.NewReader(png))
	require.NoError(t, err)
	_, _, err = reviews.AttachPhoto(caller, result.Review.ID, "image/png", int64(len(png)), bytes.NewReader(png))
	require.NoError(t, err)

	var stored models.Review
	require.NoError(t, db.First(&stored, "id = ?", result.Review.ID).Error)
	require.NotEmpty(t, stored.PhotoPath)
	_, err = os.Stat(filepath.Join(photos.Dir(), stored.PhotoPath))
	assert.NoError(t, err, "photo_path must point at an existing file after a replace")
}

func TestPlaceReviewsApprovedOnly(t *testing.T) {
	db, reviews := newReviewStack(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	placeID := uuid.NewString()

	_, err := reviews.Submit(callerFor(alice), &dto.CreateReviewRequest{PlaceID: placeID, Rating: intPtr(5)})
	require.NoError(t, err)
	res, err := reviews.Submit(callerFor(bob), &dto.CreateReviewRequest{PlaceID: placeID, Rating: intPtr(2)})
	require.NoError(t, err)

	public, err := reviews.PlaceReviews(placeID, callerFor(alice))
	require.NoError(t, err)
	assert.Empty(t, public, "pending reviews must stay invisible")

	require.NoError(t, db.Model(&models.Review{}).
		Where("id = ?", res.Review.ID).
		Update("moderation_status", models.ModerationApproved).Error)

	public, err = reviews.PlaceReviews(placeID, callerFor(alice))
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, bob.ID, public[0].UserID)
	assert.Equal(t, "bob@example.com", public[0].AuthorName)
}

func TestMyReviewsShowsAllStatuses(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)

	r1, err := reviews.Submit(caller, &dto.CreateReviewRequest{PlaceID: uuid.NewString(), Rating: intPtr(5)})
	require.NoError(t, err)
	_, err = reviews.Submit(caller, &dto.CreateReviewRequest{PlaceID: uuid.NewString(), Rating: intPtr(2)})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Review{}).
		Where("id = ?", r1.Review.ID).
		Updates(map[string]interface{}{
			"moderation_status": models.ModerationRejected,
			"rejection_reason":  "off topic",
		}).Error)

	mine, err := reviews.MyReviews(caller)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	statuses := map[string]string{}
	for _, r := range mine {
		statuses[r.ModerationStatus] = r.RejectionReason
	}
	assert.Contains(t, statuses, "pending")
	assert.Equal(t, "off topic", statuses["rejected"])
}

func TestHasReview(t *testing.T) {
	db, reviews := newReviewStack(t)
	user := createUser(t, db, "alice@example.com")
	caller := callerFor(user)
	placeID := uuid.NewString()

	has, err := reviews.HasReview(caller, placeID)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = reviews.Submit(caller, &dto.CreateReviewRequest{PlaceID: placeID, Rating: intPtr(3)})
	require.NoError(t, err)

	has, err = reviews.HasReview(caller, placeID)
	require.NoError(t, err)
	assert.True(t, has)
}
