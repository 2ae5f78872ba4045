package services_test

import (
	"testing"

	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupIntegrationTest(t *testing.T) (*gorm.DB, *services.IntegrationService, *services.ReviewService) {
	t.Helper()
	db, reviews := newReviewStack(t)
	return db, services.NewIntegrationService(db), reviews
}

func ratePlace(t *testing.T, db *gorm.DB, reviews *services.ReviewService, place *models.Place, email string, rating int) {
	t.Helper()
	user := createUser(t, db, email)
	_, err := reviews.Submit(callerFor(user), &dto.CreateReviewRequest{
		PlaceID: place.ID.String(),
		Rating:  intPtr(rating),
	})
	require.NoError(t, err)
}

func TestIntegrationPlacesAggregateApprovedOnly(t *testing.T) {
	db, integration, reviews := setupIntegrationTest(t)
	rated := createPlace(t, db, "pharmacy", nil)
	empty := createPlace(t, db, "gym", nil)

	ratePlace(t, db, reviews, rated, "a@example.com", 5)
	ratePlace(t, db, reviews, rated, "b@example.com", 3)
	approveAllReviews(t, db)
	// A pending review must not move the aggregates.
	ratePlace(t, db, reviews, rated, "c@example.com", 1)

	list, err := integration.Places("", 0, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)

	byID := map[string]dto.IntegrationPlace{}
	for _, p := range list.Data {
		byID[p.ID.String()] = p
	}
	assert.Equal(t, int64(2), byID[rated.ID.String()].ReviewCount)
	assert.InDelta(t, 4.0, byID[rated.ID.String()].AverageRating, 0.001)
	assert.Zero(t, byID[empty.ID.String()].ReviewCount)

	// min_reviews drops the unreviewed place.
	list, err = integration.Places("", 0, 1, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, rated.ID, list.Data[0].ID)
}

func TestIntegrationPlaceDetailDistribution(t *testing.T) {
	db, integration, reviews := setupIntegrationTest(t)
	place := createPlace(t, db, "healthy_food", nil)

	ratePlace(t, db, reviews, place, "a@example.com", 5)
	ratePlace(t, db, reviews, place, "b@example.com", 5)
	ratePlace(t, db, reviews, place, "c@example.com", 3)
	approveAllReviews(t, db)

	detail, err := integration.Place(place.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(3), detail.ReviewCount)
	assert.Equal(t, int64(2), detail.RatingDistribution[5])
	assert.Equal(t, int64(1), detail.RatingDistribution[3])
	assert.Equal(t, int64(0), detail.RatingDistribution[1])

	_, err = integration.Place("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIntegrationPlaceReviewsSortAndVisibility(t *testing.T) {
	db, integration, reviews := setupIntegrationTest(t)
	place := createPlace(t, db, "pharmacy", nil)

	ratePlace(t, db, reviews, place, "a@example.com", 2)
	ratePlace(t, db, reviews, place, "b@example.com", 4)
	approveAllReviews(t, db)
	ratePlace(t, db, reviews, place, "c@example.com", 5)

	list, err := integration.PlaceReviews(place.ID.String(), 0, 0, "rating_high")
	require.NoError(t, err)
	require.Equal(t, int64(2), list.Total, "pending reviews stay out of the export")
	require.Len(t, list.Data, 2)
	assert.Equal(t, 4, list.Data[0].Rating)
	assert.Equal(t, 2, list.Data[1].Rating)
}

func TestIntegrationNearbyOrdersByDistance(t *testing.T) {
	db, integration, _ := setupIntegrationTest(t)

	center := createPlace(t, db, "pharmacy", nil) // 55.75, 37.61
	near := &models.Place{Name: "near", Type: "gym", Latitude: 55.76, Longitude: 37.61}
	far := &models.Place{Name: "far", Type: "gym", Latitude: 56.75, Longitude: 37.61}
	require.NoError(t, db.Create(near).Error)
	require.NoError(t, db.Create(far).Error)

	list, err := integration.Nearby(55.75, 37.61, 5, "", 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total, "the place ~111 km away is out of range")
	assert.Equal(t, center.ID, list.Data[0].ID)
	assert.Equal(t, near.ID, list.Data[1].ID)
	require.NotNil(t, list.Data[1].DistanceKm)
	assert.InDelta(t, 1.11, *list.Data[1].DistanceKm, 0.05)

	_, err = integration.Nearby(91, 37.61, 1, "", 0)
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestIntegrationStatsAndGeoJSON(t *testing.T) {
	db, integration, reviews := setupIntegrationTest(t)
	pharmacy := createPlace(t, db, "pharmacy", nil)
	createPlace(t, db, "gym", nil)

	ratePlace(t, db, reviews, pharmacy, "a@example.com", 4)
	approveAllReviews(t, db)

	stats, err := integration.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPlaces)
	assert.Equal(t, int64(1), stats.TotalReviews)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, int64(1), stats.ReviewsLast7Days)
	assert.Len(t, stats.TopCategories, 2)

	collection, err := integration.GeoJSON("")
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", collection.Type)
	require.Len(t, collection.Features, 2)
	feature := collection.Features[0]
	assert.Equal(t, "Feature", feature.Type)
	assert.Equal(t, "Point", feature.Geometry.Type)
	// GeoJSON is longitude first.
	assert.InDelta(t, 37.61, feature.Geometry.Coordinates[0], 0.001)
	assert.InDelta(t, 55.75, feature.Geometry.Coordinates[1], 0.001)
}
