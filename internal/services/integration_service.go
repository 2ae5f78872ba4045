package services

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

const (
	integrationPlaceLimit  = 1000
	integrationReviewLimit = 100
	nearbyDefaultRadiusKm  = 1.0
	nearbyDefaultLimit     = 50
	nearbyMaxLimit         = 100
	earthRadiusKm          = 6371
)

// IntegrationService is the read-only export surface for city systems. It
// never exposes author identities, and every review aggregate counts approved
// reviews only.
type IntegrationService struct {
	db *gorm.DB
}

func NewIntegrationService(db *gorm.DB) *IntegrationService {
	return &IntegrationService{db: db}
}

// Places exports the place catalog with review aggregates, optionally
// filtered by type, minimum average rating and minimum review count.
func (s *IntegrationService) Places(placeType string, minRating float64, minReviews int, limit, offset int) (*dto.IntegrationPlaceList, error) {
	limit, offset = clampWindow(limit, offset, integrationPlaceLimit)

	query := s.db.Model(&models.Place{}).Order("created_at ASC")
	if placeType != "" {
		query = query.Where("type = ?", placeType)
	}

	var places []models.Place
	if err := query.Limit(limit).Offset(offset).Find(&places).Error; err != nil {
		return nil, err
	}

	exported, err := s.exportPlaces(places)
	if err != nil {
		return nil, err
	}

	// Rating filters apply after aggregation.
	filtered := exported[:0]
	for _, p := range exported {
		if minRating > 0 && p.AverageRating < minRating {
			continue
		}
		if minReviews > 0 && p.ReviewCount < int64(minReviews) {
			continue
		}
		filtered = append(filtered, p)
	}

	return &dto.IntegrationPlaceList{
		Total:  len(filtered),
		Offset: offset,
		Limit:  limit,
		Data:   filtered,
	}, nil
}

// Place exports one place with its approved-rating distribution.
func (s *IntegrationService) Place(id string) (*dto.IntegrationPlaceDetail, error) {
	var place models.Place
	if err := s.db.First(&place, "id = ?", id).Error; err != nil {
		return nil, err
	}

	exported, err := s.exportPlaces([]models.Place{place})
	if err != nil {
		return nil, err
	}

	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	var rows []struct {
		Rating int
		N      int64
	}
	err = s.db.Model(&models.Review{}).
		Select("rating, COUNT(*) as n").
		Where("place_id = ? AND moderation_status = ?", place.ID.String(), models.ModerationApproved).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		distribution[row.Rating] = row.N
	}

	return &dto.IntegrationPlaceDetail{
		IntegrationPlace:   exported[0],
		RatingDistribution: distribution,
	}, nil
}

// PlaceReviews exports the approved review feed for a place, anonymised.
// Sort accepts newest (default), oldest, rating_high and rating_low.
func (s *IntegrationService) PlaceReviews(placeID string, limit, offset int, sort string) (*dto.IntegrationReviewList, error) {
	limit, offset = clampWindow(limit, offset, integrationReviewLimit)

	order := "created_at DESC"
	switch sort {
	case "oldest":
		order = "created_at ASC"
	case "rating_high":
		order = "rating DESC"
	case "rating_low":
		order = "rating ASC"
	}

	base := s.db.Model(&models.Review{}).
		Where("place_id = ? AND moderation_status = ?", placeID, models.ModerationApproved)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var reviews []models.Review
	err := s.db.Preload("Votes").
		Where("place_id = ? AND moderation_status = ?", placeID, models.ModerationApproved).
		Order(order).
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	data := make([]dto.IntegrationReview, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		likes, dislikes, _ := tallyVotes(r.Votes, uuid.Nil)
		data[i] = dto.IntegrationReview{
			ID:        r.ID,
			PlaceID:   r.PlaceID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			HasPhoto:  r.PhotoPath != "",
			Likes:     likes,
			Dislikes:  dislikes,
			CreatedAt: r.CreatedAt,
		}
	}

	return &dto.IntegrationReviewList{
		Total:  total,
		Offset: offset,
		Limit:  limit,
		Data:   data,
	}, nil
}

// Nearby exports places within radiusKm of a point, closest first. A
// bounding-box query narrows candidates; the exact haversine distance decides.
func (s *IntegrationService) Nearby(lat, lon, radiusKm float64, placeType string, limit int) (*dto.NearbyPlaceList, error) {
	if lat < -90 || lat > 90 {
		return nil, invalid("latitude", "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, invalid("longitude", "must be between -180 and 180")
	}
	if radiusKm <= 0 {
		radiusKm = nearbyDefaultRadiusKm
	}
	if limit < 1 || limit > nearbyMaxLimit {
		limit = nearbyDefaultLimit
	}

	// One degree of latitude is roughly 111 km; longitude shrinks with
	// the cosine of the latitude.
	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / (111.0 * math.Cos(lat*math.Pi/180))

	query := s.db.
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lon-lonDelta, lon+lonDelta)
	if placeType != "" {
		query = query.Where("type = ?", placeType)
	}

	var places []models.Place
	if err := query.Find(&places).Error; err != nil {
		return nil, err
	}

	exported, err := s.exportPlaces(places)
	if err != nil {
		return nil, err
	}

	within := exported[:0]
	for i := range exported {
		d := haversineKm(lat, lon, exported[i].Latitude, exported[i].Longitude)
		if d > radiusKm {
			continue
		}
		dist := d
		exported[i].DistanceKm = &dist
		within = append(within, exported[i])
	}
	sortByDistance(within)
	if len(within) > limit {
		within = within[:limit]
	}

	return &dto.NearbyPlaceList{
		Center:   dto.NearbyCenter{Latitude: lat, Longitude: lon},
		RadiusKm: radiusKm,
		Total:    len(within),
		Data:     within,
	}, nil
}

// Stats summarises the platform for external dashboards.
func (s *IntegrationService) Stats() (*dto.PlatformStats, error) {
	stats := &dto.PlatformStats{GeneratedAt: time.Now().UTC()}

	if err := s.db.Model(&models.Place{}).Count(&stats.TotalPlaces).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	approved := func() *gorm.DB {
		return s.db.Model(&models.Review{}).Where("moderation_status = ?", models.ModerationApproved)
	}
	if err := approved().Count(&stats.TotalReviews).Error; err != nil {
		return nil, err
	}
	if stats.TotalReviews > 0 {
		var avg float64
		if err := approved().Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return nil, err
		}
		stats.AverageRating = avg
	}

	now := time.Now().UTC()
	if err := approved().Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&stats.ReviewsLast7Days).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("created_at >= ?", now.AddDate(0, 0, -30)).Count(&stats.ReviewsLast30Days).Error; err != nil {
		return nil, err
	}

	var categories []dto.CategoryStat
	err := s.db.Model(&models.Place{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Order("count DESC").
		Limit(10).
		Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	stats.TopCategories = categories

	return stats, nil
}

// GeoJSON exports the place catalog as a FeatureCollection for GIS tools.
func (s *IntegrationService) GeoJSON(placeType string) (*dto.GeoJSONFeatureCollection, error) {
	query := s.db.Order("created_at ASC")
	if placeType != "" {
		query = query.Where("type = ?", placeType)
	}
	var places []models.Place
	if err := query.Find(&places).Error; err != nil {
		return nil, err
	}

	exported, err := s.exportPlaces(places)
	if err != nil {
		return nil, err
	}

	features := make([]dto.GeoJSONFeature, len(exported))
	for i, p := range exported {
		features[i] = dto.GeoJSONFeature{
			Type: "Feature",
			Geometry: dto.GeoJSONGeometry{
				Type:        "Point",
				Coordinates: [2]float64{p.Longitude, p.Latitude},
			},
			Properties: map[string]interface{}{
				"id":             p.ID.String(),
				"name":           p.Name,
				"place_type":     p.Type,
				"address":        p.Address,
				"review_count":   p.ReviewCount,
				"average_rating": p.AverageRating,
			},
		}
	}

	return &dto.GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}, nil
}

type placeAggregate struct {
	PlaceID string
	N       int64
	Avg     float64
}

// exportPlaces projects places with their approved review count and average
// rating, fetched in one grouped query.
func (s *IntegrationService) exportPlaces(places []models.Place) ([]dto.IntegrationPlace, error) {
	out := make([]dto.IntegrationPlace, len(places))
	if len(places) == 0 {
		return out, nil
	}

	keys := make([]string, len(places))
	for i, p := range places {
		keys[i] = p.ID.String()
	}

	var rows []placeAggregate
	err := s.db.Model(&models.Review{}).
		Select("place_id, COUNT(*) as n, AVG(rating) as avg").
		Where("place_id IN ? AND moderation_status = ?", keys, models.ModerationApproved).
		Group("place_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	aggregates := make(map[string]placeAggregate, len(rows))
	for _, row := range rows {
		aggregates[row.PlaceID] = row
	}

	for i, p := range places {
		agg := aggregates[p.ID.String()]
		out[i] = dto.IntegrationPlace{
			ID:            p.ID,
			Name:          p.Name,
			Type:          p.Type,
			Latitude:      p.Latitude,
			Longitude:     p.Longitude,
			Address:       p.Address,
			ReviewCount:   agg.N,
			AverageRating: agg.Avg,
			CreatedAt:     p.CreatedAt,
		}
	}
	return out, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func sortByDistance(places []dto.IntegrationPlace) {
	sort.Slice(places, func(i, j int) bool {
		return *places[i].DistanceKm < *places[j].DistanceKm
	})
}

func clampWindow(limit, offset, maxLimit int) (int, int) {
	if limit < 1 || limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
