package dto

import (
	"time"

	"github.com/google/uuid"
)

// Integration DTOs serve the city-systems export API. Review aggregates only
// ever count approved reviews.

type IntegrationPlace struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Address       string    `json:"address,omitempty"`
	ReviewCount   int64     `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
	DistanceKm    *float64  `json:"distance_km,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type IntegrationPlaceList struct {
	Total  int                `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
	Data   []IntegrationPlace `json:"data"`
}

type IntegrationPlaceDetail struct {
	IntegrationPlace
	RatingDistribution map[int]int64 `json:"rating_distribution"`
}

type IntegrationReview struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   string    `json:"place_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	HasPhoto  bool      `json:"has_photo"`
	Likes     int64     `json:"likes"`
	Dislikes  int64     `json:"dislikes"`
	CreatedAt time.Time `json:"created_at"`
}

type IntegrationReviewList struct {
	Total  int64               `json:"total"`
	Offset int                 `json:"offset"`
	Limit  int                 `json:"limit"`
	Data   []IntegrationReview `json:"data"`
}

type NearbyCenter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type NearbyPlaceList struct {
	Center   NearbyCenter       `json:"center"`
	RadiusKm float64            `json:"radius_km"`
	Total    int                `json:"total"`
	Data     []IntegrationPlace `json:"data"`
}

type CategoryStat struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type PlatformStats struct {
	TotalPlaces       int64          `json:"total_places"`
	TotalReviews      int64          `json:"total_reviews"`
	TotalUsers        int64          `json:"total_users"`
	AverageRating     float64        `json:"average_rating"`
	ReviewsLast7Days  int64          `json:"reviews_last_7_days"`
	ReviewsLast30Days int64          `json:"reviews_last_30_days"`
	TopCategories     []CategoryStat `json:"top_categories"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

type GeoJSONGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}
