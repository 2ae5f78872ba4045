package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	PlaceID         string         `json:"place_id"`
	PlaceName       string         `json:"place_name"`
	Rating          *int           `json:"rating,omitempty"`
	CriteriaRatings map[string]int `json:"criteria_ratings,omitempty"`
	Comment         string         `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating          *int           `json:"rating,omitempty"`
	CriteriaRatings map[string]int `json:"criteria_ratings,omitempty"`
	Comment         string         `json:"comment"`
	DeletePhoto     bool           `json:"delete_photo"`
}

type VoteRequest struct {
	IsLike bool `json:"is_like"`
}

type VoteResponse struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	UserVote int   `json:"user_vote"`
}

// ReviewResponse is the owner-facing projection: all moderation states are
// visible, including the rejection reason.
type ReviewResponse struct {
	ID               uuid.UUID      `json:"id"`
	PlaceID          string         `json:"place_id"`
	PlaceName        string         `json:"place_name"`
	Rating           int            `json:"rating"`
	CriteriaRatings  map[string]int `json:"criteria_ratings,omitempty"`
	IsDirectRating   bool           `json:"is_direct_rating"`
	Comment          string         `json:"comment,omitempty"`
	PhotoURL         string         `json:"photo_url,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	Likes            int64          `json:"likes"`
	Dislikes         int64          `json:"dislikes"`
	UserVote         int            `json:"user_vote"`
	ModerationStatus string         `json:"moderation_status"`
	RejectionReason  string         `json:"rejection_reason,omitempty"`
}

// PlaceReviewResponse is the public projection shown on the map; only
// approved reviews are ever rendered through it.
type PlaceReviewResponse struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	AuthorName      string         `json:"author_name"`
	AuthorLevel     int            `json:"author_level"`
	Rating          int            `json:"rating"`
	CriteriaRatings map[string]int `json:"criteria_ratings,omitempty"`
	IsDirectRating  bool           `json:"is_direct_rating"`
	Comment         string         `json:"comment,omitempty"`
	PhotoURL        string         `json:"photo_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	Likes           int64          `json:"likes"`
	Dislikes        int64          `json:"dislikes"`
	UserVote        int            `json:"user_vote"`
}

// CreateReviewResponse bundles the stored review with badges the submission
// unlocked, so the client can show a one-time celebration.
type CreateReviewResponse struct {
	Review          ReviewResponse        `json:"review"`
	NewAchievements []AchievementResponse `json:"new_achievements,omitempty"`
}

type PhotoUploadResponse struct {
	PhotoURL        string                `json:"photo_url"`
	NewAchievements []AchievementResponse `json:"new_achievements,omitempty"`
}

type HasReviewResponse struct {
	HasReview bool `json:"has_review"`
}
