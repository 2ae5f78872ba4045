package dto

import (
	"time"

	"github.com/google/uuid"
)

type ModerateRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type ApproveAllRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type ModerationStatsResponse struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// ModerationReviewResponse is the admin-queue projection. Flagged marks
// reviews the content pre-filter considered suspicious.
type ModerationReviewResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	AuthorName       string    `json:"author_name"`
	PlaceID          string    `json:"place_id"`
	PlaceName        string    `json:"place_name"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	PhotoURL         string    `json:"photo_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	ModerationStatus string    `json:"moderation_status"`
	Flagged          bool      `json:"flagged"`
	FlagReason       string    `json:"flag_reason,omitempty"`
}

type ModerationReviewList struct {
	Reviews    []ModerationReviewResponse `json:"reviews"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
}

type AdminUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Level       int       `json:"level"`
	Points      int       `json:"points"`
	ReviewCount int       `json:"review_count"`
	IsAdmin     bool      `json:"is_admin"`
}

type AdminUserList struct {
	Users      []AdminUserResponse `json:"users"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}
