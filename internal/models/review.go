package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModerationStatus gates public visibility of a review.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Review is a user's rating of a place, either a direct 1-5 star rating or
// derived from four criteria scores. The (user_id, place_id) unique index is
// the authoritative one-review-per-place guard; the service-level existence
// check only exists to produce a friendly error without burning a transaction.
type Review struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_place,priority:1" json:"user_id"`
	PlaceID          string           `gorm:"size:255;not null;uniqueIndex:idx_reviews_user_place,priority:2;index" json:"place_id"`
	PlaceName        string           `gorm:"size:200;not null" json:"place_name"`
	Rating           int              `gorm:"not null" json:"rating"`
	CriteriaRatings  datatypes.JSON   `json:"criteria_ratings,omitempty"`
	IsDirectRating   bool             `gorm:"not null" json:"is_direct_rating"`
	Comment          string           `gorm:"size:2000" json:"comment,omitempty"`
	PhotoPath        string           `gorm:"size:255" json:"-"`
	ModerationStatus ModerationStatus `gorm:"size:20;not null;default:'pending';index" json:"moderation_status"`
	RejectionReason  string           `gorm:"size:500" json:"rejection_reason,omitempty"`
	ModeratedAt      *time.Time       `json:"moderated_at,omitempty"`
	ModeratorID      *uuid.UUID       `gorm:"type:uuid" json:"-"`
	Flagged          bool             `gorm:"not null;default:false" json:"-"`
	FlagReason       string           `gorm:"size:50" json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	User  User         `gorm:"foreignKey:UserID" json:"-"`
	Votes []ReviewVote `gorm:"foreignKey:ReviewID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Review) PlaceRef() PlaceRef {
	return ParsePlaceRef(r.PlaceID)
}
