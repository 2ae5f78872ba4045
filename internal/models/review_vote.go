package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewVote is one user's like or dislike of a review. The unique index on
// (review_id, user_id) backs the toggle/flip logic and resolves concurrent
// duplicate inserts.
type ReviewVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReviewID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_votes_review_user,priority:1" json:"review_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_votes_review_user,priority:2" json:"user_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`

	Review Review `gorm:"foreignKey:ReviewID" json:"-"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

func (ReviewVote) TableName() string {
	return "review_votes"
}

func (v *ReviewVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
