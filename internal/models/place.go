package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Place is a user-submitted point of interest. Places are immutable after
// creation; there is no update or delete path. CreatedByUserID is nil for
// anonymous submissions.
type Place struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"size:200;not null" json:"name"`
	Type            string     `gorm:"size:50;not null;index" json:"type"`
	Latitude        float64    `gorm:"not null" json:"latitude"`
	Longitude       float64    `gorm:"not null" json:"longitude"`
	Address         string     `gorm:"size:300" json:"address,omitempty"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid;index" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`

	CreatedByUser *User `gorm:"foreignKey:CreatedByUserID" json:"-"`
}

func (Place) TableName() string {
	return "places"
}

func (p *Place) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
