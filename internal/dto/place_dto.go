package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePlaceRequest struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type PlaceResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	Address         string     `json:"address,omitempty"`
	CreatedByUserID *uuid.UUID `json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreatePlaceResponse struct {
	Place           PlaceResponse         `json:"place"`
	NewAchievements []AchievementResponse `json:"new_achievements,omitempty"`
}
