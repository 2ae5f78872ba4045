package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

// PlaceService stores map points. Places are immutable after creation; both
// signed-in and anonymous callers may add them, only signed-in creations
// count toward achievements.
type PlaceService struct {
	db           *gorm.DB
	achievements *AchievementService
}

func NewPlaceService(db *gorm.DB, achievements *AchievementService) *PlaceService {
	return &PlaceService{db: db, achievements: achievements}
}

// CreatePlaceResult carries the stored place plus badges the creation
// unlocked for a signed-in creator.
type CreatePlaceResult struct {
	Place       *models.Place
	NewlyEarned []models.Achievement
}

func (s *PlaceService) Create(caller identity.Caller, req *dto.CreatePlaceRequest) (*CreatePlaceResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	if len(name) > 200 {
		return nil, invalid("name", "must be at most 200 characters")
	}
	if req.Type == "" {
		return nil, invalid("type", "required")
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, invalid("latitude", "must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, invalid("longitude", "must be between -180 and 180")
	}

	place := &models.Place{
		Name:      name,
		Type:      req.Type,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   strings.TrimSpace(req.Address),
	}
	if !caller.IsZero() {
		id := caller.ID
		place.CreatedByUserID = &id
	}

	if err := s.db.Create(place).Error; err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	result := &CreatePlaceResult{Place: place}
	if !caller.IsZero() {
		if eval, err := s.achievements.Evaluate(caller.ID); err != nil {
			slog.Error("achievement evaluation failed", "user_id", caller.ID.String(), "error", err)
		} else {
			result.NewlyEarned = eval.NewlyEarned
		}
	}
	return result, nil
}

// List returns all places, optionally filtered by type tag.
func (s *PlaceService) List(placeType string) ([]models.Place, error) {
	query := s.db.Order("created_at DESC")
	if placeType != "" {
		query = query.Where("type = ?", placeType)
	}
	var places []models.Place
	if err := query.Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}

// Get loads one place by id.
func (s *PlaceService) Get(id uuid.UUID) (*models.Place, error) {
	var place models.Place
	if err := s.db.First(&place, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}
