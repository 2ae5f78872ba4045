package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
)

type PlaceHandler struct {
	placeService *services.PlaceService
}

func NewPlaceHandler(placeService *services.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeService: placeService}
}

// Create accepts both signed-in and anonymous submissions; only the former
// count toward achievements.
func (h *PlaceHandler) Create(c *fiber.Ctx) error {
	caller := identity.Optional(c)

	var req dto.CreatePlaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.placeService.Create(caller, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreatePlaceResponse{
		Place:           toPlaceResponse(result.Place),
		NewAchievements: toAchievementResponses(result.NewlyEarned),
	})
}

func (h *PlaceHandler) List(c *fiber.Ctx) error {
	places, err := h.placeService.List(c.Query("type"))
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]dto.PlaceResponse, len(places))
	for i := range places {
		out[i] = toPlaceResponse(&places[i])
	}
	return c.JSON(out)
}

func (h *PlaceHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid place id")
	}

	place, err := h.placeService.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(toPlaceResponse(place))
}

func toPlaceResponse(p *models.Place) dto.PlaceResponse {
	return dto.PlaceResponse{
		ID:              p.ID,
		Name:            p.Name,
		Type:            p.Type,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Address:         p.Address,
		CreatedByUserID: p.CreatedByUserID,
		CreatedAt:       p.CreatedAt,
	}
}
