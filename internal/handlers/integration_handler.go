package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/services"
)

// IntegrationHandler serves the key-gated export API for city systems.
type IntegrationHandler struct {
	integrationService *services.IntegrationService
}

func NewIntegrationHandler(integrationService *services.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationService: integrationService}
}

func (h *IntegrationHandler) Places(c *fiber.Ctx) error {
	list, err := h.integrationService.Places(
		c.Query("type"),
		c.QueryFloat("min_rating", 0),
		c.QueryInt("min_reviews", 0),
		c.QueryInt("limit", 1000),
		c.QueryInt("offset", 0))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(list)
}

func (h *IntegrationHandler) Place(c *fiber.Ctx) error {
	detail, err := h.integrationService.Place(c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(detail)
}

func (h *IntegrationHandler) PlaceReviews(c *fiber.Ctx) error {
	list, err := h.integrationService.PlaceReviews(
		c.Params("id"),
		c.QueryInt("limit", 100),
		c.QueryInt("offset", 0),
		c.Query("sort", "newest"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(list)
}

func (h *IntegrationHandler) Nearby(c *fiber.Ctx) error {
	list, err := h.integrationService.Nearby(
		c.QueryFloat("lat"),
		c.QueryFloat("lon"),
		c.QueryFloat("radius_km", 1.0),
		c.Query("type"),
		c.QueryInt("limit", 50))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(list)
}

func (h *IntegrationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.integrationService.Stats()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

func (h *IntegrationHandler) GeoJSON(c *fiber.Ctx) error {
	collection, err := h.integrationService.GeoJSON(c.Query("type"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(collection)
}
