package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	profile, err := h.profileService.Profile(caller)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(profile)
}

func (h *ProfileHandler) Ratings(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	ratings, err := h.profileService.Ratings(caller)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(ratings)
}
