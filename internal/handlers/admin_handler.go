package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/services"
)

// AdminHandler serves the moderation panel. Every route behind it runs the
// AdminRequired middleware, which re-checks the role against the database.
type AdminHandler struct {
	moderationService *services.ModerationService
	reviewService     *services.ReviewService
}

func NewAdminHandler(moderationService *services.ModerationService, reviewService *services.ReviewService) *AdminHandler {
	return &AdminHandler{moderationService: moderationService, reviewService: reviewService}
}

func (h *AdminHandler) ListReviews(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.moderationService.ListReviews(
		caller, c.Query("status"), c.QueryInt("page", 1), c.QueryInt("pageSize", 20))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(list)
}

func (h *AdminHandler) Moderate(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid review id")
	}

	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.moderationService.Moderate(caller, reviewID, &req); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Review moderated"})
}

func (h *AdminHandler) ApproveAll(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ApproveAllRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	approved, err := h.moderationService.ApproveAll(caller, req.IDs)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"approved": approved})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	stats, err := h.moderationService.Stats(caller)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(stats)
}

func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid review id")
	}

	if err := h.reviewService.AdminDelete(caller, reviewID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Review deleted"})
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.moderationService.ListUsers(caller, c.QueryInt("page", 1), c.QueryInt("pageSize", 20))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(list)
}

func (h *AdminHandler) MakeAdmin(c *fiber.Ctx) error {
	return h.setAdmin(c, true)
}

func (h *AdminHandler) RemoveAdmin(c *fiber.Ctx) error {
	return h.setAdmin(c, false)
}

func (h *AdminHandler) setAdmin(c *fiber.Ctx, isAdmin bool) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid user id")
	}

	if err := h.moderationService.SetAdmin(caller, userID, isAdmin); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User role updated"})
}
