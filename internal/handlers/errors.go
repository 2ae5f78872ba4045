package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
	"github.com/palmmap/palmmap/internal/storage"
	"gorm.io/gorm"
)

// serviceError translates service-layer failures into HTTP responses.
// Validation and ownership are checked before any mutation, so a mapped
// error never leaves partial state behind.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return respond(c, fiber.StatusBadRequest, ve.Error())
	case errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return respond(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrAdminRequired),
		errors.Is(err, services.ErrSelfDemotion):
		return respond(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrDuplicateReview):
		return respond(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrPhotoEmpty),
		errors.Is(err, storage.ErrPhotoTooLarge),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrTypeMismatch),
		errors.Is(err, storage.ErrUnsafePath):
		return respond(c, fiber.StatusBadRequest, err.Error())
	default:
		return respond(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func respond(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return respond(c, fiber.StatusBadRequest, "Invalid request body")
}

// toAchievementResponses projects freshly earned badges for the one-time
// celebration payload.
func toAchievementResponses(earned []models.Achievement) []dto.AchievementResponse {
	if len(earned) == 0 {
		return nil
	}
	out := make([]dto.AchievementResponse, len(earned))
	for i, a := range earned {
		out[i] = dto.AchievementResponse{
			ID:          a.ID,
			Code:        a.Code,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Progress:    100,
			Earned:      true,
		}
	}
	return out
}
