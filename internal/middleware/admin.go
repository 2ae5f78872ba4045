package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

// AdminRequired verifies that the authenticated caller's user row carries
// the admin flag, then marks the caller as admin for downstream handlers.
// Runs after JWTProtected.
func AdminRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := identity.FromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", caller.ID).Error; err != nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}

		identity.MarkAdmin(c)
		return c.Next()
	}
}
