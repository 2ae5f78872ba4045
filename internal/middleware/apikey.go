package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/config"
	"github.com/palmmap/palmmap/internal/dto"
)

// APIKeyRequired guards the integration API with a static X-Api-Key header.
// When no key is configured the surface is disabled entirely.
func APIKeyRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := cfg.IntegrationAPIKey
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Integration API is disabled",
			})
		}

		presented := c.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or missing API key",
			})
		}
		return c.Next()
	}
}
