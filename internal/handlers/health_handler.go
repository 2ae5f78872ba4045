package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/database"
	"github.com/palmmap/palmmap/internal/dto"
)

func Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	status := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unreachable"
		status = "degraded"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
