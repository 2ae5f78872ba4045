package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return respond(c, fiber.StatusConflict, err.Error())
		}
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return respond(c, fiber.StatusUnauthorized, err.Error())
		}
		return serviceError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return respond(c, fiber.StatusUnauthorized, err.Error())
		}
		return serviceError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.Logout(&req); err != nil {
		return respond(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) VKSignIn(c *fiber.Ctx) error {
	var req dto.VKSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.VKSignIn(&req)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return respond(c, fiber.StatusBadRequest, ve.Error())
		}
		return respond(c, fiber.StatusUnauthorized, "VK sign-in failed")
	}

	return c.JSON(resp)
}
