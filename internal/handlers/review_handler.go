package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/services"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	voteService   *services.VoteService
}

func NewReviewHandler(reviewService *services.ReviewService, voteService *services.VoteService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, voteService: voteService}
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.reviewService.Submit(caller, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateReviewResponse{
		Review:          h.reviewService.ToResponse(result.Review, caller.ID),
		NewAchievements: toAchievementResponses(result.NewlyEarned),
	})
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid review id")
	}

	var req dto.UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	review, err := h.reviewService.Update(caller, reviewID, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(h.reviewService.ToResponse(review, caller.ID))
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid review id")
	}

	if err := h.reviewService.Delete(caller, reviewID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Review deleted"})
}

func (h *ReviewHandler) Vote(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid review id")
	}

	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.voteService.Vote(caller, reviewID, req.IsLike)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(resp)
}

// PlaceReviews is public; an optional bearer token personalizes UserVote.
func (h *ReviewHandler) PlaceReviews(c *fiber.Ctx) error {
	placeID := c.Params("placeId")
	if placeID == "" {
		return respond(c, fiber.StatusBadRequest, "Place id is required")
	}

	caller := identity.Optional(c)
	reviews, err := h.reviewService.PlaceReviews(placeID, caller)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(reviews)
}

func (h *ReviewHandler) MyReviews(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviews, err := h.reviewService.MyReviews(caller)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(reviews)
}

func (h *ReviewHandler) HasReview(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	placeID := c.Params("placeId")
	if placeID == "" {
		return respond(c, fiber.StatusBadRequest, "Place id is required")
	}

	has, err := h.reviewService.HasReview(caller, placeID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(dto.HasReviewResponse{HasReview: has})
}

// Criteria returns the four rating criteria for a place category.
func (h *ReviewHandler) Criteria(c *fiber.Ctx) error {
	placeType := c.Params("placeType")
	return c.JSON(models.CriteriaForType(placeType))
}

func (h *ReviewHandler) UploadPhoto(c *fiber.Ctx) error {
	caller, err := identity.FromContext(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid review id")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Photo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Failed to read photo")
	}
	defer file.Close()

	url, earned, err := h.reviewService.AttachPhoto(
		caller, reviewID, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(dto.PhotoUploadResponse{
		PhotoURL:        url,
		NewAchievements: toAchievementResponses(earned),
	})
}
