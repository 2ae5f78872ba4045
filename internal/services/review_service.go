package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotOwner        = errors.New("review belongs to another user")
	ErrDuplicateReview = errors.New("you have already reviewed this place")
)

const (
	// reviewPoints is the fixed reward per submitted review, taken back on
	// deletion (floored at zero).
	reviewPoints = 10

	maxCommentLen   = 2000
	maxPlaceNameLen = 200
	criteriaCount   = 4
)

// ReviewService owns the review lifecycle: validation, persistence with the
// author's counters in one transaction, moderation gating on reads, photo
// attachment, and achievement re-evaluation after each mutation.
type ReviewService struct {
	db           *gorm.DB
	achievements *AchievementService
	moderation   *ModerationService
	photos       *storage.PhotoStore
}

func NewReviewService(db *gorm.DB, achievements *AchievementService, moderation *ModerationService, photos *storage.PhotoStore) *ReviewService {
	return &ReviewService{db: db, achievements: achievements, moderation: moderation, photos: photos}
}

// SubmitResult carries the stored review plus badges the submission
// unlocked.
type SubmitResult struct {
	Review      *models.Review
	NewlyEarned []models.Achievement
}

// Submit validates and stores a new review as Pending, updates the author's
// counters, and re-evaluates achievements. The (user, place) unique index is
// the authoritative duplicate guard.
func (s *ReviewService) Submit(caller identity.Caller, req *dto.CreateReviewRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.PlaceID) == "" {
		return nil, invalid("place_id", "required")
	}
	if utf8.RuneCountInString(req.PlaceName) > maxPlaceNameLen {
		return nil, invalid("place_name", fmt.Sprintf("must be at most %d characters", maxPlaceNameLen))
	}

	rating, isDirect, criteriaJSON, err := resolveRating(req.Rating, req.CriteriaRatings)
	if err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLen {
		return nil, invalid("comment", fmt.Sprintf("must be at most %d characters", maxCommentLen))
	}

	placeName := req.PlaceName
	if placeName == "" {
		placeName = "Place"
	}

	review := &models.Review{
		UserID:           caller.ID,
		PlaceID:          req.PlaceID,
		PlaceName:        placeName,
		Rating:           rating,
		CriteriaRatings:  criteriaJSON,
		IsDirectRating:   isDirect,
		Comment:          comment,
		ModerationStatus: models.ModerationPending,
	}
	if ok, reason := s.moderation.FilterContent(comment); !ok {
		review.Flagged = true
		review.FlagReason = reason
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Friendly pre-check; the unique index still decides under races.
		var count int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND place_id = ?", caller.ID, req.PlaceID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReview
		}

		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", caller.ID).Error; err != nil {
			return err
		}
		user.ReviewCount++
		user.Points += reviewPoints
		user.RecalcLevel()
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{Review: review, NewlyEarned: s.evaluateAchievements(caller.ID)}, nil
}

// Update replaces rating/criteria/comment on the caller's own review and
// optionally drops the attached photo. Photo file removal is best-effort and
// never aborts the update.
func (s *ReviewService) Update(caller identity.Caller, reviewID uuid.UUID, req *dto.UpdateReviewRequest) (*models.Review, error) {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != caller.ID {
		return nil, ErrNotOwner
	}

	rating, isDirect, criteriaJSON, err := resolveRating(req.Rating, req.CriteriaRatings)
	if err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLen {
		return nil, invalid("comment", fmt.Sprintf("must be at most %d characters", maxCommentLen))
	}

	review.Rating = rating
	review.CriteriaRatings = criteriaJSON
	review.IsDirectRating = isDirect
	review.Comment = comment
	review.Flagged = false
	review.FlagReason = ""
	if ok, reason := s.moderation.FilterContent(comment); !ok {
		review.Flagged = true
		review.FlagReason = reason
	}

	if req.DeletePhoto && review.PhotoPath != "" {
		s.photos.Remove(review.PhotoPath)
		review.PhotoPath = ""
	}

	if err := s.db.Save(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes the caller's own review and takes back the submission
// reward, flooring points at zero and recomputing the level.
func (s *ReviewService) Delete(caller identity.Caller, reviewID uuid.UUID) error {
	return s.deleteReview(reviewID, func(r *models.Review) error {
		if r.UserID != caller.ID {
			return ErrNotOwner
		}
		return nil
	})
}

// AdminDelete removes any review; the author's counters are adjusted the
// same way as an owner delete. Caller must already be admin-verified.
func (s *ReviewService) AdminDelete(caller identity.Caller, reviewID uuid.UUID) error {
	if !caller.Admin {
		return ErrAdminRequired
	}
	return s.deleteReview(reviewID, func(*models.Review) error { return nil })
}

func (s *ReviewService) deleteReview(reviewID uuid.UUID, authorize func(*models.Review) error) error {
	var photoPath string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if err := authorize(&review); err != nil {
			return err
		}
		photoPath = review.PhotoPath

		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewVote{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", review.UserID).Error; err != nil {
			return err
		}
		user.ReviewCount = max(0, user.ReviewCount-1)
		user.Points = max(0, user.Points-reviewPoints)
		user.RecalcLevel()
		return tx.Save(&user).Error
	})
	if err != nil {
		return err
	}

	if photoPath != "" {
		s.photos.Remove(photoPath)
	}
	return nil
}

// AttachPhoto validates and stores a photo for the caller's own review,
// replacing any previous one, then re-evaluates achievements.
func (s *ReviewService) AttachPhoto(caller identity.Caller, reviewID uuid.UUID, declaredType string, size int64, r io.Reader) (string, []models.Achievement, error) {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrReviewNotFound
		}
		return "", nil, err
	}
	if review.UserID != caller.ID {
		return "", nil, ErrNotOwner
	}

	name, err := s.photos.Save(reviewID, declaredType, size, r)
	if err != nil {
		return "", nil, err
	}

	oldPhoto := review.PhotoPath
	if err := s.db.Model(&review).Update("photo_path", name).Error; err != nil {
		s.photos.Remove(name)
		return "", nil, err
	}
	if oldPhoto != "" && oldPhoto != name {
		s.photos.Remove(oldPhoto)
	}

	return s.photos.URL(name), s.evaluateAchievements(caller.ID), nil
}

// MyReviews returns all of the caller's reviews across every moderation
// state, with vote tallies and the caller's own vote.
func (s *ReviewService) MyReviews(caller identity.Caller) ([]dto.ReviewResponse, error) {
	var reviews []models.Review
	err := s.db.Preload("Votes").
		Where("user_id = ?", caller.ID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = s.toReviewResponse(&reviews[i], caller.ID)
	}
	return out, nil
}

// PlaceReviews is the public per-place read: approved reviews only, with
// author name and level. The caller may be anonymous.
func (s *ReviewService) PlaceReviews(placeID string, caller identity.Caller) ([]dto.PlaceReviewResponse, error) {
	var reviews []models.Review
	err := s.db.Preload("Votes").Preload("User").
		Where("place_id = ? AND moderation_status = ?", placeID, models.ModerationApproved).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.PlaceReviewResponse, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		likes, dislikes, userVote := tallyVotes(r.Votes, caller.ID)
		authorName := r.User.DisplayName
		if authorName == "" {
			authorName = "Anonymous"
		}
		out[i] = dto.PlaceReviewResponse{
			ID:              r.ID,
			UserID:          r.UserID,
			AuthorName:      authorName,
			AuthorLevel:     r.User.Level,
			Rating:          r.Rating,
			CriteriaRatings: decodeCriteria(r.CriteriaRatings),
			IsDirectRating:  r.IsDirectRating,
			Comment:         r.Comment,
			PhotoURL:        s.photos.URL(r.PhotoPath),
			CreatedAt:       r.CreatedAt,
			Likes:           likes,
			Dislikes:        dislikes,
			UserVote:        userVote,
		}
	}
	return out, nil
}

// HasReview reports whether the caller already reviewed the given place.
func (s *ReviewService) HasReview(caller identity.Caller, placeID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Review{}).
		Where("user_id = ? AND place_id = ?", caller.ID, placeID).
		Count(&count).Error
	return count > 0, err
}

// ToResponse builds the owner-facing projection for a single review.
func (s *ReviewService) ToResponse(review *models.Review, callerID uuid.UUID) dto.ReviewResponse {
	var votes []models.ReviewVote
	if err := s.db.Where("review_id = ?", review.ID).Find(&votes).Error; err == nil {
		review.Votes = votes
	}
	return s.toReviewResponse(review, callerID)
}

func (s *ReviewService) toReviewResponse(r *models.Review, callerID uuid.UUID) dto.ReviewResponse {
	likes, dislikes, userVote := tallyVotes(r.Votes, callerID)
	return dto.ReviewResponse{
		ID:               r.ID,
		PlaceID:          r.PlaceID,
		PlaceName:        r.PlaceName,
		Rating:           r.Rating,
		CriteriaRatings:  decodeCriteria(r.CriteriaRatings),
		IsDirectRating:   r.IsDirectRating,
		Comment:          r.Comment,
		PhotoURL:         s.photos.URL(r.PhotoPath),
		CreatedAt:        r.CreatedAt,
		Likes:            likes,
		Dislikes:         dislikes,
		UserVote:         userVote,
		ModerationStatus: string(r.ModerationStatus),
		RejectionReason:  r.RejectionReason,
	}
}

func (s *ReviewService) evaluateAchievements(userID uuid.UUID) []models.Achievement {
	result, err := s.achievements.Evaluate(userID)
	if err != nil {
		// The primary mutation already committed; a failed re-check is not a
		// reason to fail the request.
		slog.Error("achievement evaluation failed", "user_id", userID.String(), "error", err)
		return nil
	}
	return result.NewlyEarned
}

// resolveRating enforces the rating-XOR-criteria contract and derives the
// effective rating. The mean of the four criteria values is rounded half
// away from zero (math.Round), so a mean of 4.5 stores as 5.
func resolveRating(direct *int, criteria map[string]int) (rating int, isDirect bool, criteriaJSON datatypes.JSON, err error) {
	if len(criteria) > 0 {
		if len(criteria) != criteriaCount {
			return 0, false, nil, invalid("criteria_ratings", fmt.Sprintf("exactly %d criteria required", criteriaCount))
		}
		sum := 0
		for key, v := range criteria {
			if v < 1 || v > 5 {
				return 0, false, nil, invalid("criteria_ratings", fmt.Sprintf("criterion %q must be between 1 and 5", key))
			}
			sum += v
		}
		rating = int(math.Round(float64(sum) / float64(len(criteria))))

		b, merr := json.Marshal(criteria)
		if merr != nil {
			return 0, false, nil, fmt.Errorf("failed to encode criteria: %w", merr)
		}
		return rating, false, datatypes.JSON(b), nil
	}

	if direct == nil {
		return 0, false, nil, invalid("rating", "either rating or criteria_ratings is required")
	}
	if *direct < 1 || *direct > 5 {
		return 0, false, nil, invalid("rating", "must be between 1 and 5")
	}
	return *direct, true, nil, nil
}

func decodeCriteria(raw datatypes.JSON) map[string]int {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func tallyVotes(votes []models.ReviewVote, callerID uuid.UUID) (likes, dislikes int64, userVote int) {
	for _, v := range votes {
		if v.IsLike {
			likes++
		} else {
			dislikes++
		}
		if callerID != uuid.Nil && v.UserID == callerID {
			if v.IsLike {
				userVote = 1
			} else {
				userVote = -1
			}
		}
	}
	return likes, dislikes, userVote
}
