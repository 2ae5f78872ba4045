package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

// VoteService handles like/dislike votes on reviews. A user holds at most one
// vote per review: casting the same vote again removes it, casting the
// opposite vote flips it.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// Vote applies toggle/flip semantics and returns the resulting tallies plus
// the caller's vote state after the call.
func (s *VoteService) Vote(caller identity.Caller, reviewID uuid.UUID, isLike bool) (*dto.VoteResponse, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		var existing models.ReviewVote
		err := tx.Where("review_id = ? AND user_id = ?", reviewID, caller.ID).First(&existing).Error
		switch {
		case err == nil:
			if existing.IsLike == isLike {
				return tx.Delete(&existing).Error
			}
			existing.IsLike = isLike
			return tx.Save(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.ReviewVote{ReviewID: reviewID, UserID: caller.ID, IsLike: isLike}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Lost a race against the same user's concurrent request;
					// the tally below still reflects the winner.
					return nil
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return s.Tally(reviewID, caller.ID)
}

// Tally counts likes and dislikes for a review and reports callerID's own
// vote as 1, -1 or 0.
func (s *VoteService) Tally(reviewID, callerID uuid.UUID) (*dto.VoteResponse, error) {
	var votes []models.ReviewVote
	if err := s.db.Where("review_id = ?", reviewID).Find(&votes).Error; err != nil {
		return nil, err
	}
	likes, dislikes, userVote := tallyVotes(votes, callerID)
	return &dto.VoteResponse{Likes: likes, Dislikes: dislikes, UserVote: userVote}, nil
}
