package services

import (
	"errors"

	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

const leaderboardSize = 10

// ProfileService builds the profile and leaderboard projections. Profile
// reads never award achievements; they only snapshot progress.
type ProfileService struct {
	db           *gorm.DB
	achievements *AchievementService
}

func NewProfileService(db *gorm.DB, achievements *AchievementService) *ProfileService {
	return &ProfileService{db: db, achievements: achievements}
}

// Profile returns the caller's account plus every badge with progress.
func (s *ProfileService) Profile(caller identity.Caller) (*dto.ProfileResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	statuses, err := s.achievements.Snapshot(caller.ID)
	if err != nil {
		return nil, err
	}

	achievements := make([]dto.AchievementResponse, len(statuses))
	for i, st := range statuses {
		achievements[i] = dto.AchievementResponse{
			ID:          st.Achievement.ID,
			Code:        st.Achievement.Code,
			Title:       st.Achievement.Title,
			Description: st.Achievement.Description,
			Icon:        st.Achievement.Icon,
			Progress:    st.Progress,
			Earned:      st.Earned,
			EarnedAt:    st.EarnedAt,
		}
	}

	return &dto.ProfileResponse{
		User:         ToUserResponse(&user),
		Achievements: achievements,
	}, nil
}

// Ratings returns the points leaderboard: the top ten users plus the
// caller's own rank, even when it falls outside the top.
func (s *ProfileService) Ratings(caller identity.Caller) (*dto.RatingsResponse, error) {
	var users []models.User
	err := s.db.Order("points DESC, level DESC, created_at ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}

	resp := &dto.RatingsResponse{Top: make([]dto.RatingEntry, 0, leaderboardSize)}
	for i, u := range users {
		entry := dto.RatingEntry{
			Rank:        i + 1,
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Points:      u.Points,
			Level:       u.Level,
		}
		if i < leaderboardSize {
			resp.Top = append(resp.Top, entry)
		}
		if u.ID == caller.ID {
			resp.Position = entry.Rank
			resp.Me = entry
		}
	}
	return resp, nil
}

// ToUserResponse maps a user row to its public projection.
func ToUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Level:       u.Level,
		ReviewCount: u.ReviewCount,
		Points:      u.Points,
		IsAdmin:     u.IsAdmin,
	}
}
