package services

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/dto"
	"github.com/palmmap/palmmap/internal/identity"
	"github.com/palmmap/palmmap/internal/models"
	"github.com/palmmap/palmmap/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrAdminRequired = errors.New("admin privileges required")
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfDemotion  = errors.New("cannot revoke your own admin role")
)

// BannedWords feed the content pre-filter. A match never blocks a review, it
// only flags the row for the moderation queue.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

// ModerationService owns the Pending/Approved/Rejected review lifecycle, the
// admin user roster, and the regex pre-filter that flags suspicious comments
// before a human looks at them.
type ModerationService struct {
	db     *gorm.DB
	photos *storage.PhotoStore

	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
	compiled            bool
	mu                  sync.RWMutex
}

func NewModerationService(db *gorm.DB, photos *storage.PhotoStore) *ModerationService {
	s := &ModerationService{db: db, photos: photos}
	s.compilePatterns()
	return s
}

func (s *ModerationService) compilePatterns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiled {
		return
	}

	s.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			s.bannedWordRegexps = append(s.bannedWordRegexps, re)
		}
	}

	s.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	s.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	s.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	s.repeatedCharPattern = regexp.MustCompile(`(?i)(a{4,}|b{4,}|c{4,}|d{4,}|e{4,}|f{4,}|g{4,}|h{4,}|i{4,}|j{4,}|k{4,}|l{4,}|m{4,}|n{4,}|o{4,}|p{4,}|q{4,}|r{4,}|s{4,}|t{4,}|u{4,}|v{4,}|w{4,}|x{4,}|y{4,}|z{4,}|!{4,}|\?{4,}|\.{4,})`)
	s.allCapsPattern = regexp.MustCompile(`[A-Z]{5,}`)
	s.compiled = true
}

// FilterContent screens text and returns (clean, reason). The verdict is a
// hint for the moderation queue; publication is always a human decision.
func (s *ModerationService) FilterContent(text string) (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range s.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if s.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if s.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if s.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if s.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	capsMatches := s.allCapsPattern.FindAllString(text, -1)
	if len(capsMatches) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

// Moderate moves a review to Approved or Rejected. Re-moderation is allowed
// in both directions: approving a rejected review clears its reason, and an
// approved review can still be rejected later.
func (s *ModerationService) Moderate(caller identity.Caller, reviewID uuid.UUID, req *dto.ModerateRequest) error {
	if !caller.Admin {
		return ErrAdminRequired
	}

	var status models.ModerationStatus
	switch req.Action {
	case "approve":
		status = models.ModerationApproved
	case "reject":
		if strings.TrimSpace(req.Reason) == "" {
			return invalid("reason", "required when rejecting")
		}
		status = models.ModerationRejected
	default:
		return invalid("action", "must be approve or reject")
	}

	reason := ""
	if status == models.ModerationRejected {
		reason = req.Reason
	}

	now := time.Now().UTC()
	result := s.db.Model(&models.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"moderation_status": status,
			"rejection_reason":  reason,
			"moderated_at":      now,
			"moderator_id":      caller.ID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// ApproveAll approves the listed reviews that are currently Pending and
// silently skips the rest. Returns how many rows changed.
func (s *ModerationService) ApproveAll(caller identity.Caller, ids []uuid.UUID) (int64, error) {
	if !caller.Admin {
		return 0, ErrAdminRequired
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	result := s.db.Model(&models.Review{}).
		Where("id IN ? AND moderation_status = ?", ids, models.ModerationPending).
		Updates(map[string]interface{}{
			"moderation_status": models.ModerationApproved,
			"rejection_reason":  "",
			"moderated_at":      now,
			"moderator_id":      caller.ID,
		})
	return result.RowsAffected, result.Error
}

// ListReviews pages the moderation queue, optionally filtered by status.
// Flagged reviews carry the pre-filter's reason so admins can triage.
func (s *ModerationService) ListReviews(caller identity.Caller, status string, page, pageSize int) (*dto.ModerationReviewList, error) {
	if !caller.Admin {
		return nil, ErrAdminRequired
	}
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.Model(&models.Review{})
	if status != "" {
		switch models.ModerationStatus(status) {
		case models.ModerationPending, models.ModerationApproved, models.ModerationRejected:
			query = query.Where("moderation_status = ?", status)
		default:
			return nil, invalid("status", "must be pending, approved or rejected")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var reviews []models.Review
	err := query.Preload("User").
		Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.ModerationReviewResponse, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		out[i] = dto.ModerationReviewResponse{
			ID:               r.ID,
			UserID:           r.UserID,
			AuthorName:       r.User.DisplayName,
			PlaceID:          r.PlaceID,
			PlaceName:        r.PlaceName,
			Rating:           r.Rating,
			Comment:          r.Comment,
			PhotoURL:         s.photos.URL(r.PhotoPath),
			CreatedAt:        r.CreatedAt,
			ModerationStatus: string(r.ModerationStatus),
			Flagged:          r.Flagged,
			FlagReason:       r.FlagReason,
		}
	}

	return &dto.ModerationReviewList{
		Reviews:    out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Stats reports review counts per moderation status.
func (s *ModerationService) Stats(caller identity.Caller) (*dto.ModerationStatsResponse, error) {
	if !caller.Admin {
		return nil, ErrAdminRequired
	}

	stats := &dto.ModerationStatsResponse{}
	counts := []struct {
		status models.ModerationStatus
		dest   *int64
	}{
		{models.ModerationPending, &stats.Pending},
		{models.ModerationApproved, &stats.Approved},
		{models.ModerationRejected, &stats.Rejected},
	}
	for _, c := range counts {
		if err := s.db.Model(&models.Review{}).
			Where("moderation_status = ?", c.status).
			Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

// ListUsers pages the user roster for the admin panel.
func (s *ModerationService) ListUsers(caller identity.Caller, page, pageSize int) (*dto.AdminUserList, error) {
	if !caller.Admin {
		return nil, ErrAdminRequired
	}
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var users []models.User
	err := s.db.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.AdminUserResponse, len(users))
	for i, u := range users {
		out[i] = dto.AdminUserResponse{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Level:       u.Level,
			Points:      u.Points,
			ReviewCount: u.ReviewCount,
			IsAdmin:     u.IsAdmin,
		}
	}

	return &dto.AdminUserList{
		Users:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// SetAdmin grants or revokes the admin role. An admin cannot revoke their
// own role, so the system always keeps at least the acting admin.
func (s *ModerationService) SetAdmin(caller identity.Caller, userID uuid.UUID, isAdmin bool) error {
	if !caller.Admin {
		return ErrAdminRequired
	}
	if userID == caller.ID && !isAdmin {
		return ErrSelfDemotion
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_admin", isAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
