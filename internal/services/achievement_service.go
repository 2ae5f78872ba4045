package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/palmmap/palmmap/internal/models"
	"gorm.io/gorm"
)

// AchievementService computes per-user progress for every badge definition
// and awards completed ones exactly once. Evaluation is a conservative
// re-check of all definitions after each qualifying mutation (review create,
// photo upload, place create); per-user badge counts are small and the
// aggregate queries are cheap at this data scale.
type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

// EvaluationResult reports badges unlocked by the evaluating call and the
// progress percentage for every definition.
type EvaluationResult struct {
	NewlyEarned []models.Achievement
	Progress    map[uuid.UUID]int
}

// progressFunc computes the current value and completion for one progress
// variant. The variant set is closed; each entry in progressEvaluators is
// the single source of truth for its rule.
type progressFunc func(db *gorm.DB, userID uuid.UUID, target int) (current int, completed bool, err error)

var progressEvaluators = map[models.AchievementProgressType]progressFunc{
	models.ProgressFirstPlaceAdded:        evalFirstPlaceAdded,
	models.ProgressReviewsCount:           evalReviewsCount,
	models.ProgressPhotosCount:            evalPhotosCount,
	models.ProgressDetailedReviewsCount:   evalDetailedReviewsCount,
	models.ProgressBalancedReviews:        evalBalancedReviews,
	models.ProgressNewPlacesAdded:         evalNewPlacesAdded,
	models.ProgressHighRatedHealthyPlaces: evalHighRatedHealthyPlaces,
	models.ProgressTopThreeRating:         evalTopThreeRating,
	models.ProgressPlacesReviewedByOthers: evalPlacesReviewedByOthers,
	models.ProgressAllRatingsUsed:         evalAllRatingsUsed,
	models.ProgressPlacesInOneDay:         evalPlacesInOneDay,
}

// Evaluate recomputes progress for userID and awards any badge whose rule is
// now satisfied. Already-earned badges report 100 and are never re-checked,
// so progress can only move forward and awards are never revoked. A badge
// appears in NewlyEarned only on the call that completes it.
func (s *AchievementService) Evaluate(userID uuid.UUID) (*EvaluationResult, error) {
	statuses, err := s.collect(userID)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{Progress: make(map[uuid.UUID]int, len(statuses))}
	for _, st := range statuses {
		result.Progress[st.Achievement.ID] = st.Progress
		if st.Earned || !st.Completed {
			continue
		}

		ua := models.UserAchievement{
			UserID:        userID,
			AchievementID: st.Achievement.ID,
			EarnedAt:      time.Now().UTC(),
		}
		if err := s.db.Create(&ua).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent evaluation won the insert; it owns the
				// "newly earned" report.
				continue
			}
			return nil, fmt.Errorf("failed to award achievement %s: %w", st.Achievement.Code, err)
		}
		result.NewlyEarned = append(result.NewlyEarned, st.Achievement)
	}
	return result, nil
}

// Snapshot computes progress without awarding, for read-only projections
// like the profile page.
func (s *AchievementService) Snapshot(userID uuid.UUID) ([]AchievementStatus, error) {
	return s.collect(userID)
}

// AchievementStatus pairs a badge definition with one user's standing.
type AchievementStatus struct {
	Achievement models.Achievement
	Progress    int
	Completed   bool
	Earned      bool
	EarnedAt    *time.Time
}

func (s *AchievementService) collect(userID uuid.UUID) ([]AchievementStatus, error) {
	var all []models.Achievement
	if err := s.db.Order("code ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	var earnedRows []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Find(&earnedRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}
	earnedAt := make(map[uuid.UUID]time.Time, len(earnedRows))
	for _, row := range earnedRows {
		earnedAt[row.AchievementID] = row.EarnedAt
	}

	statuses := make([]AchievementStatus, 0, len(all))
	for _, a := range all {
		if at, ok := earnedAt[a.ID]; ok {
			when := at
			statuses = append(statuses, AchievementStatus{
				Achievement: a, Progress: 100, Completed: true, Earned: true, EarnedAt: &when,
			})
			continue
		}

		eval, ok := progressEvaluators[a.ProgressType]
		if !ok {
			// Unknown variant in seed data; skip rather than fail the caller.
			continue
		}
		current, completed, err := eval(s.db, userID, a.TargetValue)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", a.Code, err)
		}

		progress := 0
		if a.TargetValue > 0 {
			progress = current * 100 / a.TargetValue
			if progress > 100 {
				progress = 100
			}
		}
		statuses = append(statuses, AchievementStatus{
			Achievement: a, Progress: progress, Completed: completed,
		})
	}
	return statuses, nil
}

func evalFirstPlaceAdded(db *gorm.DB, userID uuid.UUID, _ int) (int, bool, error) {
	var n int64
	err := db.Model(&models.Place{}).Where("created_by_user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	if n > 0 {
		return 1, true, nil
	}
	return 0, false, nil
}

func evalReviewsCount(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	var n int64
	err := db.Model(&models.Review{}).
		Where("user_id = ? AND moderation_status = ?", userID, models.ModerationApproved).
		Distinct("place_id").
		Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	return int(n), int(n) >= target, nil
}

func evalPhotosCount(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	var n int64
	err := db.Model(&models.Review{}).
		Where("user_id = ? AND moderation_status = ? AND photo_path <> ''", userID, models.ModerationApproved).
		Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	return int(n), int(n) >= target, nil
}

func evalDetailedReviewsCount(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	var n int64
	err := db.Model(&models.Review{}).
		Where("user_id = ? AND moderation_status = ? AND length(comment) > 100", userID, models.ModerationApproved).
		Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	return int(n), int(n) >= target, nil
}

// balancedBuckets are the three category buckets for BalancedReviews.
// Pharmacy and alcohol shops share a bucket.
var balancedBuckets = [][]string{
	{"healthy_food"},
	{"gym"},
	{"pharmacy", "alcohol"},
}

func evalBalancedReviews(db *gorm.DB, userID uuid.UUID, _ int) (int, bool, error) {
	placeIDs, err := reviewedInternalPlaceIDs(db, userID)
	if err != nil {
		return 0, false, err
	}
	if len(placeIDs) == 0 {
		return 0, false, nil
	}

	minCount := -1
	completed := true
	for _, types := range balancedBuckets {
		var n int64
		err := db.Model(&models.Place{}).
			Where("id IN ? AND type IN ?", placeIDs, types).
			Count(&n).Error
		if err != nil {
			return 0, false, err
		}
		if n < 2 {
			completed = false
		}
		if minCount < 0 || int(n) < minCount {
			minCount = int(n)
		}
	}
	return minCount, completed, nil
}

func evalNewPlacesAdded(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	var n int64
	err := db.Model(&models.Place{}).Where("created_by_user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	return int(n), int(n) >= target, nil
}

func evalHighRatedHealthyPlaces(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	var healthyIDs []uuid.UUID
	err := db.Model(&models.Place{}).Where("type = ?", "healthy_food").Pluck("id", &healthyIDs).Error
	if err != nil {
		return 0, false, err
	}
	if len(healthyIDs) == 0 {
		return 0, false, nil
	}

	keys := make([]string, len(healthyIDs))
	for i, id := range healthyIDs {
		keys[i] = id.String()
	}

	var highRated []string
	err = db.Model(&models.Review{}).
		Where("place_id IN ? AND moderation_status = ?", keys, models.ModerationApproved).
		Group("place_id").
		Having("AVG(rating) >= ?", 4.5).
		Pluck("place_id", &highRated).Error
	if err != nil {
		return 0, false, err
	}
	return len(highRated), len(highRated) >= target, nil
}

func evalTopThreeRating(db *gorm.DB, userID uuid.UUID, _ int) (int, bool, error) {
	var ids []uuid.UUID
	err := db.Model(&models.User{}).
		Order("points DESC, level DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, err
	}
	for rank, id := range ids {
		if id == userID {
			if rank < 3 {
				return 1, true, nil
			}
			return 0, false, nil
		}
	}
	return 0, false, nil
}

func evalPlacesReviewedByOthers(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	var ownIDs []uuid.UUID
	err := db.Model(&models.Place{}).Where("created_by_user_id = ?", userID).Pluck("id", &ownIDs).Error
	if err != nil {
		return 0, false, err
	}
	if len(ownIDs) == 0 {
		return 0, false, nil
	}

	keys := make([]string, len(ownIDs))
	for i, id := range ownIDs {
		keys[i] = id.String()
	}

	var n int64
	err = db.Model(&models.Review{}).
		Where("place_id IN ? AND user_id <> ? AND moderation_status = ?", keys, userID, models.ModerationApproved).
		Distinct("place_id").
		Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	return int(n), int(n) >= target, nil
}

func evalAllRatingsUsed(db *gorm.DB, userID uuid.UUID, _ int) (int, bool, error) {
	var ratings []int
	err := db.Model(&models.Review{}).
		Where("user_id = ? AND moderation_status = ?", userID, models.ModerationApproved).
		Distinct("rating").
		Pluck("rating", &ratings).Error
	if err != nil {
		return 0, false, err
	}
	used := make(map[int]bool, len(ratings))
	for _, r := range ratings {
		used[r] = true
	}
	completed := used[1] && used[2] && used[3] && used[4] && used[5]
	return len(used), completed, nil
}

func evalPlacesInOneDay(db *gorm.DB, userID uuid.UUID, target int) (int, bool, error) {
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	var n int64
	err := db.Model(&models.Place{}).
		Where("created_by_user_id = ? AND created_at >= ? AND created_at < ?",
			userID, dayStart, dayStart.Add(24*time.Hour)).
		Count(&n).Error
	if err != nil {
		return 0, false, err
	}
	return int(n), int(n) >= target, nil
}

// reviewedInternalPlaceIDs returns ids of internal places the user has an
// approved review for. External catalog refs have no place row and are
// skipped.
func reviewedInternalPlaceIDs(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var refs []string
	err := db.Model(&models.Review{}).
		Where("user_id = ? AND moderation_status = ?", userID, models.ModerationApproved).
		Distinct("place_id").
		Pluck("place_id", &refs).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		if id, ok := models.ParsePlaceRef(ref).InternalID(); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
