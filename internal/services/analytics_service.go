package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxWeeklyEntries caps the weekly history array at write time.
const MaxWeeklyEntries = 52

// RetainWeeks is how much weekly history stays un-rolled-up; older entries
// are folded into monthly buckets by the rollup job.
const RetainWeeks = 12

// AnalyticsStore is the storage contract the analytics service depends on.
type AnalyticsStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Analytics, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Analytics, error)
	IncrementField(ctx context.Context, userID, field string, delta interface{}) (*models.Analytics, error)
	UpdateStreak(ctx context.Context, userID string, newStreak int) (*models.Analytics, error)
	AppendWeekly(ctx context.Context, userID string, entry models.WeeklyEntry, maxEntries int) (*models.Analytics, error)
	ReplaceHistory(ctx context.Context, userID string, weekly []models.WeeklyEntry, monthly []models.MonthlyEntry) error
	GetLeaderboard(ctx context.Context, limit, skip int64) ([]models.Analytics, int64, error)
}

// Leaderboard is one page of analytics documents by learning hours.
type Leaderboard struct {
	Analytics []models.Analytics `json:"analytics"`
	Total     int64              `json:"total"`
	HasMore   bool               `json:"hasMore"`
}

type AnalyticsService struct {
	repo       AnalyticsStore
	dispatcher Dispatcher
}

func NewAnalyticsService(repo AnalyticsStore, dispatcher Dispatcher) *AnalyticsService {
	return &AnalyticsService{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// GetAnalytics fetches the user's analytics document without creating one.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID string) (*models.Analytics, error) {
	analytics, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return analytics, err
}

// InitAnalytics returns the user's analytics document, lazily creating a
// zeroed one on first access.
func (s *AnalyticsService) InitAnalytics(ctx context.Context, userID string) (*models.Analytics, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// IncrementStat bumps one allow-listed counter. Names outside the
// allow-list fail validation before any storage call is made.
func (s *AnalyticsService) IncrementStat(ctx context.Context, userID, statName string, by int) (*models.Analytics, error) {
	field, ok := models.StatField(statName)
	if !ok {
		return nil, validationf("invalid stat name: %s", statName)
	}
	if by <= 0 {
		return nil, validationf("incrementBy must be positive")
	}

	analytics, err := s.repo.IncrementField(ctx, userID, field, by)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Broadcast("analytics:updated", map[string]interface{}{
		"userId": userID,
		statName: analytics.Stat(statName),
	})
	return analytics, nil
}

// UpdateLearningHours atomically adds hours to the running total.
func (s *AnalyticsService) UpdateLearningHours(ctx context.Context, userID string, hours float64) (*models.Analytics, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, validationf("hours must be a finite number")
	}
	if hours < 0 {
		return nil, validationf("hours must not be negative")
	}

	analytics, err := s.repo.IncrementField(ctx, userID, "total_learning_hours", hours)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Broadcast("analytics:updated", map[string]interface{}{
		"userId":             userID,
		"totalLearningHours": analytics.TotalLearningHours,
	})
	return analytics, nil
}

// UpdateStreak sets the current streak. The stored longest streak only ever
// rises; the caller-supplied longest value is advisory and ignored in favor
// of the stored invariant.
func (s *AnalyticsService) UpdateStreak(ctx context.Context, userID string, newStreak, longestStreakHint int) (*models.Analytics, error) {
	if newStreak < 0 {
		return nil, validationf("currentStreak must not be negative")
	}

	analytics, err := s.repo.UpdateStreak(ctx, userID, newStreak)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Broadcast("analytics:updated", map[string]interface{}{
		"userId":        userID,
		"currentStreak": analytics.CurrentStreak,
		"longestStreak": analytics.LongestStreak,
	})
	return analytics, nil
}

// AppendWeekly records one weekly history bucket, keeping the array capped.
func (s *AnalyticsService) AppendWeekly(ctx context.Context, userID string, date time.Time, hoursLogged float64, logsCount int) (*models.Analytics, error) {
	if date.IsZero() {
		return nil, validationf("date is required")
	}
	if math.IsNaN(hoursLogged) || math.IsInf(hoursLogged, 0) || hoursLogged < 0 {
		return nil, validationf("hoursLogged must be a finite, non-negative number")
	}
	if logsCount < 0 {
		return nil, validationf("logsCount must not be negative")
	}

	entry := models.WeeklyEntry{Date: date, HoursLogged: hoursLogged, LogsCount: logsCount}
	analytics, err := s.repo.AppendWeekly(ctx, userID, entry, MaxWeeklyEntries)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Broadcast("analytics:updated", map[string]interface{}{
		"userId":          userID,
		"weeklyDataAdded": true,
	})
	return analytics, nil
}

// GetLeaderboard lists analytics by total learning hours, descending.
func (s *AnalyticsService) GetLeaderboard(ctx context.Context, limit, skip int64) (*Leaderboard, error) {
	analytics, total, err := s.repo.GetLeaderboard(ctx, limit, skip)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{
		Analytics: analytics,
		Total:     total,
		HasMore:   skip+limit < total,
	}, nil
}

// RollUpHistory folds weekly entries older than the retention window into
// monthly buckets for every user, keeping per-user documents size-bounded.
func (s *AnalyticsService) RollUpHistory(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -RetainWeeks*7)

	const pageSize = 100
	for skip := int64(0); ; skip += pageSize {
		page, total, err := s.repo.GetLeaderboard(ctx, pageSize, skip)
		if err != nil {
			return err
		}

		for i := range page {
			a := &page[i]
			weekly, monthly, changed := foldHistory(a.WeeklyData, a.MonthlyData, cutoff)
			if !changed {
				continue
			}
			if err := s.repo.ReplaceHistory(ctx, a.UserID, weekly, monthly); err != nil {
				logger.Log.WithError(err).WithField("user_id", a.UserID).Error("Failed to roll up analytics history")
				continue
			}
		}

		if skip+pageSize >= total {
			return nil
		}
	}
}

// foldHistory moves weekly entries dated before cutoff into monthly buckets
// keyed by YYYY-MM. Entry order within each slice is preserved.
func foldHistory(weekly []models.WeeklyEntry, monthly []models.MonthlyEntry, cutoff time.Time) ([]models.WeeklyEntry, []models.MonthlyEntry, bool) {
	kept := make([]models.WeeklyEntry, 0, len(weekly))
	buckets := make(map[string]*models.MonthlyEntry)
	order := []string{}

	for i := range monthly {
		m := monthly[i]
		buckets[m.Month] = &m
		order = append(order, m.Month)
	}

	changed := false
	for _, entry := range weekly {
		if !entry.Date.Before(cutoff) {
			kept = append(kept, entry)
			continue
		}
		changed = true
		month := entry.Date.Format("2006-01")
		bucket, ok := buckets[month]
		if !ok {
			bucket = &models.MonthlyEntry{Month: month}
			buckets[month] = bucket
			order = append(order, month)
		}
		bucket.HoursLogged += entry.HoursLogged
		bucket.LogsCount += entry.LogsCount
	}

	if !changed {
		return weekly, monthly, false
	}

	folded := make([]models.MonthlyEntry, 0, len(order))
	for _, month := range order {
		folded = append(folded, *buckets[month])
	}
	return kept, folded, true
}
