package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyticsService() (*AnalyticsService, *fakeAnalyticsStore, *fakeDispatcher) {
	store := newFakeAnalyticsStore()
	dispatcher := &fakeDispatcher{}
	return NewAnalyticsService(store, dispatcher), store, dispatcher
}

func TestGetAnalyticsNotFound(t *testing.T) {
	svc, _, _ := newAnalyticsService()

	_, err := svc.GetAnalytics(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitAnalyticsCreatesZeroedRecord(t *testing.T) {
	svc, _, _ := newAnalyticsService()
	ctx := context.Background()

	a, err := svc.InitAnalytics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.UserID)
	assert.Zero(t, a.TotalLearningHours)
	assert.Zero(t, a.CurrentStreak)
	assert.Zero(t, a.LongestStreak)
	assert.Zero(t, a.LogsCreated)

	// Second init returns the same record, it does not reset anything.
	_, err = svc.IncrementStat(ctx, "u1", models.StatLogsCreated, 3)
	require.NoError(t, err)
	again, err := svc.InitAnalytics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.LogsCreated)
}

func TestIncrementStatRejectsNamesOutsideAllowList(t *testing.T) {
	svc, store, dispatcher := newAnalyticsService()
	ctx := context.Background()

	_, err := svc.IncrementStat(ctx, "u1", models.StatLogsCreated, 1)
	require.NoError(t, err)

	for _, name := range []string{"__proto__", "totalLearningHours", "currentStreak", "logs_created", "constructor", ""} {
		_, err := svc.IncrementStat(ctx, "u1", name, 1)
		assert.True(t, IsValidationError(err), "statName %q must be rejected", name)
	}

	a, err := store.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, a.LogsCreated, "rejected increments must not mutate the record")
	assert.Zero(t, a.TotalLearningHours)
	assert.Len(t, dispatcher.broadcasts, 1, "rejected increments must not broadcast")
}

func TestIncrementStatRejectsNonPositiveDelta(t *testing.T) {
	svc, _, _ := newAnalyticsService()

	for _, by := range []int{0, -1, -100} {
		_, err := svc.IncrementStat(context.Background(), "u1", models.StatGoalsCompleted, by)
		assert.True(t, IsValidationError(err))
	}
}

func TestIncrementStatBroadcastsChange(t *testing.T) {
	svc, _, dispatcher := newAnalyticsService()

	a, err := svc.IncrementStat(context.Background(), "u1", models.StatSkillsAdded, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, a.SkillsAdded)

	require.Len(t, dispatcher.broadcasts, 1)
	assert.Equal(t, "analytics:updated", dispatcher.broadcasts[0].Event)
	payload := dispatcher.broadcasts[0].Payload.(map[string]interface{})
	assert.Equal(t, "u1", payload["userId"])
	assert.Equal(t, 2, payload[models.StatSkillsAdded])
}

func TestUpdateLearningHoursValidation(t *testing.T) {
	svc, _, _ := newAnalyticsService()
	ctx := context.Background()

	for _, hours := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5} {
		_, err := svc.UpdateLearningHours(ctx, "u1", hours)
		assert.True(t, IsValidationError(err), "hours %v must be rejected", hours)
	}
}

func TestUpdateLearningHoursAccumulates(t *testing.T) {
	svc, _, _ := newAnalyticsService()
	ctx := context.Background()

	_, err := svc.UpdateLearningHours(ctx, "u1", 1.5)
	require.NoError(t, err)
	a, err := svc.UpdateLearningHours(ctx, "u1", 2.25)
	require.NoError(t, err)
	assert.InDelta(t, 3.75, a.TotalLearningHours, 1e-9)
}

func TestStreakInvariantHoldsAcrossUpdates(t *testing.T) {
	svc, _, _ := newAnalyticsService()
	ctx := context.Background()

	for _, streak := range []int{3, 7, 2, 0, 9, 1} {
		a, err := svc.UpdateStreak(ctx, "u1", streak, 0)
		require.NoError(t, err)
		assert.Equal(t, streak, a.CurrentStreak)
		assert.GreaterOrEqual(t, a.LongestStreak, a.CurrentStreak)
	}

	a, err := svc.GetAnalytics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 9, a.LongestStreak)
}

func TestStreakHintIsAdvisoryOnly(t *testing.T) {
	svc, _, _ := newAnalyticsService()

	// An inflated hint must not leak into the stored longest streak.
	a, err := svc.UpdateStreak(context.Background(), "u1", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, a.CurrentStreak)
	assert.Equal(t, 2, a.LongestStreak)
}

func TestUpdateStreakRejectsNegative(t *testing.T) {
	svc, _, _ := newAnalyticsService()

	_, err := svc.UpdateStreak(context.Background(), "u1", -1, 0)
	assert.True(t, IsValidationError(err))
}

func TestAppendWeeklyValidationAndCap(t *testing.T) {
	svc, _, _ := newAnalyticsService()
	ctx := context.Background()

	_, err := svc.AppendWeekly(ctx, "u1", time.Time{}, 1, 1)
	assert.True(t, IsValidationError(err))
	_, err = svc.AppendWeekly(ctx, "u1", time.Now(), math.NaN(), 1)
	assert.True(t, IsValidationError(err))
	_, err = svc.AppendWeekly(ctx, "u1", time.Now(), -1, 1)
	assert.True(t, IsValidationError(err))
	_, err = svc.AppendWeekly(ctx, "u1", time.Now(), 1, -1)
	assert.True(t, IsValidationError(err))

	var latest *models.Analytics
	start := time.Now().AddDate(0, 0, -60*7)
	for i := 0; i < 60; i++ {
		latest, err = svc.AppendWeekly(ctx, "u1", start.AddDate(0, 0, i*7), 2, 1)
		require.NoError(t, err)
	}
	assert.Len(t, latest.WeeklyData, MaxWeeklyEntries, "weekly history stays capped")
}

func TestLeaderboardOrderAndHasMore(t *testing.T) {
	svc, _, _ := newAnalyticsService()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := svc.UpdateLearningHours(ctx, fmt.Sprintf("u%d", i), float64(i))
		require.NoError(t, err)
	}

	page, err := svc.GetLeaderboard(ctx, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Analytics, 3)
	assert.Equal(t, "u5", page.Analytics[0].UserID)
	assert.Equal(t, "u4", page.Analytics[1].UserID)
	assert.Equal(t, "u3", page.Analytics[2].UserID)

	page, err = svc.GetLeaderboard(ctx, 3, 3)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Analytics, 2)
}

func TestFoldHistory(t *testing.T) {
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	weekly := []models.WeeklyEntry{
		{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), HoursLogged: 4, LogsCount: 2},
		{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), HoursLogged: 6, LogsCount: 3},
		{Date: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), HoursLogged: 5, LogsCount: 1},
		{Date: time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC), HoursLogged: 8, LogsCount: 4},
	}
	monthly := []models.MonthlyEntry{
		{Month: "2026-03", HoursLogged: 10, LogsCount: 5},
	}

	keptWeekly, foldedMonthly, changed := foldHistory(weekly, monthly, cutoff)
	require.True(t, changed)

	require.Len(t, keptWeekly, 1)
	assert.Equal(t, 8.0, keptWeekly[0].HoursLogged)

	require.Len(t, foldedMonthly, 2)
	assert.Equal(t, "2026-03", foldedMonthly[0].Month)
	assert.InDelta(t, 20.0, foldedMonthly[0].HoursLogged, 1e-9, "old weeks merge into the existing bucket")
	assert.Equal(t, 10, foldedMonthly[0].LogsCount)
	assert.Equal(t, "2026-04", foldedMonthly[1].Month)
	assert.InDelta(t, 5.0, foldedMonthly[1].HoursLogged, 1e-9)
}

func TestFoldHistoryNoChange(t *testing.T) {
	cutoff := time.Now().AddDate(0, 0, -RetainWeeks*7)
	weekly := []models.WeeklyEntry{{Date: time.Now(), HoursLogged: 1, LogsCount: 1}}

	kept, monthly, changed := foldHistory(weekly, nil, cutoff)
	assert.False(t, changed)
	assert.Equal(t, weekly, kept)
	assert.Nil(t, monthly)
}

func TestRollUpHistoryAcrossUsers(t *testing.T) {
	svc, store, _ := newAnalyticsService()
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -(RetainWeeks+4)*7)
	recent := time.Now().AddDate(0, 0, -7)

	_, err := svc.AppendWeekly(ctx, "u1", old, 3, 2)
	require.NoError(t, err)
	_, err = svc.AppendWeekly(ctx, "u1", recent, 5, 1)
	require.NoError(t, err)
	_, err = svc.AppendWeekly(ctx, "u2", recent, 7, 3)
	require.NoError(t, err)

	require.NoError(t, svc.RollUpHistory(ctx))

	u1, err := store.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u1.WeeklyData, 1)
	assert.Equal(t, 5.0, u1.WeeklyData[0].HoursLogged)
	require.Len(t, u1.MonthlyData, 1)
	assert.Equal(t, old.Format("2006-01"), u1.MonthlyData[0].Month)
	assert.InDelta(t, 3.0, u1.MonthlyData[0].HoursLogged, 1e-9)

	u2, err := store.GetByUserID(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, u2.WeeklyData, 1, "recent-only history is untouched")
	assert.Empty(t, u2.MonthlyData)
}
