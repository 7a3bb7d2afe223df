package jobs

import (
	"context"
	"fmt"

	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/sirupsen/logrus"
)

// HistoryRollup folds aged weekly analytics history into monthly buckets
// so per-user documents stay size-bounded.
type HistoryRollup struct {
	AnalyticsService *services.AnalyticsService
}

func NewHistoryRollup(analyticsService *services.AnalyticsService) *HistoryRollup {
	return &HistoryRollup{AnalyticsService: analyticsService}
}

// RunScan walks every analytics document and rolls up old weekly entries.
func (j *HistoryRollup) RunScan(ctx context.Context) error {
	if err := j.AnalyticsService.RollUpHistory(ctx); err != nil {
		return fmt.Errorf("history rollup failed: %v", err)
	}
	logrus.Info("Analytics history rollup completed")
	return nil
}
