package cron

import (
	"context"

	"github.com/Temirlan472/Learning_Tracker/internal/jobs"
	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartMaintenanceCronJobs wires the periodic maintenance work: the
// notification TTL sweep and the analytics history rollup.
func StartMaintenanceCronJobs(notificationService *services.NotificationService, rollup *jobs.HistoryRollup) {
	c := cron.New()

	// Expired notifications are already hidden by the read-side filter;
	// the sweep reclaims the storage.
	c.AddFunc("@hourly", func() {
		_, err := notificationService.DeleteExpired(context.Background())
		if err != nil {
			logrus.WithError(err).Error("DeleteExpired failed")
		}
	})

	// Weekly history rollup
	c.AddFunc("0 3 * * *", func() {
		err := rollup.RunScan(context.Background())
		if err != nil {
			logrus.WithError(err).Error("History rollup failed")
		}
	})

	c.Start()
}
