package services

import (
	"context"
	"fmt"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartReconcileScheduler runs AccountMirror.ReconcileAll on schedule
// (standard cron syntax or descriptors such as "@every 5m").
func StartReconcileScheduler(schedule string, mirror *AccountMirror, log logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		synced, err := mirror.ReconcileAll(context.Background())
		entry := log.WithField("synced", synced)
		if err != nil {
			entry.WithError(err).Warn("account reconciliation finished with errors")
			return
		}
		entry.Debug("account reconciliation finished")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconciliation %q: %w", schedule, err)
	}

	c.Start()
	log.WithField("schedule", schedule).Info("reconciliation scheduler started")
	return c, nil
}
