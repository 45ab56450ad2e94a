package backend

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPurgeSchedule runs the reset token purge every ten minutes.
const DefaultPurgeSchedule = "@every 10m"

// StartResetPurge schedules PurgeExpiredResets. Stop the returned cron on
// shutdown.
func StartResetPurge(accounts *AccountService, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := accounts.PurgeExpiredResets()
		if err != nil {
			logger.Error("purge expired reset tokens failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("purged expired reset tokens", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
