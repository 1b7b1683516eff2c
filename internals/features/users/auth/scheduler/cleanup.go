package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authRepo "educenter_backend/internals/features/users/auth/repository"
	"educenter_backend/internals/observability"
)

// RegisterBlacklistCleanup purges expired revoked tokens once a day.
func RegisterBlacklistCleanup(c *cron.Cron, db *gorm.DB) (cron.EntryID, error) {
	return c.AddFunc("@daily", func() { RunBlacklistCleanup(db) })
}

func RunBlacklistCleanup(db *gorm.DB) {
	n, err := authRepo.CleanupExpiredBlacklist(db)
	if err != nil {
		zap.S().Errorw("token blacklist cleanup failed", "err", err)
		observability.CaptureErr(err)
		return
	}
	zap.S().Infow("token blacklist cleanup", "deleted", n)
}
