package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/models"
	"gorm.io/gorm"
)

const retention = 30 * 24 * time.Hour

// StartCleanup runs a daily goroutine that deletes system_logs older than 30 days.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := Cleanup(db, time.Now()); err != nil {
					slog.Error("log cleanup failed", "action", "logs.cleanup", "error", err.Error())
				}
			case <-done:
				return
			}
		}
	}()
}

// Cleanup deletes system_logs older than the retention window relative to now.
func Cleanup(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
