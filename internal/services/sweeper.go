package services

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

// StartOverrideSweeper prunes expired visibility overrides once a minute.
// Purely housekeeping: every read re-checks ExpiresAt against the clock,
// so nothing depends on this loop running. Enable with OVERRIDE_SWEEP=1.
func StartOverrideSweeper(gdb *gorm.DB) {
	if os.Getenv("OVERRIDE_SWEEP") != "1" {
		return
	}
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := SweepExpiredOverrides(gdb, time.Now()); err == nil && n > 0 {
				log.Printf("override sweeper: pruned %d expired", n)
			}
		}
	}()
}

// SweepExpiredOverrides deletes override rows whose expiry has passed and
// reports how many were removed.
func SweepExpiredOverrides(gdb *gorm.DB, now time.Time) (int64, error) {
	res := gdb.Where("expires_at <= ?", now).Delete(&models.VisibilityOverride{})
	return res.RowsAffected, res.Error
}
