package services

import (
	"time"

	"github.com/routinely/routinely/internal/models"
)

// ActiveOverride returns the first unexpired override for the routine, or
// nil. Upstream creates at most one live override per routine, but that
// is not enforced here; any matching active one will do.
func ActiveOverride(routineID uint, overrides []models.VisibilityOverride, now time.Time) *models.VisibilityOverride {
	for i := range overrides {
		if overrides[i].RoutineID == routineID && overrides[i].ExpiresAt.After(now) {
			return &overrides[i]
		}
	}
	return nil
}

// RemainingMinutes reports whole minutes until the override expires,
// clamped at zero.
func RemainingMinutes(ov models.VisibilityOverride, now time.Time) int {
	if !ov.ExpiresAt.After(now) {
		return 0
	}
	return int(ov.ExpiresAt.Sub(now) / time.Minute)
}
