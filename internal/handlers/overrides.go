package handlers

import (
	"net/http"
	"time"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/routines/{routineID}/override
// Forces the routine visible for duration_minutes regardless of its rule.
func CreateOverride(w http.ResponseWriter, r *http.Request) {
	routine, ok := loadRoutine(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{UserID: claims.UserID, RoleID: routine.RoleID, RoutineID: routine.ID}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionEditRoutine); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var in struct {
		DurationMinutes int `json:"duration_minutes"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.DurationMinutes <= 0 {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}

	// Replace any previous override for the routine; one live override
	// per routine is the expectation upstream.
	_ = db.Conn().Where("routine_id = ?", routine.ID).
		Delete(&models.VisibilityOverride{}).Error

	ov := models.VisibilityOverride{
		RoutineID:       routine.ID,
		DurationMinutes: in.DurationMinutes,
		ExpiresAt:       time.Now().Add(time.Duration(in.DurationMinutes) * time.Minute),
	}
	if err := db.Conn().Create(&ov).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, ov)
}

// GET /api/routines/{routineID}/override
func GetOverride(w http.ResponseWriter, r *http.Request) {
	routine, ok := loadRoutine(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{UserID: claims.UserID, RoleID: routine.RoleID, RoutineID: routine.ID}
	if !svc.HasPermission(db.Conn(), ctx, svc.ActionView) {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var overrides []models.VisibilityOverride
	_ = db.Conn().Where("routine_id = ?", routine.ID).Find(&overrides).Error

	now := time.Now()
	ov := svc.ActiveOverride(routine.ID, overrides, now)
	if ov == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":            true,
		"override":          ov,
		"remaining_minutes": svc.RemainingMinutes(*ov, now),
	})
}
