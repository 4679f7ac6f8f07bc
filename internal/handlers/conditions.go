package handlers

import (
	"net/http"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/routines/{routineID}/conditions
// The write-time cycle gate: a condition is only persisted after the
// dependency graph plus the proposed edge comes back acyclic.
func CreateCondition(w http.ResponseWriter, r *http.Request) {
	routine, ok := loadRoutine(w, r)
	if !ok {
		return
	}
	if routine.Type != models.RoutineSmart {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{UserID: claims.UserID, RoleID: routine.RoleID, RoutineID: routine.ID}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionEditRoutine); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var in struct {
		TargetTaskID    *uint `json:"target_task_id"`
		TargetRoutineID *uint `json:"target_routine_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.TargetTaskID == nil && in.TargetRoutineID == nil {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}

	// Resolve the proposed edges to routine ids before probing.
	var proposed []uint
	if in.TargetTaskID != nil {
		var task models.Task
		if err := db.Conn().First(&task, *in.TargetTaskID).Error; err != nil {
			writeErr(w, http.StatusNotFound, "not_found")
			return
		}
		proposed = append(proposed, task.RoutineID)
	}
	if in.TargetRoutineID != nil {
		var target models.Routine
		if err := db.Conn().First(&target, *in.TargetRoutineID).Error; err != nil {
			writeErr(w, http.StatusNotFound, "not_found")
			return
		}
		proposed = append(proposed, target.ID)
	}

	check, err := svc.DetectCycle(db.Conn(), routine.ID, proposed)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	if check.HasCycle {
		writeErrDetail(w, http.StatusConflict, "cyclic_dependency", map[string]any{
			"path":       check.Path,
			"path_names": routineNames(check.Path),
		})
		return
	}

	cond := models.Condition{
		RoutineID:       routine.ID,
		TargetTaskID:    in.TargetTaskID,
		TargetRoutineID: in.TargetRoutineID,
		Status:          models.StatusActive,
	}
	if err := db.Conn().Create(&cond).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, cond)
}

// POST /api/conditions/{conditionID}/delete
func DeleteCondition(w http.ResponseWriter, r *http.Request) {
	var cond models.Condition
	if err := db.Conn().First(&cond, pathID(r, "conditionID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	var routine models.Routine
	if err := db.Conn().First(&routine, cond.RoutineID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{UserID: claims.UserID, RoleID: routine.RoleID, RoutineID: routine.ID}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionEditRoutine); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}
	cond.Status = models.StatusInactive
	if err := db.Conn().Save(&cond).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// routineNames resolves a cycle path to display names, keeping order.
func routineNames(ids []uint) []string {
	if len(ids) == 0 {
		return nil
	}
	var routines []models.Routine
	_ = db.Conn().Where("id IN ?", ids).Find(&routines).Error
	byID := make(map[uint]string, len(routines))
	for _, r := range routines {
		byID[r.ID] = r.Name
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}
