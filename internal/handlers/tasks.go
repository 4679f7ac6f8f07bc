package handlers

import (
	"net/http"
	"strings"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/routines/{routineID}/tasks
func CreateTask(w http.ResponseWriter, r *http.Request) {
	routine, ok := loadRoutine(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{UserID: claims.UserID, RoleID: routine.RoleID, RoutineID: routine.ID}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionCreateTask); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var in struct {
		Name     string `json:"name"`
		Points   int    `json:"points"`
		Position int    `json:"position"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	task := models.Task{
		RoutineID: routine.ID,
		Name:      name,
		Points:    in.Points,
		Position:  in.Position,
	}
	if err := db.Conn().Create(&task).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// POST /api/tasks/{taskID}
func UpdateTask(w http.ResponseWriter, r *http.Request) {
	task, routine, ok := loadTask(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{
		UserID: claims.UserID, RoleID: routine.RoleID,
		RoutineID: routine.ID, TaskID: task.ID,
	}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionEditTask); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var in struct {
		Name     string `json:"name"`
		Points   int    `json:"points"`
		Position int    `json:"position"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		task.Name = name
	}
	task.Points = in.Points
	task.Position = in.Position
	if err := db.Conn().Save(&task).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// POST /api/tasks/{taskID}/delete
func DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, routine, ok := loadTask(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{
		UserID: claims.UserID, RoleID: routine.RoleID,
		RoutineID: routine.ID, TaskID: task.ID,
	}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionDeleteTask); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}
	// Conditions pointing at this task go inactive with it.
	_ = db.Conn().Model(&models.Condition{}).
		Where("target_task_id = ?", task.ID).
		Update("status", models.StatusInactive).Error
	if err := db.Conn().Delete(&task).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadTask(w http.ResponseWriter, r *http.Request) (models.Task, models.Routine, bool) {
	var task models.Task
	var routine models.Routine
	if err := db.Conn().First(&task, pathID(r, "taskID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return task, routine, false
	}
	if err := db.Conn().First(&routine, task.RoutineID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return task, routine, false
	}
	return task, routine, true
}
