package handlers

import (
	"net/http"
	"time"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/events"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/tasks/{taskID}/complete
func CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, routine, ok := loadTask(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)

	var in struct {
		PersonID uint `json:"person_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.PersonID == 0 {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}

	ctx := svc.PermContext{
		UserID: claims.UserID, RoleID: routine.RoleID,
		PersonID: in.PersonID, RoutineID: routine.ID, TaskID: task.ID,
	}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionCompleteTask); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	completion, err := svc.AwardCompletion(db.Conn(), task, in.PersonID, routine.RoleID, time.Now())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	if events.OnTaskCompleted != nil {
		events.OnTaskCompleted(completion)
	}
	writeJSON(w, http.StatusCreated, completion)
}

// GET /api/persons/{personID}/completions?role=
func PersonCompletions(w http.ResponseWriter, r *http.Request) {
	personID := pathID(r, "personID")
	claims := sessionClaims(r)

	completions, err := svc.TaskCompletionsForPerson(db.Conn(), personID, claims.UserID, requestingRoleID(r))
	if err == svc.ErrForbidden {
		writeErr(w, http.StatusForbidden, "forbidden")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, completions)
}
