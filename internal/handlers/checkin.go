package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/events"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

type kioskRoutine struct {
	ID              uint          `json:"id"`
	Name            string        `json:"name"`
	Rule            string        `json:"rule"`
	Overridden      bool          `json:"overridden"`
	OverrideMinutes int           `json:"override_minutes,omitempty"`
	Tasks           []models.Task `json:"tasks"`
}

type kioskView struct {
	Person   models.Person  `json:"person"`
	Routines []kioskRoutine `json:"routines"`
}

// GET /checkin?code=
// Kiosk lookup: the person behind the code plus their routines that are
// visible right now. No session; the code is the credential.
func CheckinLookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		writeErr(w, http.StatusBadRequest, "invalid_code")
		return
	}

	var person models.Person
	if err := db.Conn().
		Where("checkin_code = ? AND status = ?", code, models.StatusActive).
		First(&person).Error; err != nil {
		writeErr(w, http.StatusNotFound, "code_not_found")
		return
	}

	routines, err := visibleRoutinesFor(person, time.Now())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}

	if events.OnCheckin != nil {
		events.OnCheckin(person)
	}
	writeJSON(w, http.StatusOK, kioskView{Person: person, Routines: routines})
}

// POST /checkin
// Kiosk task completion: {code, task_id}. Eligibility rules: the task's
// routine must be assigned to the person and visible now (overrides
// count).
func CheckinComplete(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Code   string `json:"code"`
		TaskID uint   `json:"task_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	code := strings.TrimSpace(in.Code)
	if code == "" || in.TaskID == 0 {
		writeErr(w, http.StatusBadRequest, "invalid_code")
		return
	}

	var person models.Person
	if err := db.Conn().
		Where("checkin_code = ? AND status = ?", code, models.StatusActive).
		First(&person).Error; err != nil {
		writeErr(w, http.StatusNotFound, "code_not_found")
		return
	}

	var task models.Task
	if err := db.Conn().First(&task, in.TaskID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}

	now := time.Now()
	routines, err := visibleRoutinesFor(person, now)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	eligible := false
	for _, routine := range routines {
		if routine.ID == task.RoutineID {
			eligible = true
			break
		}
	}
	if !eligible {
		writeErr(w, http.StatusConflict, "forbidden")
		return
	}

	completion, err := svc.AwardCompletion(db.Conn(), task, person.ID, 0, now)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	if events.OnTaskCompleted != nil {
		events.OnTaskCompleted(completion)
	}
	writeJSON(w, http.StatusCreated, completion)
}

// visibleRoutinesFor loads the person's assigned active routines and
// keeps the ones visible at the given instant.
func visibleRoutinesFor(person models.Person, now time.Time) ([]kioskRoutine, error) {
	var routines []models.Routine
	err := db.Conn().
		Joins("JOIN routine_assignments ON routine_assignments.routine_id = routines.id").
		Where("routine_assignments.person_id = ?", person.ID).
		Where("routines.status = ?", models.StatusActive).
		Preload("Tasks").
		Find(&routines).Error
	if err != nil {
		return nil, err
	}

	var overrides []models.VisibilityOverride
	_ = db.Conn().Find(&overrides).Error

	out := make([]kioskRoutine, 0, len(routines))
	for _, routine := range routines {
		row := kioskRoutine{
			ID:    routine.ID,
			Name:  routine.Name,
			Rule:  svc.DescribeVisibility(routine),
			Tasks: routine.Tasks,
		}
		visible := svc.RoutineVisibleOn(routine, now)
		if ov := svc.ActiveOverride(routine.ID, overrides, now); ov != nil {
			visible = true
			row.Overridden = true
			row.OverrideMinutes = svc.RemainingMinutes(*ov, now)
		}
		if !visible {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
