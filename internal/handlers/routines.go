package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

type routineInput struct {
	Name          string `json:"name"`
	GroupID       *uint  `json:"group_id"`
	Visibility    string `json:"visibility"`
	VisibleDays   []int  `json:"visible_days"`
	StartMonth    int    `json:"start_month"`
	StartDay      int    `json:"start_day"`
	EndMonth      int    `json:"end_month"`
	EndDay        int    `json:"end_day"`
	IsTeacherOnly bool   `json:"is_teacher_only"`
	IsProtected   bool   `json:"is_protected"`
	Type          string `json:"type"`
}

func (in routineInput) apply(routine *models.Routine) bool {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return false
	}
	switch in.Visibility {
	case models.VisibilityAlways, models.VisibilityDaysOfWeek,
		models.VisibilityDateRange, models.VisibilityConditional:
	default:
		return false
	}
	days := make(map[int]bool, len(in.VisibleDays))
	for _, d := range in.VisibleDays {
		if d < 0 || d > 6 {
			return false
		}
		days[d] = true
	}

	routine.Name = name
	routine.GroupID = in.GroupID
	routine.Visibility = in.Visibility
	routine.VisibleDays = svc.FormatVisibleDays(days)
	routine.StartMonth = in.StartMonth
	routine.StartDay = in.StartDay
	routine.EndMonth = in.EndMonth
	routine.EndDay = in.EndDay
	routine.IsTeacherOnly = in.IsTeacherOnly
	routine.IsProtected = in.IsProtected
	routine.Type = models.RoutineRegular
	if in.Type == models.RoutineSmart {
		routine.Type = models.RoutineSmart
	}
	return true
}

// POST /api/roles/{roleID}/routines
func CreateRoutine(w http.ResponseWriter, r *http.Request) {
	roleID := pathID(r, "roleID")
	claims := sessionClaims(r)

	ctx := svc.PermContext{UserID: claims.UserID, RoleID: roleID}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionCreateRoutine); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var in routineInput
	if !readJSON(w, r, &in) {
		return
	}
	routine := models.Routine{RoleID: roleID, Status: models.StatusActive}
	if !in.apply(&routine) {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	if err := db.Conn().Create(&routine).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

// POST /api/routines/{routineID}
func UpdateRoutine(w http.ResponseWriter, r *http.Request) {
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

	var in routineInput
	if !readJSON(w, r, &in) {
		return
	}
	if !in.apply(&routine) {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	if err := db.Conn().Save(&routine).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

// POST /api/routines/{routineID}/archive
func ArchiveRoutine(w http.ResponseWriter, r *http.Request) {
	routine, ok := loadRoutine(w, r)
	if !ok {
		return
	}
	claims := sessionClaims(r)
	ctx := svc.PermContext{UserID: claims.UserID, RoleID: routine.RoleID, RoutineID: routine.ID}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionDeleteRoutine); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}
	if routine.IsProtected {
		writeErr(w, http.StatusConflict, "protected_routine")
		return
	}
	routine.Status = models.StatusArchived
	if err := db.Conn().Save(&routine).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

// POST /api/routines/{routineID}/assign
func AssignRoutine(w http.ResponseWriter, r *http.Request) {
	routine, ok := loadRoutine(w, r)
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
	ctx := svc.PermContext{
		UserID: claims.UserID, RoleID: routine.RoleID,
		RoutineID: routine.ID, PersonID: in.PersonID,
	}
	if err := svc.EnforcePermission(db.Conn(), ctx, svc.ActionEditRoutine); err != nil {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var existing models.RoutineAssignment
	err := db.Conn().
		Where("routine_id = ? AND person_id = ?", routine.ID, in.PersonID).
		First(&existing).Error
	if err == nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}
	assignment := models.RoutineAssignment{RoutineID: routine.ID, PersonID: in.PersonID}
	if err := db.Conn().Create(&assignment).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// todayRoutine is a routine decorated with today's visibility state.
type todayRoutine struct {
	models.Routine
	Visible         bool   `json:"visible"`
	Rule            string `json:"rule"`
	Overridden      bool   `json:"overridden"`
	OverrideMinutes int    `json:"override_minutes,omitempty"`
}

// GET /api/roles/{roleID}/routines/today
func RoutinesToday(w http.ResponseWriter, r *http.Request) {
	roleID := pathID(r, "roleID")
	claims := sessionClaims(r)

	ctx := svc.PermContext{UserID: claims.UserID, RoleID: roleID}
	if !svc.HasPermission(db.Conn(), ctx, svc.ActionView) {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var routines []models.Routine
	err := db.Conn().
		Where("role_id = ? AND status = ?", roleID, models.StatusActive).
		Order("name asc").
		Find(&routines).Error
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}

	var overrides []models.VisibilityOverride
	_ = db.Conn().Find(&overrides).Error

	now := time.Now()
	out := make([]todayRoutine, 0, len(routines))
	for _, routine := range routines {
		row := todayRoutine{
			Routine: routine,
			Visible: svc.RoutineVisibleOn(routine, now),
			Rule:    svc.DescribeVisibility(routine),
		}
		if ov := svc.ActiveOverride(routine.ID, overrides, now); ov != nil {
			row.Visible = true
			row.Overridden = true
			row.OverrideMinutes = svc.RemainingMinutes(*ov, now)
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

func loadRoutine(w http.ResponseWriter, r *http.Request) (models.Routine, bool) {
	var routine models.Routine
	if err := db.Conn().First(&routine, pathID(r, "routineID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return routine, false
	}
	return routine, true
}
