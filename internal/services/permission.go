package services

import (
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

// Action is something a caller wants to do to a person/task/routine.
type Action string

const (
	ActionView          Action = "view"
	ActionCompleteTask  Action = "complete_task"
	ActionEditTask      Action = "edit_task"
	ActionCreateTask    Action = "create_task"
	ActionDeleteTask    Action = "delete_task"
	ActionEditRoutine   Action = "edit_routine"
	ActionCreateRoutine Action = "create_routine"
	ActionDeleteRoutine Action = "delete_routine"
)

// PermissionDeniedError is terminal for the current operation; callers
// must not retry.
type PermissionDeniedError struct {
	Action Action
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + string(e.Action)
}

// PermContext identifies who is asking and what they are aiming at.
// Zero ids mean "not applicable".
type PermContext struct {
	UserID    uint
	RoleID    uint
	PersonID  uint
	TaskID    uint
	RoutineID uint
}

// Permission levels are ordered; a higher rank implies every capability
// of the ranks below it. Unknown strings rank below everything and so
// always deny.
var (
	coParentRank = map[string]int{
		models.CoParentReadOnly:       0,
		models.CoParentTaskCompletion: 1,
		models.CoParentFullEdit:       2,
	}
	coTeacherRank = map[string]int{
		models.CoTeacherView:      0,
		models.CoTeacherEditTasks: 1,
		models.CoTeacherFullEdit:  2,
	}
	shareRank = map[string]int{
		models.ShareView:   0,
		models.ShareEdit:   1,
		models.ShareManage: 2,
	}
)

func coParentAllows(level string, action Action) bool {
	rank, ok := coParentRank[level]
	if !ok {
		return false
	}
	switch action {
	case ActionView:
		return rank >= 0
	case ActionCompleteTask:
		return rank >= 1
	default:
		return rank >= 2
	}
}

func coTeacherAllows(level string, action Action) bool {
	rank, ok := coTeacherRank[level]
	if !ok {
		return false
	}
	switch action {
	case ActionView:
		return rank >= 0
	case ActionCompleteTask, ActionEditTask, ActionCreateTask:
		return rank >= 1
	default:
		return rank >= 2
	}
}

// HasPermission decides whether the user may perform the action through
// the given role. Ownership grants everything; otherwise an active
// co-parent or co-teacher delegation must cover the action. Any lookup
// failure denies (fail closed).
func HasPermission(gdb *gorm.DB, ctx PermContext, action Action) bool {
	var role models.Role
	if err := gdb.First(&role, ctx.RoleID).Error; err != nil {
		return false
	}

	// Owner bypass: acting on your own role needs no delegation.
	if role.UserID == ctx.UserID {
		return true
	}

	switch role.Type {
	case models.RoleParent:
		var cp models.CoParent
		err := gdb.
			Joins("JOIN roles ON roles.id = co_parents.delegate_role_id").
			Where("co_parents.primary_role_id = ? AND co_parents.status = ?", ctx.RoleID, models.GrantActive).
			Where("roles.user_id = ?", ctx.UserID).
			First(&cp).Error
		if err != nil {
			return false
		}
		// Person allow-list applies before the level: a person outside
		// it is off-limits even for full_edit delegates.
		if ctx.PersonID != 0 && !allowListContains(cp.PersonIDs, ctx.PersonID) {
			return false
		}
		return coParentAllows(cp.Permission, action)

	case models.RoleTeacher:
		if ctx.RoutineID == 0 {
			return false
		}
		var routine models.Routine
		if err := gdb.First(&routine, ctx.RoutineID).Error; err != nil {
			return false
		}
		if routine.GroupID == nil {
			return false
		}
		var ct models.CoTeacher
		err := gdb.
			Joins("JOIN roles ON roles.id = co_teachers.delegate_role_id").
			Where("co_teachers.group_id = ? AND co_teachers.status = ?", *routine.GroupID, models.GrantActive).
			Where("roles.user_id = ?", ctx.UserID).
			First(&ct).Error
		if err != nil {
			return false
		}
		return coTeacherAllows(ct.Permission, action)
	}

	return false
}

// EnforcePermission is HasPermission with a terminal error on denial.
func EnforcePermission(gdb *gorm.DB, ctx PermContext, action Action) error {
	if HasPermission(gdb, ctx, action) {
		return nil
	}
	return &PermissionDeniedError{Action: action}
}

func allowListContains(list string, personID uint) bool {
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err == nil && uint(n) == personID {
			return true
		}
	}
	return false
}

// FormatPersonIDs renders an allow-list for storage.
func FormatPersonIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
