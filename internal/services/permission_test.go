package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

type permFixture struct {
	gdb      *gorm.DB
	owner    models.User
	delegate models.User
	role     models.Role // parent role owned by owner
	child    models.Person
}

func newPermFixture(t *testing.T) permFixture {
	t.Helper()
	gdb := openTestDB(t)

	owner := models.User{Email: "owner@example.com", Name: "Owner"}
	delegate := models.User{Email: "delegate@example.com", Name: "Delegate"}
	gdb.Create(&owner)
	gdb.Create(&delegate)

	role := models.Role{UserID: owner.ID, Type: models.RoleParent, Name: "Home"}
	gdb.Create(&role)

	child := models.Person{RoleID: role.ID, Name: "Kid", Status: models.StatusActive, CheckinCode: "CHK-00000001"}
	gdb.Create(&child)

	return permFixture{gdb: gdb, owner: owner, delegate: delegate, role: role, child: child}
}

// delegateRole gives the delegate user a role of their own plus a
// co-parent grant on the fixture's parent role.
func (f permFixture) delegateRole(t *testing.T, permission, personIDs, status string) models.Role {
	t.Helper()
	dr := models.Role{UserID: f.delegate.ID, Type: models.RoleParent, Name: "Co"}
	f.gdb.Create(&dr)
	cp := models.CoParent{
		PrimaryRoleID:  f.role.ID,
		DelegateRoleID: dr.ID,
		Permission:     permission,
		PersonIDs:      personIDs,
		Status:         status,
	}
	f.gdb.Create(&cp)
	return dr
}

func TestHasPermission_OwnerBypass(t *testing.T) {
	f := newPermFixture(t)
	ctx := PermContext{UserID: f.owner.ID, RoleID: f.role.ID}
	for _, action := range []Action{
		ActionView, ActionCompleteTask, ActionEditTask, ActionCreateTask,
		ActionDeleteTask, ActionEditRoutine, ActionCreateRoutine, ActionDeleteRoutine,
	} {
		if !HasPermission(f.gdb, ctx, action) {
			t.Errorf("owner denied %s", action)
		}
	}
}

func TestHasPermission_MissingRoleFailsClosed(t *testing.T) {
	f := newPermFixture(t)
	ctx := PermContext{UserID: f.owner.ID, RoleID: 9999}
	if HasPermission(f.gdb, ctx, ActionView) {
		t.Error("missing role must deny")
	}
}

func TestHasPermission_CoParentReadOnly(t *testing.T) {
	f := newPermFixture(t)
	f.delegateRole(t, models.CoParentReadOnly, FormatPersonIDs([]uint{f.child.ID}), models.GrantActive)

	ctx := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID, PersonID: f.child.ID}
	if !HasPermission(f.gdb, ctx, ActionView) {
		t.Error("read_only should allow view")
	}
	if HasPermission(f.gdb, ctx, ActionCompleteTask) {
		t.Error("read_only must not allow complete_task")
	}
	if HasPermission(f.gdb, ctx, ActionEditRoutine) {
		t.Error("read_only must not allow edit_routine")
	}
}

func TestHasPermission_AllowListBeatsLevel(t *testing.T) {
	f := newPermFixture(t)
	other := models.Person{RoleID: f.role.ID, Name: "Other", Status: models.StatusActive, CheckinCode: "CHK-00000002"}
	f.gdb.Create(&other)
	// full_edit, but the allow-list only names the first child
	f.delegateRole(t, models.CoParentFullEdit, FormatPersonIDs([]uint{f.child.ID}), models.GrantActive)

	in := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID, PersonID: f.child.ID}
	out := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID, PersonID: other.ID}
	if !HasPermission(f.gdb, in, ActionDeleteRoutine) {
		t.Error("full_edit on allow-listed person should pass")
	}
	if HasPermission(f.gdb, out, ActionView) {
		t.Error("person outside allow-list must deny, even view")
	}
}

func TestHasPermission_CoParentTaskCompletion(t *testing.T) {
	f := newPermFixture(t)
	f.delegateRole(t, models.CoParentTaskCompletion, FormatPersonIDs([]uint{f.child.ID}), models.GrantActive)

	ctx := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID, PersonID: f.child.ID}
	if !HasPermission(f.gdb, ctx, ActionCompleteTask) {
		t.Error("task_completion should allow complete_task")
	}
	if HasPermission(f.gdb, ctx, ActionEditTask) {
		t.Error("task_completion must not allow edit_task")
	}
}

func TestHasPermission_RevokedGrantIsAbsent(t *testing.T) {
	f := newPermFixture(t)
	f.delegateRole(t, models.CoParentFullEdit, FormatPersonIDs([]uint{f.child.ID}), models.GrantRevoked)

	ctx := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID, PersonID: f.child.ID}
	if HasPermission(f.gdb, ctx, ActionView) {
		t.Error("revoked grant must deny")
	}
}

func TestHasPermission_UnknownLevelDenies(t *testing.T) {
	f := newPermFixture(t)
	f.delegateRole(t, "superuser", FormatPersonIDs([]uint{f.child.ID}), models.GrantActive)

	ctx := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID, PersonID: f.child.ID}
	if HasPermission(f.gdb, ctx, ActionView) {
		t.Error("unrecognized permission level must deny")
	}
}

func TestHasPermission_CoTeacher(t *testing.T) {
	gdb := openTestDB(t)

	teacher := models.User{Email: "t@example.com"}
	helper := models.User{Email: "h@example.com"}
	gdb.Create(&teacher)
	gdb.Create(&helper)

	tRole := models.Role{UserID: teacher.ID, Type: models.RoleTeacher, Name: "Class"}
	gdb.Create(&tRole)
	hRole := models.Role{UserID: helper.ID, Type: models.RoleTeacher, Name: "Helper"}
	gdb.Create(&hRole)

	group := models.Group{RoleID: tRole.ID, Name: "3B"}
	gdb.Create(&group)

	routine := models.Routine{RoleID: tRole.ID, GroupID: &group.ID, Name: "Morning", Status: models.StatusActive}
	gdb.Create(&routine)
	orphan := models.Routine{RoleID: tRole.ID, Name: "No group", Status: models.StatusActive}
	gdb.Create(&orphan)

	gdb.Create(&models.CoTeacher{
		TeacherRoleID:  tRole.ID,
		DelegateRoleID: hRole.ID,
		GroupID:        group.ID,
		Permission:     models.CoTeacherEditTasks,
		Status:         models.GrantActive,
	})

	ctx := PermContext{UserID: helper.ID, RoleID: tRole.ID, RoutineID: routine.ID}
	if !HasPermission(gdb, ctx, ActionCreateTask) {
		t.Error("edit_tasks should allow create_task")
	}
	if !HasPermission(gdb, ctx, ActionCompleteTask) {
		t.Error("edit_tasks should allow complete_task")
	}
	if HasPermission(gdb, ctx, ActionDeleteTask) {
		t.Error("edit_tasks must not allow delete_task")
	}

	// Teacher delegation needs a routine to scope the group.
	noRoutine := PermContext{UserID: helper.ID, RoleID: tRole.ID}
	if HasPermission(gdb, noRoutine, ActionView) {
		t.Error("no routine context must deny")
	}
	// A routine outside any group can't match a group-scoped grant.
	offGroup := PermContext{UserID: helper.ID, RoleID: tRole.ID, RoutineID: orphan.ID}
	if HasPermission(gdb, offGroup, ActionView) {
		t.Error("groupless routine must deny")
	}
}

func TestEnforcePermission_CarriesAction(t *testing.T) {
	f := newPermFixture(t)
	ctx := PermContext{UserID: f.delegate.ID, RoleID: f.role.ID}

	err := EnforcePermission(f.gdb, ctx, ActionDeleteRoutine)
	if err == nil {
		t.Fatal("expected denial")
	}
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("want PermissionDeniedError, got %T", err)
	}
	if denied.Action != ActionDeleteRoutine {
		t.Errorf("want delete_routine, got %s", denied.Action)
	}

	if err := EnforcePermission(f.gdb, PermContext{UserID: f.owner.ID, RoleID: f.role.ID}, ActionDeleteRoutine); err != nil {
		t.Errorf("owner should pass: %v", err)
	}
}
