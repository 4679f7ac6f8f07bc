package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

type accessFixture struct {
	gdb       *gorm.DB
	owner     models.User
	grantee   models.User
	ownerRole models.Role
	gRole     models.Role
	person    models.Person
}

func newAccessFixture(t *testing.T) accessFixture {
	t.Helper()
	gdb := openTestDB(t)

	owner := models.User{Email: "owner@example.com", Name: "Olive Owner"}
	grantee := models.User{Email: "aunt@example.com", Name: "Aunt"}
	gdb.Create(&owner)
	gdb.Create(&grantee)

	ownerRole := models.Role{UserID: owner.ID, Type: models.RoleParent, Name: "Home"}
	gRole := models.Role{UserID: grantee.ID, Type: models.RoleParent, Name: "Aunt's"}
	gdb.Create(&ownerRole)
	gdb.Create(&gRole)

	person := models.Person{RoleID: ownerRole.ID, Name: "Kid", Status: models.StatusActive, CheckinCode: "CHK-0000000A"}
	gdb.Create(&person)

	return accessFixture{gdb: gdb, owner: owner, grantee: grantee, ownerRole: ownerRole, gRole: gRole, person: person}
}

func (f accessFixture) share(permission, status string) models.PersonSharingConnection {
	conn := models.PersonSharingConnection{
		PersonID:   f.person.ID,
		RoleID:     f.gRole.ID,
		ShareType:  "person",
		Permission: permission,
		SharerName: f.owner.Name,
		Status:     status,
	}
	f.gdb.Create(&conn)
	return conn
}

func TestHasAccessToPerson_Owner(t *testing.T) {
	f := newAccessFixture(t)
	if !HasAccessToPerson(f.gdb, f.owner.ID, f.ownerRole.ID, f.person.ID, models.ShareManage) {
		t.Error("owner should have manage access")
	}
	// right role, wrong user
	if HasAccessToPerson(f.gdb, f.grantee.ID, f.ownerRole.ID, f.person.ID, models.ShareView) {
		t.Error("role must belong to the requesting user")
	}
}

func TestHasAccessToPerson_SharingHierarchy(t *testing.T) {
	f := newAccessFixture(t)
	f.share(models.ShareEdit, models.GrantActive)

	if !HasAccessToPerson(f.gdb, f.grantee.ID, f.gRole.ID, f.person.ID, models.ShareView) {
		t.Error("edit grant should satisfy view")
	}
	if !HasAccessToPerson(f.gdb, f.grantee.ID, f.gRole.ID, f.person.ID, models.ShareEdit) {
		t.Error("edit grant should satisfy edit")
	}
	if HasAccessToPerson(f.gdb, f.grantee.ID, f.gRole.ID, f.person.ID, models.ShareManage) {
		t.Error("edit grant must not satisfy manage")
	}
}

func TestHasAccessToPerson_InactiveGrants(t *testing.T) {
	for _, status := range []string{models.GrantRevoked, models.GrantExpired} {
		t.Run(status, func(t *testing.T) {
			f := newAccessFixture(t)
			f.share(models.ShareManage, status)
			if HasAccessToPerson(f.gdb, f.grantee.ID, f.gRole.ID, f.person.ID, models.ShareView) {
				t.Errorf("%s grant must be treated as absent", status)
			}
		})
	}
}

func TestAccessiblePersons(t *testing.T) {
	f := newAccessFixture(t)
	f.share(models.ShareView, models.GrantActive)

	// grantee's own person, plus an archived one that must not list
	own := models.Person{RoleID: f.gRole.ID, Name: "Own Kid", Status: models.StatusActive, CheckinCode: "CHK-0000000B"}
	f.gdb.Create(&own)
	archived := models.Person{RoleID: f.gRole.ID, Name: "Old", Status: models.StatusArchived, CheckinCode: "CHK-0000000C"}
	f.gdb.Create(&archived)

	list, err := AccessiblePersons(f.gdb, f.gRole.ID, f.grantee.ID)
	if err != nil {
		t.Fatalf("AccessiblePersons: %v", err)
	}
	if len(list.Owned) != 1 || list.Owned[0].ID != own.ID {
		t.Errorf("owned: want just %d, got %+v", own.ID, list.Owned)
	}
	if len(list.Shared) != 1 {
		t.Fatalf("shared: want 1, got %d", len(list.Shared))
	}
	s := list.Shared[0]
	if s.ID != f.person.ID || !s.IsShared || s.SharerName != f.owner.Name || s.Permission != models.ShareView {
		t.Errorf("shared annotation wrong: %+v", s)
	}
	if len(list.All) != 2 {
		t.Errorf("all: want 2, got %d", len(list.All))
	}
}

func TestAccessiblePersons_NoActiveConnections(t *testing.T) {
	f := newAccessFixture(t)
	f.share(models.ShareManage, models.GrantRevoked)
	f.share(models.ShareManage, models.GrantExpired)

	list, err := AccessiblePersons(f.gdb, f.gRole.ID, f.grantee.ID)
	if err != nil {
		t.Fatalf("AccessiblePersons: %v", err)
	}
	if len(list.Shared) != 0 {
		t.Errorf("revoked/expired connections must not surface, got %+v", list.Shared)
	}
}

func TestAccessiblePersons_SkipsStaleConnections(t *testing.T) {
	f := newAccessFixture(t)
	f.share(models.ShareView, models.GrantActive)
	f.gdb.Delete(&models.Person{}, f.person.ID)

	list, err := AccessiblePersons(f.gdb, f.gRole.ID, f.grantee.ID)
	if err != nil {
		t.Fatalf("AccessiblePersons: %v", err)
	}
	if len(list.Shared) != 0 {
		t.Errorf("connection to a deleted person must be skipped, got %+v", list.Shared)
	}
}

func TestTaskCompletionsForPerson_Forbidden(t *testing.T) {
	f := newAccessFixture(t)
	// no share at all
	if _, err := TaskCompletionsForPerson(f.gdb, f.person.ID, f.grantee.ID, f.gRole.ID); err != ErrForbidden {
		t.Errorf("want ErrForbidden, got %v", err)
	}
}

func TestTaskCompletionsForPerson_CapAndOrder(t *testing.T) {
	f := newAccessFixture(t)
	f.share(models.ShareView, models.GrantActive)

	base := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		f.gdb.Create(&models.TaskCompletion{
			TaskID:      uint(i + 1),
			PersonID:    f.person.ID,
			Points:      1,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	completions, err := TaskCompletionsForPerson(f.gdb, f.person.ID, f.grantee.ID, f.gRole.ID)
	if err != nil {
		t.Fatalf("TaskCompletionsForPerson: %v", err)
	}
	if len(completions) != 100 {
		t.Fatalf("want 100 rows, got %d", len(completions))
	}
	for i := 1; i < len(completions); i++ {
		if completions[i].CompletedAt.After(completions[i-1].CompletedAt) {
			t.Fatalf("not newest-first at index %d", i)
		}
	}
	if completions[0].TaskID != 120 {
		t.Errorf("newest completion should be task 120, got %d", completions[0].TaskID)
	}
}
