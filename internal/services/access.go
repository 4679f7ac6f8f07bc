package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

// ErrForbidden signals denied access to a person's data; terminal.
var ErrForbidden = errors.New("forbidden")

// completionHistoryCap bounds a person's completion history reads.
const completionHistoryCap = 100

// SharedPerson is a person record annotated with how the caller can see
// it. Owned persons carry IsShared=false and no sharer metadata.
type SharedPerson struct {
	models.Person
	IsShared   bool   `json:"is_shared"`
	SharerName string `json:"sharer_name,omitempty"`
	Permission string `json:"permission,omitempty"`
}

// PersonList is the full set of persons visible to a role.
type PersonList struct {
	Owned  []SharedPerson `json:"owned"`
	Shared []SharedPerson `json:"shared"`
	All    []SharedPerson `json:"all"`
}

// HasAccessToPerson is true when the person is owned by the given
// role+user, or an active sharing connection grants the role at least
// requiredLevel (view < edit < manage).
func HasAccessToPerson(gdb *gorm.DB, userID, roleID, personID uint, requiredLevel string) bool {
	var person models.Person
	if err := gdb.First(&person, personID).Error; err != nil {
		return false
	}

	if person.RoleID == roleID {
		var role models.Role
		if err := gdb.First(&role, roleID).Error; err == nil && role.UserID == userID {
			return true
		}
	}

	var conn models.PersonSharingConnection
	err := gdb.
		Where("person_id = ? AND role_id = ? AND status = ?", personID, roleID, models.GrantActive).
		First(&conn).Error
	if err != nil {
		return false
	}

	have, ok := shareRank[conn.Permission]
	if !ok {
		return false
	}
	need, ok := shareRank[requiredLevel]
	if !ok {
		return false
	}
	return have >= need
}

// AccessiblePersons lists everyone a role can see: its own active
// persons plus persons shared with it through active connections.
// Connections whose owner person has since been deleted are skipped.
func AccessiblePersons(gdb *gorm.DB, roleID, userID uint) (PersonList, error) {
	var out PersonList

	var owned []models.Person
	err := gdb.
		Where("role_id = ? AND status = ?", roleID, models.StatusActive).
		Order("name asc").
		Find(&owned).Error
	if err != nil {
		return out, err
	}
	for _, p := range owned {
		out.Owned = append(out.Owned, SharedPerson{Person: p})
	}

	var conns []models.PersonSharingConnection
	err = gdb.
		Where("role_id = ? AND share_type = ? AND status = ?", roleID, "person", models.GrantActive).
		Find(&conns).Error
	if err != nil {
		return out, err
	}
	for _, c := range conns {
		var p models.Person
		if err := gdb.First(&p, c.PersonID).Error; err != nil {
			// stale connection to a deleted person; skip quietly
			continue
		}
		out.Shared = append(out.Shared, SharedPerson{
			Person:     p,
			IsShared:   true,
			SharerName: c.SharerName,
			Permission: c.Permission,
		})
	}

	out.All = append(out.All, out.Owned...)
	out.All = append(out.All, out.Shared...)
	return out, nil
}

// TaskCompletionsForPerson returns the person's most recent completions,
// newest first, capped. View access is required; without it the caller
// gets ErrForbidden and no data.
func TaskCompletionsForPerson(gdb *gorm.DB, personID, userID, roleID uint) ([]models.TaskCompletion, error) {
	if !HasAccessToPerson(gdb, userID, roleID, personID, models.ShareView) {
		return nil, ErrForbidden
	}

	var completions []models.TaskCompletion
	err := gdb.
		Where("person_id = ?", personID).
		Order("completed_at desc").
		Limit(completionHistoryCap).
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}
