package handlers

import (
	"net/http"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/roles/{roleID}/coparents
// Only the primary role's owner can delegate; the person allow-list is
// explicit, never implied.
func CreateCoParent(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	if role.Type != models.RoleParent {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	var in struct {
		DelegateRoleID uint   `json:"delegate_role_id"`
		Permission     string `json:"permission"`
		PersonIDs      []uint `json:"person_ids"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	switch in.Permission {
	case models.CoParentReadOnly, models.CoParentTaskCompletion, models.CoParentFullEdit:
	default:
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	var delegate models.Role
	if err := db.Conn().First(&delegate, in.DelegateRoleID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}

	cp := models.CoParent{
		PrimaryRoleID:  role.ID,
		DelegateRoleID: delegate.ID,
		Permission:     in.Permission,
		PersonIDs:      svc.FormatPersonIDs(in.PersonIDs),
		Status:         models.GrantActive,
	}
	if err := db.Conn().Create(&cp).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, cp)
}

// POST /api/coparents/{coparentID}/revoke
func RevokeCoParent(w http.ResponseWriter, r *http.Request) {
	var cp models.CoParent
	if err := db.Conn().First(&cp, pathID(r, "coparentID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	var primary models.Role
	if err := db.Conn().First(&primary, cp.PrimaryRoleID).Error; err != nil ||
		primary.UserID != sessionClaims(r).UserID {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}
	cp.Status = models.GrantRevoked
	if err := db.Conn().Save(&cp).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

// POST /api/roles/{roleID}/coteachers
func CreateCoTeacher(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	if role.Type != models.RoleTeacher {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	var in struct {
		DelegateRoleID uint   `json:"delegate_role_id"`
		GroupID        uint   `json:"group_id"`
		Permission     string `json:"permission"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	switch in.Permission {
	case models.CoTeacherView, models.CoTeacherEditTasks, models.CoTeacherFullEdit:
	default:
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	// The group must belong to the delegating teacher.
	var group models.Group
	if err := db.Conn().First(&group, in.GroupID).Error; err != nil || group.RoleID != role.ID {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	var delegate models.Role
	if err := db.Conn().First(&delegate, in.DelegateRoleID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}

	ct := models.CoTeacher{
		TeacherRoleID:  role.ID,
		DelegateRoleID: delegate.ID,
		GroupID:        group.ID,
		Permission:     in.Permission,
		Status:         models.GrantActive,
	}
	if err := db.Conn().Create(&ct).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, ct)
}

// POST /api/coteachers/{coteacherID}/revoke
func RevokeCoTeacher(w http.ResponseWriter, r *http.Request) {
	var ct models.CoTeacher
	if err := db.Conn().First(&ct, pathID(r, "coteacherID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	var teacher models.Role
	if err := db.Conn().First(&teacher, ct.TeacherRoleID).Error; err != nil ||
		teacher.UserID != sessionClaims(r).UserID {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}
	ct.Status = models.GrantRevoked
	if err := db.Conn().Save(&ct).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, ct)
}
