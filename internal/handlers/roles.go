package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
)

func pathID(r *http.Request, name string) uint {
	n, _ := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return uint(n)
}

func queryID(r *http.Request, name string) uint {
	n, _ := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	return uint(n)
}

// POST /api/roles
func CreateRole(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Type != models.RoleParent && in.Type != models.RoleTeacher {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	role := models.Role{
		UserID: sessionClaims(r).UserID,
		Type:   in.Type,
		Name:   strings.TrimSpace(in.Name),
	}
	if err := db.Conn().Create(&role).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

// GET /api/roles
func ListRoles(w http.ResponseWriter, r *http.Request) {
	var roles []models.Role
	_ = db.Conn().Where("user_id = ?", sessionClaims(r).UserID).
		Order("id asc").Find(&roles).Error
	writeJSON(w, http.StatusOK, roles)
}

// ownRole resolves {roleID} and verifies the session user owns it.
// Delegated access never goes through role-management endpoints.
func ownRole(w http.ResponseWriter, r *http.Request) (models.Role, bool) {
	var role models.Role
	if err := db.Conn().First(&role, pathID(r, "roleID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return role, false
	}
	if role.UserID != sessionClaims(r).UserID {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return role, false
	}
	return role, true
}

// POST /api/roles/{roleID}/groups
func CreateGroup(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	if role.Type != models.RoleTeacher {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	group := models.Group{RoleID: role.ID, Name: strings.TrimSpace(in.Name)}
	if err := db.Conn().Create(&group).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// GET /api/roles/{roleID}/groups
func ListGroups(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	var groups []models.Group
	_ = db.Conn().Where("role_id = ?", role.ID).Order("name asc").Find(&groups).Error
	writeJSON(w, http.StatusOK, groups)
}
