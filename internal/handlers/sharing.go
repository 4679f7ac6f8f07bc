package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/persons/{personID}/invites?role=
// Inviting requires manage-level access to the person (owners always
// qualify).
func CreateShareInvite(w http.ResponseWriter, r *http.Request) {
	personID := pathID(r, "personID")
	claims := sessionClaims(r)

	if !svc.HasAccessToPerson(db.Conn(), claims.UserID, requestingRoleID(r), personID, models.ShareManage) {
		writeErr(w, http.StatusForbidden, "forbidden")
		return
	}

	var in struct {
		Permission     string `json:"permission"`
		ExpiresInHours int    `json:"expires_in_hours"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	switch in.Permission {
	case models.ShareView, models.ShareEdit, models.ShareManage:
	default:
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}
	if in.ExpiresInHours <= 0 {
		in.ExpiresInHours = 72
	}

	invite := models.ShareInvite{
		Code:       uuid.NewString(),
		PersonID:   personID,
		Permission: in.Permission,
		ExpiresAt:  time.Now().Add(time.Duration(in.ExpiresInHours) * time.Hour),
		Status:     models.InvitePending,
	}
	if err := db.Conn().Create(&invite).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

// POST /api/invites/{code}/accept
func AcceptShareInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	claims := sessionClaims(r)

	var in struct {
		RoleID uint `json:"role_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	// The invite is redeemed into one of the caller's own roles.
	var role models.Role
	if err := db.Conn().First(&role, in.RoleID).Error; err != nil || role.UserID != claims.UserID {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}

	var invite models.ShareInvite
	if err := db.Conn().Where("code = ?", code).First(&invite).Error; err != nil {
		writeErr(w, http.StatusNotFound, "code_not_found")
		return
	}
	if invite.Status != models.InvitePending {
		writeErr(w, http.StatusConflict, "invite_used")
		return
	}
	if invite.ExpiresAt.Before(time.Now()) {
		writeErr(w, http.StatusConflict, "invite_expired")
		return
	}

	// Sharer display name comes from the person's owning user.
	sharerName := ""
	var person models.Person
	if err := db.Conn().First(&person, invite.PersonID).Error; err == nil {
		var ownerRole models.Role
		if err := db.Conn().First(&ownerRole, person.RoleID).Error; err == nil {
			var owner models.User
			if err := db.Conn().First(&owner, ownerRole.UserID).Error; err == nil {
				sharerName = owner.Name
			}
		}
	}

	conn := models.PersonSharingConnection{
		PersonID:   invite.PersonID,
		RoleID:     role.ID,
		ShareType:  "person",
		Permission: invite.Permission,
		SharerName: sharerName,
		Status:     models.GrantActive,
	}
	invite.Status = models.InviteAccepted
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conn).Error; err != nil {
			return err
		}
		return tx.Save(&invite).Error
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, conn)
}

// POST /api/shares/{shareID}/revoke?role=
// Revocation is for the person's owner; a revoked grant is treated as
// absent everywhere.
func RevokeShare(w http.ResponseWriter, r *http.Request) {
	var conn models.PersonSharingConnection
	if err := db.Conn().First(&conn, pathID(r, "shareID")).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	claims := sessionClaims(r)
	var person models.Person
	if err := db.Conn().First(&person, conn.PersonID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	var ownerRole models.Role
	if err := db.Conn().First(&ownerRole, person.RoleID).Error; err != nil || ownerRole.UserID != claims.UserID {
		writeErr(w, http.StatusForbidden, "permission_denied")
		return
	}
	conn.Status = models.GrantRevoked
	if err := db.Conn().Save(&conn).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, conn)
}

// GET /api/roles/{roleID}/shares
func ListShares(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	var conns []models.PersonSharingConnection
	_ = db.Conn().
		Where("role_id = ? AND status = ?", role.ID, models.GrantActive).
		Find(&conns).Error
	writeJSON(w, http.StatusOK, conns)
}
