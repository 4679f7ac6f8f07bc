package handlers

import (
	"net/http"
	"strings"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

// POST /api/roles/{roleID}/persons
func CreatePerson(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	var in struct {
		Name    string `json:"name"`
		GroupID *uint  `json:"group_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}

	person := models.Person{
		RoleID:  role.ID,
		GroupID: in.GroupID,
		Name:    name,
		Status:  models.StatusActive,
	}
	// Retry on the (unlikely) check-in code collision; the unique index
	// is the arbiter.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		person.CheckinCode = svc.GenerateCheckinCode()
		if err = db.Conn().Create(&person).Error; err == nil {
			break
		}
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

// GET /api/roles/{roleID}/persons
// Owned + shared, in one response.
func ListPersons(w http.ResponseWriter, r *http.Request) {
	role, ok := ownRole(w, r)
	if !ok {
		return
	}
	list, err := svc.AccessiblePersons(db.Conn(), role.ID, sessionClaims(r).UserID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /api/persons/{personID}/archive
// Soft lifecycle: archived persons drop out of listings but keep history.
func ArchivePerson(w http.ResponseWriter, r *http.Request) {
	personID := pathID(r, "personID")
	claims := sessionClaims(r)

	roleID := requestingRoleID(r)
	if !svc.HasAccessToPerson(db.Conn(), claims.UserID, roleID, personID, models.ShareManage) {
		writeErr(w, http.StatusForbidden, "forbidden")
		return
	}

	var person models.Person
	if err := db.Conn().First(&person, personID).Error; err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	person.Status = models.StatusArchived
	if err := db.Conn().Save(&person).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// requestingRoleID reads the ?role= query param: the role the caller is
// acting through for person-level access checks.
func requestingRoleID(r *http.Request) uint {
	return queryID(r, "role")
}
