package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/routinely/routinely/internal/auth"
	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
	svc "github.com/routinely/routinely/internal/services"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// POST /signup
func Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !readJSON(w, r, &in) {
		return
	}
	email, ok := svc.NormEmail(in.Email)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid_email")
		return
	}
	if len(in.Password) < 8 {
		writeErr(w, http.StatusBadRequest, "missing")
		return
	}

	var existing models.User
	if err := db.Conn().Where("email = ?", email).First(&existing).Error; err == nil {
		writeErr(w, http.StatusConflict, "email_in_use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
	}
	if err := db.Conn().Create(&user).Error; err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	issueToken(w, user, http.StatusCreated)
}

// POST /login
func Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !readJSON(w, r, &in) {
		return
	}
	email, _ := svc.NormEmail(in.Email)

	var user models.User
	if err := db.Conn().Where("email = ?", email).First(&user).Error; err != nil {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	issueToken(w, user, http.StatusOK)
}

func issueToken(w http.ResponseWriter, user models.User, status int) {
	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	var resp tokenResponse
	resp.Token = token
	resp.User.ID = user.ID
	resp.User.Email = user.Email
	resp.User.Name = user.Name
	writeJSON(w, status, resp)
}

// GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
