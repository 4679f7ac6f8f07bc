package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/models"
)

func QR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.NotFound(w, r)
		return
	}
	// ensure code exists
	var person models.Person
	if err := db.Conn().Where("checkin_code = ?", code).First(&person).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	// Encode a URL so scanning opens the kiosk directly
	url := "http://" + r.Host + "/checkin?code=" + code

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
