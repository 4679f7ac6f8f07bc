package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/routinely/routinely/internal/db"
)

func initTestDB(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	orig, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(orig) }) //nolint:errcheck
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if err := db.Init(); err != nil {
		t.Fatalf("db init: %v", err)
	}
}

func TestRouterHealthz(t *testing.T) {
	initTestDB(t)
	r := Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterAPIRequiresAuth(t *testing.T) {
	initTestDB(t)
	r := Router()
	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
