package main

import (
	"log"
	"net/http"
	"os"

	"github.com/routinely/routinely/internal/db"
	"github.com/routinely/routinely/internal/services"
	"github.com/routinely/routinely/internal/web"
)

func main() {
	// Init DB (creates routinely.db in working dir)
	if err := db.Init(); err != nil {
		log.Fatalf("db init: %v", err)
	}
	services.StartOverrideSweeper(db.Conn())

	r := web.Router()

	addr := getEnv("ADDR", ":8080")
	log.Printf("Routinely listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
