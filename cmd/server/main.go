package main

import (
	"log"
	"net/http"
	"os"

	"card-clash/internal/config"
	"card-clash/internal/db"
	"card-clash/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Printf("running without database: %v", err)
		conn = nil
	} else if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, cfg)
	if err := srv.RestoreActiveRooms(); err != nil {
		log.Printf("failed to restore rooms: %v", err)
	}
	log.Printf("card-clash server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
