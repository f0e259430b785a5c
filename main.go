package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"salebook/m/internal/api"
	"salebook/m/internal/config"
	"salebook/m/internal/database"
	"salebook/m/internal/migrations"
	"salebook/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	var backend store.Backend
	switch cfg.StoreBackend {
	case "sqlite":
		db := database.Connect(cfg.DatabaseDSN)
		defer db.Close()
		migrations.Run(db)
		backend = store.NewSQLiteBackend(db)
	default:
		backend = store.NewFileBackend(cfg.DataPath)
	}

	handler := api.New(store.New(backend))

	log.Printf("Salebook ledger server starting on :%s (%s store)", cfg.HTTPPort, cfg.StoreBackend)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
