package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort     string
	StoreBackend string
	DataPath     string
	DatabaseDSN  string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	backend := os.Getenv("STORE_BACKEND")
	switch backend {
	case "", "file":
		backend = "file"
	case "sqlite":
	default:
		log.Printf("unknown STORE_BACKEND value %q, defaulting to file", backend)
		backend = "file"
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "data/sales.json"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "data/salebook.db"
	}

	return Config{
		HTTPPort:     port,
		StoreBackend: backend,
		DataPath:     dataPath,
		DatabaseDSN:  dsn,
	}
}
