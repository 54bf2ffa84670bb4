package config

import (
	"github.com/ai-scholar/scholar-admin/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Store     Store
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string // domain name for the webserver
	Port         int    // listening port for the webserver
	ShutDownTime int    // wait time for shutdown
	URL          string // base url for the webserver
}

// Store selects the blob store backend for the settings repository.
type Store struct {
	// Backend is "db" (blobs table in the main database) or "file"
	// (flock-protected JSON file).
	Backend string

	// FilePath is the JSON file location for the file backend.
	FilePath string
}
