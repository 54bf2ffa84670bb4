// Package daemon wires the configured database, blob store and web
// service together.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/db/dsn"
	"github.com/ai-scholar/scholar-admin/internal/db/models"
	"github.com/ai-scholar/scholar-admin/internal/store"
	"github.com/ai-scholar/scholar-admin/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.Blob{},
		&models.Workflow{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	blobStore, err := openStore(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open blob store")
	}

	seed(blobStore)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, blobStore),
	}
}

// openDialector selects the gorm driver for the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.Engine {
	case "mysql":
		return gormmysql.Open(dsn.Create(cfg))
	case "postgres":
		return gormpostgres.Open(dsn.Create(cfg))
	default:
		return sqlite.Open(dsn.Create(cfg))
	}
}

// openStore selects the blob store backend.
func openStore(cfg *config.Config, db *gorm.DB) (store.Store, error) {
	if cfg.Store.Backend == "file" {
		return store.NewFileStore(cfg.Store.FilePath)
	}

	return store.NewDBStore(db)
}
