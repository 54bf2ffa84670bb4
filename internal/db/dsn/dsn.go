// Package dsn builds database connection strings from the service
// configuration.
package dsn

import (
	"fmt"

	"github.com/ai-scholar/scholar-admin/internal/config"
)

// Create builds the DSN for the configured database engine. For sqlite
// the DSN is the database file path.
func Create(cfg *config.Config) string {
	switch cfg.DB.Engine {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Name,
			cfg.DB.Extras,
		)
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d %s",
			cfg.DB.Host,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Name,
			cfg.DB.Port,
			cfg.DB.Extras,
		)
	default:
		return cfg.DB.Path
	}
}
