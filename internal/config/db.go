package config

// DB holds the database configuration settings.
type DB struct {
	// Engine is sqlite, mysql or postgres.
	Engine string

	// Path is the database file location for the sqlite engine.
	Path string

	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}
