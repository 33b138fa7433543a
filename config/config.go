package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// Datenbank: postgres im Betrieb, sqlite für lokale Entwicklung
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"pubhub.db"`

	HTTPPort           string `envconfig:"HTTP_PORT" default:"4242"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	LogDevelopment     bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`

	// Seed für den Namensgenerator neuer Autoren, 0 = zufällig
	NameSeed uint64 `envconfig:"NAME_SEED" default:"0"`

	// Snapshot-Export der Publikationsliste nach S3
	SnapshotEnabled bool   `envconfig:"SNAPSHOT_ENABLED" default:"false"`
	SnapshotCron    string `envconfig:"SNAPSHOT_CRON" default:"0 3 * * *"`
	SnapshotPrefix  string `envconfig:"SNAPSHOT_PREFIX" default:"snapshots"`
	SnapshotKeep    int    `envconfig:"SNAPSHOT_KEEP" default:"7"`

	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// AllowedOrigins zerlegt CORS_ALLOWED_ORIGINS in eine Liste.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate prüft die treiberabhängigen Pflichtfelder.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		var missing []string
		if c.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required settings for postgres: %s", strings.Join(missing, ", "))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.SnapshotEnabled {
		if c.S3URL == "" || c.S3Bucket == "" || c.S3Key == "" || c.S3Secret == "" {
			return fmt.Errorf("snapshot export requires S3_URL, S3_BUCKET, S3_KEY and S3_SECRET")
		}
		if c.SnapshotKeep < 1 {
			return fmt.Errorf("SNAPSHOT_KEEP must be at least 1")
		}
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, c.Validate()
}
