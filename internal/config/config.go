package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yufin/yufin/internal/store"
)

// Config holds runtime settings for the CLI, TUI and HTTP server.
type Config struct {
	// Store selects the KV backend: "sqlite", "postgres" or "memory".
	Store string `env:"YUFIN_STORE" envDefault:"sqlite"`

	// DBPath is the SQLite file. Empty means store.DefaultDBPath().
	DBPath string `env:"YUFIN_DB"`

	PostgresDSN string `env:"YUFIN_POSTGRES_DSN"`

	// Addr is the listen address for `yufin serve`.
	Addr string `env:"YUFIN_ADDR" envDefault:":8080"`

	// User is the learner ID the CLI and TUI act on.
	User string `env:"YUFIN_USER"`

	DefaultGrade string `env:"YUFIN_DEFAULT_GRADE" envDefault:"6º Ano"`

	Snapshot SnapshotConfig
}

// SnapshotConfig controls periodic ledger snapshots.
type SnapshotConfig struct {
	// Interval between snapshots while serving. Zero disables them.
	Interval time.Duration `env:"YUFIN_SNAPSHOT_INTERVAL" envDefault:"1h"`
	Keep     int           `env:"YUFIN_SNAPSHOT_KEEP" envDefault:"24"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		Store:        store.DriverSQLite,
		Addr:         ":8080",
		DefaultGrade: "6º Ano",
		Snapshot: SnapshotConfig{
			Interval: time.Hour,
			Keep:     24,
		},
	}
}

// Load reads an optional .env file from the working directory and parses
// YUFIN_* variables on top of the defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses YUFIN_* variables without touching .env files.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend is fully configured.
func (c Config) Validate() error {
	switch c.Store {
	case store.DriverSQLite, store.DriverMemory:
	case store.DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("YUFIN_POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownDriver, c.Store)
	}
	if c.Snapshot.Keep < 1 {
		return fmt.Errorf("YUFIN_SNAPSHOT_KEEP must be at least 1, got %d", c.Snapshot.Keep)
	}
	if c.Snapshot.Interval < 0 {
		return fmt.Errorf("YUFIN_SNAPSHOT_INTERVAL must not be negative")
	}
	return nil
}

// DSN returns the connection target for the selected backend.
func (c Config) DSN() (string, error) {
	switch c.Store {
	case store.DriverPostgres:
		return c.PostgresDSN, nil
	case store.DriverMemory:
		return "", nil
	}
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return store.DefaultDBPath()
}
