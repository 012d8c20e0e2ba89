// Package config arma la configuración del servicio: defaults, archivo YAML
// opcional y por último variables de entorno (las mismas que ya usábamos:
// PORT, DB_DSN, LOG_LEVEL, LOG_FORMAT, APP_NAME).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pet-shelter/internal/domain/pets"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr    string `yaml:"addr"`
	AppName string `yaml:"app_name"`
	Log     Log    `yaml:"log"`
	DB      DB     `yaml:"db"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DB struct {
	// Driver: sqlite (default), postgres o memory (sqlite en memoria).
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

func Default() Config {
	return Config{
		Addr:    ":8080",
		AppName: "pet-shelter",
		Log:     Log{Level: "info", Format: "text"},
		DB: DB{
			Driver: DriverSQLite,
			Path:   filepath.Join("data", pets.DatabaseName),
		},
	}
}

// Load aplica en orden: Default, el YAML de path (si path != "") y env.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		c.Addr = ":" + v
	}
	if v := strings.TrimSpace(getenv("APP_NAME")); v != "" {
		c.AppName = v
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv("LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(getenv("DB_PATH")); v != "" {
		c.DB.Path = v
	}
	// DB_DSN solo: se asume Postgres.
	if v := strings.TrimSpace(getenv("DB_DSN")); v != "" {
		c.DB.DSN = v
		c.DB.Driver = DriverPostgres
	}
	if v := strings.TrimSpace(getenv("DB_DRIVER")); v != "" {
		c.DB.Driver = strings.ToLower(v)
	}
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.DB.Path) == "" {
			return fmt.Errorf("%w: db.path is required for sqlite", ErrInvalidConfig)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DB.DSN) == "" {
			return fmt.Errorf("%w: db.dsn is required for postgres", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown db.driver %q", ErrInvalidConfig, c.DB.Driver)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	}
	return nil
}
