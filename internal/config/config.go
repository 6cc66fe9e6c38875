package config

import (
	"errors"
	"fmt"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrMissingSecret = errors.New("jwt secret is required")

type Config struct {
	Port        string   `default:"8080"`
	CORSOrigins []string `split_words:"true" default:"*"`
	LogLevel    string   `split_words:"true" default:"info"`
	LogFormat   string   `split_words:"true" default:"text"`
	JWTSecret   string   `split_words:"true"`
	DB          DatabaseConfig
}

// DatabaseConfig is read from VOTES_DB_*.
type DatabaseConfig struct {
	Driver   string `default:"postgres"`
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string
	Password string
	Name     string
	SSLMode  string `split_words:"true" default:"disable"`
	// Path is the sqlite file, e.g. votes.db or file::memory:?cache=shared.
	Path string `default:"votes.db"`
}

// Load reads VOTES_* variables, after any .env file has been loaded.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("votes", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid database driver: %q (must be %q or %q)", c.DB.Driver, DriverPostgres, DriverSQLite)
	}
	return nil
}

// DSN returns the connection string for the postgres driver.
func (d DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"password=" + d.Password,
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
		"TimeZone=UTC",
	}
	return strings.Join(parts, " ")
}
