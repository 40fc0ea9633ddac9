package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	AppEnv           string `envconfig:"APP_ENV" default:"prod"`
	Port             string `envconfig:"PORT" default:"8080"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	DBURL            string `envconfig:"DB_URL"`
	RedisAddr        string `envconfig:"REDIS_ADDR"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`
	SettingsCacheTTL int    `envconfig:"SETTINGS_CACHE_TTL_SECS" default:"30"`
	RatingsDefault   string `envconfig:"LOCALRATING_ENABLE_DEFAULT" default:"advanced"`

	CatalogURL         string `envconfig:"CATALOG_URL"`
	CatalogAPIKey      string `envconfig:"CATALOG_API_KEY"`
	CatalogTimeoutSecs int    `envconfig:"CATALOG_TIMEOUT_SECS" default:"5"`

	ReadTimeoutSecs  int `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSecs int `envconfig:"SERVER_WRITE_TIMEOUT" default:"15"`
	IdleTimeoutSecs  int `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`

	DBMaxConns        int `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns        int `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxIdleSecs     int `envconfig:"DB_MAX_CONN_IDLE_SECS" default:"300"`
	DBMaxLifeSecs     int `envconfig:"DB_MAX_CONN_LIFETIME_SECS" default:"3600"`
	DBConnTimeoutSecs int `envconfig:"DB_CONN_TIMEOUT_SECS" default:"10"`
	DBStatementCache  int `envconfig:"DB_STATEMENT_CACHE_CAPACITY" default:"256"`
}

var ratingModes = map[string]struct{}{"off": {}, "basic": {}, "advanced": {}}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.CatalogURL == "" {
		return Config{}, fmt.Errorf("CATALOG_URL is required")
	}
	if cfg.CatalogTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("CATALOG_TIMEOUT_SECS must be positive")
	}
	if _, ok := ratingModes[cfg.RatingsDefault]; !ok {
		return Config{}, fmt.Errorf("LOCALRATING_ENABLE_DEFAULT must be one of off, basic, advanced")
	}
	if cfg.SettingsCacheTTL < 0 {
		return Config{}, fmt.Errorf("SETTINGS_CACHE_TTL_SECS must be non-negative")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}
