package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Import   ImportConfig
	Linkage  LinkageConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int

	// AutoMigrate applies the bootstrap schema on startup.
	AutoMigrate bool
}

// RedisConfig holds the job tracker connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// ImportConfig holds batch import tuning.
type ImportConfig struct {
	StatusTTL         time.Duration
	ErrorLimit        int
	ProgressEvery     int
	MaxConcurrentJobs int
	MaxUploadMB       int
	MaxBidPercentage  float64
	StallAfter        time.Duration
	RatePerMinute     int
	RateBurst         int
}

// MaxUploadBytes returns the upload limit in bytes.
func (c ImportConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// LinkageConfig holds the periodic linkage sweep schedule.
type LinkageConfig struct {
	// Cron is a robfig/cron spec. "off" or empty disables the sweep.
	Cron string
}

// Enabled reports whether the periodic sweep should run.
func (c LinkageConfig) Enabled() bool {
	spec := strings.TrimSpace(c.Cron)
	return spec != "" && !strings.EqualFold(spec, "off")
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// defaults apply when the variable is unset or empty.
var defaults = map[string]interface{}{
	"PORT":                       "8080",
	"ENV":                        "development",
	"DB_HOST":                    "localhost",
	"DB_PORT":                    "5432",
	"DB_NAME":                    "taxsale",
	"DB_USER":                    "postgres",
	"DB_POOL_MIN":                2,
	"DB_POOL_MAX":                10,
	"DB_AUTO_MIGRATE":            true,
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_DB":                   0,
	"REDIS_POOL_SIZE":            10,
	"IMPORT_STATUS_TTL":          "1h",
	"IMPORT_ERROR_LIMIT":         100,
	"IMPORT_PROGRESS_EVERY":      25,
	"IMPORT_MAX_CONCURRENT_JOBS": 4,
	"IMPORT_MAX_UPLOAD_MB":       32,
	"IMPORT_MAX_BID_PERCENTAGE":  0.70,
	"IMPORT_STALL_AFTER":         "10m",
	"IMPORT_RATE_PER_MINUTE":     30,
	"IMPORT_RATE_BURST":          5,
	"LINKAGE_CRON":               "@every 15m",
	"CORS_ORIGINS":               "http://localhost:3000,http://localhost:3001",
}

// Load reads configuration from environment variables. DB_PASSWORD is the
// only setting without a default.
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutStores is Load for commands that never connect to Postgres or
// Redis, such as a dry-run import. Database and Redis settings are read but
// not validated.
func LoadWithoutStores() (*Config, error) {
	cfg := read()
	if err := errors.Join(cfg.validate(false)...); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func read() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			PoolMin:     v.GetInt("DB_POOL_MIN"),
			PoolMax:     v.GetInt("DB_POOL_MAX"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			PoolSize: v.GetInt("REDIS_POOL_SIZE"),
		},
		Import: ImportConfig{
			StatusTTL:         v.GetDuration("IMPORT_STATUS_TTL"),
			ErrorLimit:        v.GetInt("IMPORT_ERROR_LIMIT"),
			ProgressEvery:     v.GetInt("IMPORT_PROGRESS_EVERY"),
			MaxConcurrentJobs: v.GetInt("IMPORT_MAX_CONCURRENT_JOBS"),
			MaxUploadMB:       v.GetInt("IMPORT_MAX_UPLOAD_MB"),
			MaxBidPercentage:  v.GetFloat64("IMPORT_MAX_BID_PERCENTAGE"),
			StallAfter:        v.GetDuration("IMPORT_STALL_AFTER"),
			RatePerMinute:     v.GetInt("IMPORT_RATE_PER_MINUTE"),
			RateBurst:         v.GetInt("IMPORT_RATE_BURST"),
		},
		Linkage: LinkageConfig{Cron: v.GetString("LINKAGE_CRON")},
		CORS:    CORSConfig{Origins: parseOrigins(v.GetString("CORS_ORIGINS"))},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	return errors.Join(c.validate(true)...)
}

func (c *Config) validate(stores bool) []error {
	var problems []error
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, errors.New(msg))
		}
	}

	check(c.Server.Port != "", "PORT is required")

	if stores {
		db := c.Database
		check(db.Host != "", "DB_HOST is required")
		check(db.Port != "", "DB_PORT is required")
		check(db.Name != "", "DB_NAME is required")
		check(db.User != "", "DB_USER is required")
		check(db.Password != "", "DB_PASSWORD is required")
		check(db.PoolMin >= 0, "DB_POOL_MIN must be non-negative")
		check(db.PoolMax >= 1, "DB_POOL_MAX must be at least 1")
		check(db.PoolMin <= db.PoolMax, "DB_POOL_MIN must be less than or equal to DB_POOL_MAX")

		check(c.Redis.Addr != "", "REDIS_ADDR is required")
	}

	imp := c.Import
	check(imp.StatusTTL > 0, "IMPORT_STATUS_TTL must be positive")
	check(imp.ErrorLimit >= 1, "IMPORT_ERROR_LIMIT must be at least 1")
	check(imp.ProgressEvery >= 1, "IMPORT_PROGRESS_EVERY must be at least 1")
	check(imp.MaxConcurrentJobs >= 1, "IMPORT_MAX_CONCURRENT_JOBS must be at least 1")
	check(imp.MaxUploadMB >= 1, "IMPORT_MAX_UPLOAD_MB must be at least 1")
	check(imp.MaxBidPercentage > 0 && imp.MaxBidPercentage <= 1, "IMPORT_MAX_BID_PERCENTAGE must be in (0, 1]")
	check(imp.StallAfter >= 0, "IMPORT_STALL_AFTER must not be negative")
	check(imp.RatePerMinute >= 1, "IMPORT_RATE_PER_MINUTE must be at least 1")
	check(imp.RateBurst >= 1, "IMPORT_RATE_BURST must be at least 1")

	check(len(c.CORS.Origins) > 0, "CORS_ORIGINS is required")

	return problems
}

// parseOrigins splits a comma-separated origin list, dropping blanks.
func parseOrigins(origins string) []string {
	result := []string{}
	for _, part := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
