// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PathEnv overrides the config file location.
const PathEnv = "ROOMADMIN_CONFIG_PATH"

const DefaultPath = "configs/config.yaml"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverFailover = "failover"
	DriverMemory   = "memory"
)

type Config struct {
	HTTP struct {
		Addr            string   `yaml:"addr"`
		RateLimit       float64  `yaml:"rate_limit"`
		RateBurst       int      `yaml:"rate_burst"`
		CORSOrigins     []string `yaml:"cors_origins"`
		ShutdownSeconds int      `yaml:"shutdown_seconds"`
	} `yaml:"http"`

	Storage struct {
		Driver string `yaml:"driver"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Redis struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Listing struct {
		DefaultPageSize int `yaml:"default_page_size"`
	} `yaml:"listing"`

	Telegram struct {
		Enabled  bool    `yaml:"enabled"`
		BotToken string  `yaml:"bot_token"`
		Debug    bool    `yaml:"debug"`
		ChatIDs  []int64 `yaml:"chat_ids"`
		// Digest sends tomorrow's check-ins and check-outs every day at DigestHour.
		DigestEnabled bool   `yaml:"digest_enabled"`
		DigestHour    int    `yaml:"digest_hour"`
		Timezone      string `yaml:"timezone"`
	} `yaml:"telegram"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
	} `yaml:"sheets"`

	Export struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		ExportOnStart bool   `yaml:"export_on_start"`
	} `yaml:"export"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// Load reads path, or $ROOMADMIN_CONFIG_PATH, or the default location.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver() {
	case DriverSQLite, DriverRedis, DriverFailover, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when telegram is enabled")
	}
	if _, err := c.DigestLocation(); err != nil {
		return fmt.Errorf("telegram.timezone: %w", err)
	}
	if c.Sheets.Enabled && (c.Sheets.CredentialsFile == "" || c.Sheets.SpreadsheetID == "") {
		return errors.New("sheets.credentials_file and sheets.spreadsheet_id are required when sheets is enabled")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	if c.HTTP.Addr == "" {
		return ":8080"
	}
	return c.HTTP.Addr
}

// RateLimit is requests per second per client; zero disables limiting.
func (c *Config) RateLimit() (float64, int) {
	if c.HTTP.RateLimit <= 0 {
		return 0, 0
	}
	burst := c.HTTP.RateBurst
	if burst <= 0 {
		burst = int(c.HTTP.RateLimit) + 1
	}
	return c.HTTP.RateLimit, burst
}

func (c *Config) ShutdownTimeout() time.Duration {
	if c.HTTP.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTP.ShutdownSeconds) * time.Second
}

func (c *Config) StorageDriver() string {
	if c.Storage.Driver == "" {
		return DriverSQLite
	}
	return strings.ToLower(c.Storage.Driver)
}

func (c *Config) SQLitePath() string {
	if c.Storage.SQLite.Path == "" {
		return "data/roomadmin.db"
	}
	return c.Storage.SQLite.Path
}

func (c *Config) RedisAddress() string {
	if c.Storage.Redis.Address == "" {
		return "localhost:6379"
	}
	return c.Storage.Redis.Address
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) BackupPath() string {
	if c.Backup.Path == "" {
		return "data/backups"
	}
	return c.Backup.Path
}

func (c *Config) HealthCheckPort() int {
	if c.Monitoring.HealthCheckPort <= 0 {
		return 8081
	}
	return c.Monitoring.HealthCheckPort
}

func (c *Config) PrometheusPort() int {
	if c.Monitoring.PrometheusPort <= 0 {
		return 9090
	}
	return c.Monitoring.PrometheusPort
}

// DefaultPageSize falls back to 5 rows, the smallest pager option.
func (c *Config) DefaultPageSize() int {
	if c.Listing.DefaultPageSize <= 0 {
		return 5
	}
	return c.Listing.DefaultPageSize
}

// DigestLocation resolves telegram.timezone, defaulting to the local zone.
func (c *Config) DigestLocation() (*time.Location, error) {
	if c.Telegram.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Telegram.Timezone)
}

func (c *Config) ExportDir() string {
	if c.Export.Dir == "" {
		return "data/exports"
	}
	return c.Export.Dir
}
