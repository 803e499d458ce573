// Package common provides shared utilities for finapps
package common

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for finapps
type Config struct {
	Environment string         `toml:"environment"`
	Provider    string         `toml:"provider"`  // "eodhd" (default) or "alphavantage"
	DataPath    string         `toml:"data_path"` // exports and charts
	Database    DatabaseConfig `toml:"database"`
	Clients     ClientsConfig  `toml:"clients"`
	Logging     LoggingConfig  `toml:"logging"`
}

// DatabaseConfig holds PostgreSQL connection and pool configuration
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"sslmode"`
	ApplicationName string `toml:"application_name"`
	MinConns        int    `toml:"min_conns"`
	MaxConns        int    `toml:"max_conns"`
	AcquireTimeout  string `toml:"acquire_timeout"` // how long a caller waits for a free connection
	ConnectTimeout  string `toml:"connect_timeout"`
	URL             string `toml:"url"` // when set, overrides the discrete fields above
}

// GetAcquireTimeout parses and returns the pool acquisition bound
func (c *DatabaseConfig) GetAcquireTimeout() time.Duration {
	d, err := time.ParseDuration(c.AcquireTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// GetConnectTimeout parses and returns the dial timeout
func (c *DatabaseConfig) GetConnectTimeout() time.Duration {
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// ConnString builds a libpq style URL from the discrete fields unless URL is set.
func (c *DatabaseConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD        EODHDConfig        `toml:"eodhd"`
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	RateLimit       int    `toml:"rate_limit"`
	Timeout         string `toml:"timeout"`
	DefaultExchange string `toml:"default_exchange"` // appended to symbols without a suffix
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per minute on the free tier
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "console" or "json"
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Provider:    "eodhd",
		DataPath:    "data",
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "finapps",
			User:            "finapps",
			SSLMode:         "disable",
			ApplicationName: "finapps",
			MinConns:        1,
			MaxConns:        4,
			AcquireTimeout:  "5s",
			ConnectTimeout:  "10s",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:         "https://eodhd.com/api",
				RateLimit:       10,
				Timeout:         "30s",
				DefaultExchange: "US",
			},
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINAPPS_ENV"); env != "" {
		config.Environment = env
	}

	if p := os.Getenv("FINAPPS_PROVIDER"); p != "" {
		config.Provider = strings.ToLower(p)
	}

	if path := os.Getenv("FINAPPS_DATA_PATH"); path != "" {
		config.DataPath = path
	}

	if level := os.Getenv("FINAPPS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Database overrides
	if v := os.Getenv("FINAPPS_DB_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("FINAPPS_DB_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("FINAPPS_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Database.Port = p
		}
	}
	if v := os.Getenv("FINAPPS_DB_NAME"); v != "" {
		config.Database.Name = v
	}
	if v := os.Getenv("FINAPPS_DB_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("FINAPPS_DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("FINAPPS_DB_MIN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Database.MinConns = n
		}
	}
	if v := os.Getenv("FINAPPS_DB_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Database.MaxConns = n
		}
	}

	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		config.Clients.EODHD.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		config.Clients.AlphaVantage.APIKey = v
	}
}

// Validate reports configuration that cannot produce a working pool or provider.
func (c *Config) Validate() error {
	db := c.Database
	if db.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be positive, got %d", db.MaxConns)
	}
	if db.MinConns < 0 || db.MinConns > db.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and max_conns (%d), got %d", db.MaxConns, db.MinConns)
	}
	switch c.Provider {
	case "eodhd", "alphavantage":
	default:
		return fmt.Errorf("unknown provider %q (want eodhd or alphavantage)", c.Provider)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
