// Package app wires configuration, storage, providers and services for the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/finapps/internal/clients/alphavantage"
	"github.com/bobmcallan/finapps/internal/clients/eodhd"
	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/services/digest"
	"github.com/bobmcallan/finapps/internal/services/market"
	"github.com/bobmcallan/finapps/internal/storage"
)

// App holds the initialized storage, provider and services for one invocation.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       *storage.Manager
	Provider      interfaces.Provider
	MarketService interfaces.MarketService
	DigestService interfaces.DigestService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: explicit path, FINAPPS_CONFIG,
// finapps.toml beside the binary, then config/finapps.toml.
func ResolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("FINAPPS_CONFIG"); p != "" {
		return p
	}
	p := filepath.Join(getBinaryDir(), "finapps.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return "config/finapps.toml"
}

// NewApp loads configuration and connects storage. configPath may be empty.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewAppWithConfig(ctx, config, common.NewLoggerFromConfig(config.Logging), startupStart)
}

// NewAppWithConfig wires an App from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger, startupStart time.Time) (*App, error) {
	storageManager, err := storage.NewManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider, err := NewProvider(config, logger)
	if err != nil {
		storageManager.Close()
		return nil, err
	}

	a := &App{
		Config:   config,
		Logger:   logger,
		Storage:  storageManager,
		Provider: provider,
		MarketService: market.NewService(storageManager.BarStore(), provider, logger,
			market.WithLoadLog(storageManager.LoadLog())),
		DigestService: digest.NewService(storageManager.BarStore(), logger),
		StartupTime:   startupStart,
	}

	logger.Debug().Str("provider", provider.Name()).Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// NewProvider builds the configured market-data client.
func NewProvider(config *common.Config, logger *common.Logger) (interfaces.Provider, error) {
	switch config.Provider {
	case "", "eodhd":
		c := config.Clients.EODHD
		if c.APIKey == "" {
			logger.Warn().Msg("EODHD API key not configured - load will fail")
		}
		opts := []eodhd.ClientOption{
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(c.RateLimit),
			eodhd.WithTimeout(c.GetTimeout()),
			eodhd.WithDefaultExchange(c.DefaultExchange),
		}
		if c.BaseURL != "" {
			opts = append(opts, eodhd.WithBaseURL(c.BaseURL))
		}
		return eodhd.NewClient(c.APIKey, opts...), nil
	case "alphavantage":
		c := config.Clients.AlphaVantage
		if c.APIKey == "" {
			logger.Warn().Msg("Alpha Vantage API key not configured - load will fail")
		}
		opts := []alphavantage.ClientOption{
			alphavantage.WithLogger(logger),
			alphavantage.WithRateLimit(c.RateLimit),
			alphavantage.WithTimeout(c.GetTimeout()),
		}
		if c.BaseURL != "" {
			opts = append(opts, alphavantage.WithBaseURL(c.BaseURL))
		}
		return alphavantage.NewClient(c.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
