// Package storage provides the top-level StorageManager that owns the
// database pool and the file area for derived outputs.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/storage/marketfs"
	"github.com/bobmcallan/finapps/internal/storage/postgres"
)

// Manager implements interfaces.StorageManager over PostgreSQL and marketfs.
type Manager struct {
	pool    *postgres.Pool
	bars    *postgres.BarStore
	loadLog *postgres.LoadLog
	files   *marketfs.Store
	logger  *common.Logger
}

// NewManager connects the pool and opens the file area.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	pool, err := postgres.NewPool(ctx, logger, config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	files, err := marketfs.NewStore(logger, config.DataPath)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}

	logger.Info().
		Str("database", config.Database.Name).
		Str("data_path", config.DataPath).
		Msg("Storage manager initialized")

	return &Manager{
		pool:    pool,
		bars:    postgres.NewBarStore(logger, pool),
		loadLog: postgres.NewLoadLog(logger, pool),
		files:   files,
		logger:  logger,
	}, nil
}

func (m *Manager) BarStore() interfaces.BarStore {
	return m.bars
}

func (m *Manager) LoadLog() interfaces.LoadLog {
	return m.loadLog
}

// Files exposes the file area for exports and charts.
func (m *Manager) Files() *marketfs.Store {
	return m.files
}

func (m *Manager) Migrate(ctx context.Context) error {
	return m.pool.Migrate(ctx)
}

func (m *Manager) DataPath() string {
	return m.files.DataPath()
}

func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	return m.files.WriteRaw(subdir, key, data)
}

func (m *Manager) Close() error {
	m.pool.Close()
	return m.files.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
