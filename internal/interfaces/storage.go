package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/finapps/internal/models"
)

// StorageManager coordinates the database pool and the stores built on it
type StorageManager interface {
	BarStore() BarStore
	LoadLog() LoadLog

	// Migrate applies pending schema migrations
	Migrate(ctx context.Context) error

	// DataPath returns the base directory for exports and charts
	DataPath() string

	// WriteRaw writes arbitrary binary data to a subdirectory atomically.
	WriteRaw(subdir, key string, data []byte) error

	Close() error
}

// BarStore persists daily bars keyed by (symbol, date)
type BarStore interface {
	// UpsertBatch writes all bars in one transaction, replacing existing rows
	// with the same key. Returns the number of rows written.
	UpsertBatch(ctx context.Context, symbol string, bars []models.Bar) (int, error)

	// MinDate and MaxDate return common.ErrNoData when the symbol has no bars
	MinDate(ctx context.Context, symbol string) (time.Time, error)
	MaxDate(ctx context.Context, symbol string) (time.Time, error)

	// BarOnOrBefore returns the bar with the greatest date <= date,
	// or common.ErrNoData.
	BarOnOrBefore(ctx context.Context, symbol string, date time.Time) (*models.Bar, error)

	// Range returns bars with from <= date <= to, ascending. Zero bounds are open.
	Range(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)

	// Span returns first/last dates and row count, or common.ErrNoData.
	Span(ctx context.Context, symbol string) (*models.BarSpan, error)
}

// LoadLog keeps a history of ingestion runs
type LoadLog interface {
	Record(ctx context.Context, r *models.LoadResult) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.LoadRecord, error)
}
