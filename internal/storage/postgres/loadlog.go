package postgres

import (
	"context"
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadLog records ingestion runs in mkt_load_log.
type LoadLog struct {
	pool   *Pool
	logger *common.Logger
}

// NewLoadLog creates a LoadLog on pool.
func NewLoadLog(logger *common.Logger, pool *Pool) *LoadLog {
	return &LoadLog{pool: pool, logger: logger}
}

// Record stores one run.
func (l *LoadLog) Record(ctx context.Context, r *models.LoadResult) error {
	err := l.pool.Acquire(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx,
			`INSERT INTO mkt_load_log (run_id, mkt_symbol, mode, range_desc, fetched, written)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.RunID, r.Symbol, string(r.Mode), r.Range.String(), r.Fetched, r.Written)
		return err
	})
	if err != nil {
		return wrapErr("record_load", r.Symbol, err)
	}
	return nil
}

// Recent returns the newest runs for symbol, newest first.
func (l *LoadLog) Recent(ctx context.Context, symbol string, limit int) ([]models.LoadRecord, error) {
	symbol = models.NormalizeSymbol(symbol)
	if limit <= 0 {
		limit = 10
	}
	var out []models.LoadRecord
	err := l.pool.Acquire(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT run_id::text, mkt_symbol, mode, range_desc, fetched, written, loaded_at
			 FROM mkt_load_log WHERE mkt_symbol = $1
			 ORDER BY loaded_at DESC LIMIT $2`, symbol, limit)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LoadRecord, error) {
			var rec models.LoadRecord
			var mode string
			var at time.Time
			err := row.Scan(&rec.RunID, &rec.Symbol, &mode, &rec.Range, &rec.Fetched, &rec.Written, &at)
			rec.Mode = models.LoadMode(mode)
			rec.LoadedAt = at.UTC()
			return rec, err
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("recent_loads", symbol, err)
	}
	return out, nil
}

var _ interfaces.LoadLog = (*LoadLog)(nil)
