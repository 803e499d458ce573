package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertBarSQL = `
INSERT INTO mkt_data (mkt_symbol, mkt_date, mkt_open, mkt_high, mkt_low, mkt_close, mkt_volume, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (mkt_symbol, mkt_date) DO UPDATE SET
    mkt_open   = EXCLUDED.mkt_open,
    mkt_high   = EXCLUDED.mkt_high,
    mkt_low    = EXCLUDED.mkt_low,
    mkt_close  = EXCLUDED.mkt_close,
    mkt_volume = EXCLUDED.mkt_volume,
    updated_at = now()`

	barColumns = `mkt_symbol, mkt_date, mkt_open, mkt_high, mkt_low, mkt_close, mkt_volume`

	barOnOrBeforeSQL = `SELECT ` + barColumns + ` FROM mkt_data
WHERE mkt_symbol = $1 AND mkt_date <= $2
ORDER BY mkt_date DESC
LIMIT 1`

	rangeSQL = `SELECT ` + barColumns + ` FROM mkt_data
WHERE mkt_symbol = $1
  AND ($2::date IS NULL OR mkt_date >= $2::date)
  AND ($3::date IS NULL OR mkt_date <= $3::date)
ORDER BY mkt_date`

	spanSQL = `SELECT MIN(mkt_date), MAX(mkt_date), COUNT(*) FROM mkt_data WHERE mkt_symbol = $1`
)

// BarStore is the mkt_data table.
type BarStore struct {
	pool   *Pool
	logger *common.Logger
}

// NewBarStore creates a BarStore on pool.
func NewBarStore(logger *common.Logger, pool *Pool) *BarStore {
	return &BarStore{pool: pool, logger: logger}
}

// UpsertBatch writes bars in a single transaction. A row already stored for
// the same (symbol, date) is replaced in full. Duplicate dates within bars
// resolve to the last one.
func (s *BarStore) UpsertBatch(ctx context.Context, symbol string, bars []models.Bar) (int, error) {
	symbol = models.NormalizeSymbol(symbol)
	if len(bars) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, b := range bars {
		b = b.Normalize()
		if b.Symbol != symbol {
			return 0, fmt.Errorf("upsert %s: bar for %s dated %s does not belong to this batch",
				symbol, b.Symbol, b.Date.Format(common.DateLayout))
		}
		if err := b.Validate(); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", symbol, err)
		}
		batch.Queue(upsertBarSQL,
			b.Symbol, b.Date,
			toNumeric(b.Open), toNumeric(b.High), toNumeric(b.Low), toNumeric(b.Close),
			b.Volume,
		)
	}

	written := 0
	err := s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			ct, err := br.Exec()
			if err != nil {
				br.Close()
				return fmt.Errorf("bar %d of %d: %w", i+1, batch.Len(), err)
			}
			written += int(ct.RowsAffected())
		}
		return br.Close()
	})
	if err != nil {
		return 0, wrapErr("upsert", symbol, err)
	}

	s.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Int("written", written).Msg("Upserted bars")
	return written, nil
}

// MinDate returns the earliest stored date, or common.ErrNoData.
func (s *BarStore) MinDate(ctx context.Context, symbol string) (time.Time, error) {
	span, err := s.Span(ctx, symbol)
	if err != nil {
		return time.Time{}, err
	}
	return span.First, nil
}

// MaxDate returns the latest stored date, or common.ErrNoData.
func (s *BarStore) MaxDate(ctx context.Context, symbol string) (time.Time, error) {
	symbol = models.NormalizeSymbol(symbol)
	var last pgtype.Date
	err := s.pool.Acquire(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `SELECT MAX(mkt_date) FROM mkt_data WHERE mkt_symbol = $1`, symbol).Scan(&last)
	})
	if err != nil {
		return time.Time{}, wrapErr("max_date", symbol, err)
	}
	if !last.Valid {
		return time.Time{}, common.ErrNoData
	}
	return fromDate(last), nil
}

// Span returns the first and last stored dates and the row count.
func (s *BarStore) Span(ctx context.Context, symbol string) (*models.BarSpan, error) {
	symbol = models.NormalizeSymbol(symbol)
	var first, last pgtype.Date
	var count int64
	err := s.pool.Acquire(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, spanSQL, symbol).Scan(&first, &last, &count)
	})
	if err != nil {
		return nil, wrapErr("span", symbol, err)
	}
	if count == 0 {
		return nil, common.ErrNoData
	}
	return &models.BarSpan{Symbol: symbol, First: fromDate(first), Last: fromDate(last), Count: count}, nil
}

// BarOnOrBefore returns the bar with the greatest date not after date.
func (s *BarStore) BarOnOrBefore(ctx context.Context, symbol string, date time.Time) (*models.Bar, error) {
	symbol = models.NormalizeSymbol(symbol)
	var bar models.Bar
	err := s.pool.Acquire(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, barOnOrBeforeSQL, symbol, common.NormalizeDate(date))
		if err != nil {
			return err
		}
		bar, err = pgx.CollectExactlyOneRow(rows, scanBar)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNoData
	}
	if err != nil {
		return nil, wrapErr("bar_on_or_before", symbol, err)
	}
	return &bar, nil
}

// Range returns bars dated from..to inclusive, ascending. A zero bound is open.
func (s *BarStore) Range(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	symbol = models.NormalizeSymbol(symbol)
	var bars []models.Bar
	err := s.pool.Acquire(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, rangeSQL, symbol, dateParam(from), dateParam(to))
		if err != nil {
			return err
		}
		bars, err = pgx.CollectRows(rows, scanBar)
		return err
	})
	if err != nil {
		return nil, wrapErr("range", symbol, err)
	}
	return bars, nil
}

func scanBar(row pgx.CollectableRow) (models.Bar, error) {
	var (
		b                     models.Bar
		date                  pgtype.Date
		open, high, low, last pgtype.Numeric
	)
	if err := row.Scan(&b.Symbol, &date, &open, &high, &low, &last, &b.Volume); err != nil {
		return models.Bar{}, err
	}
	b.Date = fromDate(date)

	var err error
	if b.Open, err = fromNumeric(open); err != nil {
		return models.Bar{}, fmt.Errorf("mkt_open: %w", err)
	}
	if b.High, err = fromNumeric(high); err != nil {
		return models.Bar{}, fmt.Errorf("mkt_high: %w", err)
	}
	if b.Low, err = fromNumeric(low); err != nil {
		return models.Bar{}, fmt.Errorf("mkt_low: %w", err)
	}
	if b.Close, err = fromNumeric(last); err != nil {
		return models.Bar{}, fmt.Errorf("mkt_close: %w", err)
	}
	return b, nil
}

// wrapErr keeps pool exhaustion and caller cancellation recognisable and
// reports everything else as a PersistenceError.
func wrapErr(op, symbol string, err error) error {
	var pe *common.PersistenceError
	switch {
	case errors.Is(err, common.ErrPoolExhausted):
		return fmt.Errorf("%s %s: %w", op, symbol, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &pe):
		if pe.Symbol == "" {
			pe.Symbol = symbol
		}
		return pe
	}
	return &common.PersistenceError{Op: op, Symbol: symbol, Err: err}
}

var _ interfaces.BarStore = (*BarStore)(nil)
