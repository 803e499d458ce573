// Package postgres implements bar persistence on PostgreSQL using a bounded pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is a bounded connection pool. Callers borrow connections through
// Acquire or WithTx and never hold them past the callback.
type Pool struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	logger         *common.Logger
}

// NewPool connects to the database described by cfg and verifies it with a ping.
func NewPool(ctx context.Context, logger *common.Logger, cfg common.DatabaseConfig) (*Pool, error) {
	pgxConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgresql config: %w", err)
	}

	pgxConfig.MaxConns = int32(cfg.MaxConns)
	pgxConfig.MinConns = int32(cfg.MinConns)
	pgxConfig.ConnConfig.ConnectTimeout = cfg.GetConnectTimeout()
	if cfg.ApplicationName != "" {
		pgxConfig.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgresql pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgresql: %w", err)
	}

	logger.Info().
		Str("host", pgxConfig.ConnConfig.Host).
		Str("database", pgxConfig.ConnConfig.Database).
		Int("min_conns", cfg.MinConns).
		Int("max_conns", cfg.MaxConns).
		Dur("acquire_timeout", cfg.GetAcquireTimeout()).
		Msg("Database pool ready")

	return &Pool{
		pool:           pool,
		acquireTimeout: cfg.GetAcquireTimeout(),
		logger:         logger,
	}, nil
}

// Acquire borrows a connection for the duration of fn. The connection goes
// back to the pool on every exit path, including a panic in fn.
// Waiting longer than the acquire timeout fails with common.ErrPoolExhausted.
func (p *Pool) Acquire(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	acqCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	start := time.Now()
	conn, err := p.pool.Acquire(acqCtx)
	cancel()
	if err != nil {
		return acquireError(ctx, err, time.Since(start))
	}
	defer conn.Release()

	return fn(conn)
}

// WithTx runs fn inside a transaction. fn's error or panic rolls back;
// otherwise the transaction commits.
func (p *Pool) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return p.Acquire(ctx, func(conn *pgxpool.Conn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback(ctx)
				panic(r)
			}
		}()

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// Stat exposes pool counters.
func (p *Pool) Stat() *pgxpool.Stat {
	return p.pool.Stat()
}

// Close waits for borrowed connections to return and closes the pool.
func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// acquireError separates caller cancellation from a pool that stayed full
// for the whole acquire timeout.
func acquireError(parent context.Context, err error, waited time.Duration) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no connection free after %s", common.ErrPoolExhausted, waited.Round(time.Millisecond))
	}
	return &common.PersistenceError{Op: "acquire", Err: err}
}
