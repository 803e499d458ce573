package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migration is one embedded schema step, applied in version order.
type Migration struct {
	Version string
	SQL     string
}

// Migrations lists the embedded migrations sorted by file name.
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".up.sql")
		out = append(out, Migration{Version: version, SQL: string(data)})
	}
	return out, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations. Each migration runs in its own transaction.
func (p *Pool) Migrate(ctx context.Context) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}

	err = p.Acquire(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		err := p.WithTx(ctx, func(tx pgx.Tx) error {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return nil
			}
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
				return err
			}
			applied++
			p.logger.Info().Str("version", m.Version).Msg("Applied migration")
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.Version, err)
		}
	}

	p.logger.Debug().Int("applied", applied).Int("total", len(migrations)).Msg("Schema up to date")
	return nil
}
