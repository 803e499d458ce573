// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pgOnce      sync.Once
	pgContainer *PostgresContainer
	pgError     error
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container *postgres.PostgresContainer
	connStr   string
}

// StartPostgres starts a shared PostgreSQL container for the test run.
// Uses sync.Once so only one container is created per process.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("FINAPPS_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set FINAPPS_TEST_DOCKER=true to enable)")
	}

	pgOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("finapps_test"),
			postgres.WithUsername("finapps"),
			postgres.WithPassword("finapps"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(2*time.Minute),
			),
		)
		if err != nil {
			pgError = fmt.Errorf("start PostgreSQL container: %w", err)
			return
		}

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			container.Terminate(ctx)
			pgError = fmt.Errorf("get PostgreSQL connection string: %w", err)
			return
		}

		pgContainer = &PostgresContainer{container: container, connStr: connStr}
	})

	if pgError != nil {
		t.Fatalf("PostgreSQL container failed: %v", pgError)
	}

	return pgContainer
}

// ConnectionString returns the URL of the container's default database.
func (c *PostgresContainer) ConnectionString() string {
	return c.connStr
}

// NewDatabase creates an empty database unique to the test and returns a
// DatabaseConfig pointing at it. The database is dropped on cleanup.
func (c *PostgresContainer) NewDatabase(t *testing.T) common.DatabaseConfig {
	t.Helper()
	ctx := context.Background()

	sanitized := strings.ToLower(strings.NewReplacer("/", "_", " ", "_", "-", "_").Replace(t.Name()))
	if len(sanitized) > 40 {
		sanitized = sanitized[:40]
	}
	name := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%1000000)

	admin, err := pgx.Connect(ctx, c.connStr)
	if err != nil {
		t.Fatalf("connect to PostgreSQL: %v", err)
	}
	defer admin.Close(ctx)

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, c.connStr)
		if err != nil {
			return
		}
		defer conn.Close(ctx)
		conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)")
	})

	u, err := url.Parse(c.connStr)
	if err != nil {
		t.Fatalf("parse connection string: %v", err)
	}
	u.Path = "/" + name

	cfg := common.NewDefaultConfig().Database
	cfg.URL = u.String()
	return cfg
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *PostgresContainer) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}
