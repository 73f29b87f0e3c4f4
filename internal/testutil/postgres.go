// Package testutil starts disposable PostgreSQL instances for integration and e2e suites.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/library/internal/store/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:17.5-alpine"

// Postgres is a migrated database running in a container.
type Postgres struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// StartPostgres runs a PostgreSQL container, waits until it accepts connections,
// opens a pool and applies the books migrations.
func StartPostgres(ctx context.Context, logger *slog.Logger) (*Postgres, error) {
	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase("books"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run PostgreSQL container: %w", err)
	}
	pg := &Postgres{Container: container}

	pg.ConnStr, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pg.Terminate(ctx, logger)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pg.Pool, err = pgxpool.New(ctx, pg.ConnStr)
	if err != nil {
		pg.Terminate(ctx, logger)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	for i := range 10 {
		logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		if err = pg.Pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		pg.Terminate(ctx, logger)
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	if err := migrations.Up(pg.ConnStr); err != nil {
		pg.Terminate(ctx, logger)
		return nil, err
	}
	logger.Info("Migrations applied")
	return pg, nil
}

// Truncate empties the books table and restarts the id sequence at 1.
func (p *Postgres) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, "TRUNCATE TABLE books RESTART IDENTITY")
	return err
}

// Terminate closes the pool and removes the container.
func (p *Postgres) Terminate(ctx context.Context, logger *slog.Logger) {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if p.Container != nil {
		if err := p.Container.Terminate(ctx); err != nil {
			logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}
