// Package database manages the PostgreSQL connection pool behind the result ledger.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// System owns a database connection pool.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Start verifies the database is reachable within the configured timeout.
	Start(ctx context.Context) error
	// Close releases the pool.
	Close() error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New creates a database system with the given configuration.
// It calls sql.Open to validate the DSN and configure pool parameters,
// but does not establish a connection until Start is called.
// It returns ErrDisabled when cfg is not enabled.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(ctx context.Context) error {
	d.logger.InfoContext(ctx, "starting database connection")

	pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	d.logger.InfoContext(ctx, "database connection established")
	return nil
}

func (d *database) Close() error {
	d.logger.Info("closing database connection")

	if err := d.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
