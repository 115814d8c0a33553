// Package infrastructure assembles the systems a batch run depends on from
// the application configuration. Database, storage and metrics are optional
// and left nil when disabled.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/textkernel/tx-go/internal/config"
	"github.com/textkernel/tx-go/pkg/client"
	"github.com/textkernel/tx-go/pkg/database"
	"github.com/textkernel/tx-go/pkg/metrics"
	"github.com/textkernel/tx-go/pkg/storage"
	"github.com/textkernel/tx-go/pkg/transaction"
)

// Infrastructure holds the core systems shared by the batch runner.
type Infrastructure struct {
	Logger    *slog.Logger
	Processor transaction.Processor
	Database  database.System
	Storage   storage.System
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not contact any of them; call Start
// separately.
func New(cfg *config.Config, logOut io.Writer) (*Infrastructure, error) {
	logger := NewLogger(&cfg.Logging, logOut)

	infra := &Infrastructure{
		Logger:    logger,
		Processor: client.New(&cfg.Client, logger),
	}

	if cfg.Metrics.Enabled {
		infra.Registry = prometheus.NewRegistry()
		infra.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		infra.Metrics = metrics.New(infra.Registry)
		infra.Processor = infra.Metrics.Processor(infra.Processor)
	}

	db, err := database.New(&cfg.Database, logger)
	switch {
	case errors.Is(err, database.ErrDisabled):
	case err != nil:
		return nil, fmt.Errorf("database init failed: %w", err)
	default:
		infra.Database = db
	}

	store, err := storage.New(&cfg.Storage, logger)
	switch {
	case errors.Is(err, storage.ErrDisabled):
	case err != nil:
		return nil, fmt.Errorf("storage init failed: %w", err)
	default:
		infra.Storage = store
	}

	return infra, nil
}

// Start verifies the database connection and prepares the storage container.
func (i *Infrastructure) Start(ctx context.Context) error {
	if i.Database != nil {
		if err := i.Database.Start(ctx); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(ctx); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}

// Close releases the database pool.
func (i *Infrastructure) Close() error {
	if i.Database != nil {
		return i.Database.Close()
	}
	return nil
}

// NewLogger builds the slog logger described by cfg, writing to w
// (stderr when nil).
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
