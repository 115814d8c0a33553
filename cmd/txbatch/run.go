package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/textkernel/tx-go/internal/archive"
	"github.com/textkernel/tx-go/internal/config"
	"github.com/textkernel/tx-go/internal/infrastructure"
	"github.com/textkernel/tx-go/internal/ledger"
	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/formatting"
	"github.com/textkernel/tx-go/pkg/metrics"
)

// run executes one batch, logging to logOut (stderr when nil). Errors are
// logged before they are returned.
func run(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	infra, err := infrastructure.New(cfg, logOut)
	if err != nil {
		infrastructure.NewLogger(&cfg.Logging, logOut).ErrorContext(ctx, "infrastructure init failed", "error", err)
		return err
	}
	defer infra.Close()

	logger := infra.Logger
	logger.InfoContext(
		ctx, "txbatch starting",
		"version", cfg.Version,
		"env", cfg.Env(),
		"root", cfg.Batch.Root,
	)

	if n := cfg.Batch.MaxDocumentSizeBytes(); n > 0 {
		logger.InfoContext(ctx, "document size limit", "max", formatting.FormatSize(n))
	}

	if err := infra.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "startup failed", "error", err)
		return err
	}

	job := batch.Job{
		Root:     cfg.Batch.Root,
		Recurse:  cfg.Batch.Recurse,
		Policy:   cfg.Batch.Policy(),
		Template: cfg.Batch.Template(),
	}

	var (
		handlers []batch.Handlers
		led      ledger.System
		runID    = uuid.New()
	)

	if infra.Database != nil {
		led = ledger.New(infra.Database.Connection(), logger)
		if runID, err = led.Begin(ctx, job.Root, job.Template.Kind); err != nil {
			logger.ErrorContext(ctx, "ledger begin failed", "error", err)
			return err
		}
		handlers = append(handlers, led.Handlers(runID))
	}
	if infra.Storage != nil {
		handlers = append(handlers, archive.New(infra.Storage, cfg.Storage.Prefix, logger).Handlers(runID.String()))
	}
	if infra.Metrics != nil {
		handlers = append(handlers, infra.Metrics.Handlers())
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)

	var (
		summary *batch.Summary
		runErr  error
	)

	g.Go(func() error {
		defer stopServe()
		rt := &batch.Runtime{Processor: infra.Processor, Logger: logger.With("run_id", runID)}
		summary, runErr = batch.Run(gctx, rt, job, batch.Chain(handlers...))
		return runErr
	})

	if infra.Registry != nil && cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return metrics.Serve(serveCtx, cfg.Metrics.Listen, infra.Registry, logger)
		})
	}

	err = g.Wait()
	stopServe()

	if led != nil {
		eligible := 0
		if summary != nil {
			eligible = summary.Eligible
		}
		// The run context may already be cancelled; the ledger must still close the run.
		if ferr := led.Finish(context.WithoutCancel(ctx), runID, eligible, runErr); ferr != nil {
			logger.ErrorContext(ctx, "ledger finish failed", "error", ferr)
			err = errors.Join(err, ferr)
		}
	}

	if infra.Registry != nil && cfg.Metrics.Textfile != "" {
		if werr := metrics.WriteTextfile(cfg.Metrics.Textfile, infra.Registry); werr != nil {
			logger.ErrorContext(ctx, "metrics export failed", "error", werr)
			err = errors.Join(err, werr)
		}
	}

	if err != nil {
		logger.ErrorContext(ctx, "txbatch failed", "run_id", runID, "error", err)
		return fmt.Errorf("run %s: %w", runID, err)
	}

	logger.InfoContext(
		ctx, "txbatch complete",
		"run_id", runID,
		"eligible", summary.Eligible,
		"submitted", summary.Submitted,
		"succeeded", summary.Succeeded,
		"partial_success", summary.PartialSuccess,
		"failed", summary.Failed,
	)
	return nil
}
