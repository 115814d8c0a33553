package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/repository"
	"github.com/textkernel/tx-go/pkg/transaction"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a ledger backed by db.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "ledger"),
	}
}

func (r *repo) Begin(ctx context.Context, root string, kind transaction.Kind) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate run id: %w", err)
	}

	q := `INSERT INTO batch_runs (id, root, kind, status) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, q, id, root, string(kind), string(StatusRunning)); err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", repository.MapError(err))
	}

	r.logger.InfoContext(ctx, "run started", "run_id", id, "root", root)
	return id, nil
}

func (r *repo) Record(ctx context.Context, run uuid.UUID, res batch.Result) error {
	e := NewEntry(run, res)

	submitted := 1
	if res.Kind == batch.ResultError && !batch.Submitted(res.Error) {
		submitted = 0
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		insert := `
			INSERT INTO batch_results (
				run_id, file, document_id, result, failed_stage, error_code,
				error_message, transaction_id, credits_remaining, timed_out
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := tx.ExecContext(
			ctx, insert,
			e.RunID, e.File, e.DocumentID, string(e.Result), e.FailedStage, e.ErrorCode,
			e.ErrorMessage, e.TransactionID, e.CreditsRemaining, e.TimedOut,
		)
		if err != nil {
			return struct{}{}, repository.MapError(err)
		}

		col := counterColumn(e.Result)
		update := fmt.Sprintf(
			`UPDATE batch_runs SET submitted = submitted + $2, %s = %s + 1
			 WHERE id = $1 AND status = $3`,
			col, col,
		)
		return struct{}{}, repository.ExecExpectOne(ctx, tx, update, run, submitted, string(StatusRunning))
	})
	if err != nil {
		return fmt.Errorf("record %s: %w", res.File, mapError(err))
	}

	return nil
}

func (r *repo) Finish(ctx context.Context, run uuid.UUID, eligible int, runErr error) error {
	status, msg := StatusCompleted, ""
	if runErr != nil {
		status, msg = StatusAborted, runErr.Error()
	}

	q := `
		UPDATE batch_runs
		SET status = $2, eligible = $3, error = $4, finished_at = now()
		WHERE id = $1 AND status = $5`

	err := repository.ExecExpectOne(ctx, r.db, q, run, string(status), eligible, msg, string(StatusRunning))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if _, findErr := r.Find(ctx, run); findErr == nil {
				return fmt.Errorf("finish run %s: %w", run, ErrRunFinished)
			}
		}
		return fmt.Errorf("finish run %s: %w", run, mapError(err))
	}

	r.logger.InfoContext(ctx, "run finished", "run_id", run, "status", status)
	return nil
}

func (r *repo) Find(ctx context.Context, run uuid.UUID) (*Run, error) {
	q := `SELECT ` + runColumns + ` FROM batch_runs WHERE id = $1`

	found, err := repository.QueryOne(ctx, r.db, scanRun, q, run)
	if err != nil {
		return nil, fmt.Errorf("find run %s: %w", run, mapError(err))
	}
	return &found, nil
}

func (r *repo) Entries(ctx context.Context, run uuid.UUID) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM batch_results WHERE run_id = $1 ORDER BY id`

	entries, err := repository.QueryMany(ctx, r.db, scanEntry, q, run)
	if err != nil {
		return nil, fmt.Errorf("list entries for run %s: %w", run, err)
	}
	return entries, nil
}

func (r *repo) Handlers(run uuid.UUID) batch.Handlers {
	return batch.OnResult(func(ctx context.Context, res batch.Result) error {
		return r.Record(ctx, run, res)
	})
}
