package ledger

import (
	"database/sql"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/repository"
)

const runColumns = `id, root, kind, status, eligible, submitted, succeeded,
	partial_success, failed, error, started_at, finished_at`

const entryColumns = `id, run_id, file, document_id, result, failed_stage,
	error_code, error_message, transaction_id, credits_remaining, timed_out,
	recorded_at`

func scanRun(s repository.Scanner) (Run, error) {
	var (
		r        Run
		finished sql.NullTime
	)

	err := s.Scan(
		&r.ID, &r.Root, &r.Kind, &r.Status,
		&r.Summary.Eligible, &r.Summary.Submitted, &r.Summary.Succeeded,
		&r.Summary.PartialSuccess, &r.Summary.Failed,
		&r.Error, &r.StartedAt, &finished,
	)
	if err != nil {
		return Run{}, err
	}

	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return r, nil
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e       Entry
		credits sql.NullFloat64
	)

	err := s.Scan(
		&e.ID, &e.RunID, &e.File, &e.DocumentID, &e.Result, &e.FailedStage,
		&e.ErrorCode, &e.ErrorMessage, &e.TransactionID, &credits, &e.TimedOut,
		&e.RecordedAt,
	)
	if err != nil {
		return Entry{}, err
	}

	if credits.Valid {
		e.CreditsRemaining = &credits.Float64
	}
	return e, nil
}

// counterColumn names the batch_runs column a result kind increments.
func counterColumn(kind batch.ResultKind) string {
	switch kind {
	case batch.ResultSuccess:
		return "succeeded"
	case batch.ResultPartialSuccess:
		return "partial_success"
	}
	return "failed"
}
