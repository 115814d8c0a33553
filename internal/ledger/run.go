// Package ledger records batch runs and their per-file results in PostgreSQL.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/textkernel/tx-go/pkg/batch"
)

// Status is the lifecycle state of a run.
type Status string

// Run states.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Run is one invocation of the batch orchestrator.
type Run struct {
	ID         uuid.UUID     `json:"id"`
	Root       string        `json:"root"`
	Kind       string        `json:"kind"`
	Status     Status        `json:"status"`
	Summary    batch.Summary `json:"summary"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Entry is the stored form of one batch.Result.
type Entry struct {
	ID               int64            `json:"id"`
	RunID            uuid.UUID        `json:"run_id"`
	File             string           `json:"file"`
	DocumentID       string           `json:"document_id"`
	Result           batch.ResultKind `json:"result"`
	FailedStage      string           `json:"failed_stage,omitempty"`
	ErrorCode        string           `json:"error_code,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	TransactionID    string           `json:"transaction_id,omitempty"`
	CreditsRemaining *float64         `json:"credits_remaining,omitempty"`
	TimedOut         bool             `json:"timed_out"`
	RecordedAt       time.Time        `json:"recorded_at"`
}

// NewEntry converts r into an Entry for run. Transaction details are taken
// from the response when the result carries one.
func NewEntry(run uuid.UUID, r batch.Result) Entry {
	e := Entry{
		RunID:        run,
		File:         r.File,
		DocumentID:   r.DocumentID,
		Result:       r.Kind,
		FailedStage:  string(r.FailedStage),
		ErrorCode:    r.Error.Code,
		ErrorMessage: r.Error.Message,
	}

	if resp := r.Response; resp != nil {
		credits := resp.Info.CreditsRemaining
		e.TransactionID = resp.Info.TransactionID
		e.CreditsRemaining = &credits
		e.TimedOut = resp.Metadata.TimedOut
	}

	return e
}
