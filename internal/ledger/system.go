package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/transaction"
)

// System defines the ledger operations.
type System interface {
	// Begin opens a run and returns its id.
	Begin(ctx context.Context, root string, kind transaction.Kind) (uuid.UUID, error)
	// Record stores one result and advances the run's counters.
	Record(ctx context.Context, run uuid.UUID, r batch.Result) error
	// Finish closes a running run, marking it aborted when runErr is non-nil.
	Finish(ctx context.Context, run uuid.UUID, eligible int, runErr error) error

	Find(ctx context.Context, run uuid.UUID) (*Run, error)
	Entries(ctx context.Context, run uuid.UUID) ([]Entry, error)

	// Handlers returns batch handlers that Record every result under run.
	Handlers(run uuid.UUID) batch.Handlers
}
