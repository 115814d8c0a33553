package ledger

import (
	"errors"

	"github.com/textkernel/tx-go/pkg/repository"
)

// Domain errors for ledger operations.
var (
	ErrRunNotFound    = errors.New("batch run not found")
	ErrDuplicateEntry = errors.New("document already recorded for run")
	ErrRunFinished    = errors.New("batch run already finished")
)

func mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrReference):
		return errors.Join(ErrRunNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return errors.Join(ErrDuplicateEntry, err)
	}
	return err
}
