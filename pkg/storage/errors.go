package storage

import (
	"errors"
	"fmt"

	"github.com/textkernel/tx-go/pkg/faults"
)

var (
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = fmt.Errorf("%w: storage key must not be empty", faults.ErrInvalidArgument)
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = fmt.Errorf("%w: storage key contains invalid path segment", faults.ErrInvalidArgument)
	// ErrDisabled is returned by New when storage is not enabled.
	ErrDisabled = errors.New("storage disabled")
)
