package database

import "errors"

var (
	// ErrNotReady indicates the database could not be reached.
	ErrNotReady = errors.New("database not ready")
	// ErrDisabled is returned by New when the database is not enabled.
	ErrDisabled = errors.New("database disabled")
)
