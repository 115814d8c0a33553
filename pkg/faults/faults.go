// Package faults defines the error taxonomy shared by the tx-go packages.
// Package-specific errors wrap one of these sentinels so callers can branch
// on the category with errors.Is regardless of where the error originated.
//
// Per-document stage failures are not errors: they are reported as
// transaction.Outcome values. Only caller misuse and infrastructure faults
// travel through the error return.
package faults

import "errors"

var (
	// ErrInvalidArgument indicates caller misuse: a nil or blank required parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates a referenced file or directory does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBatch indicates a whole-batch precondition failed before any work was done.
	ErrInvalidBatch = errors.New("invalid batch")
	// ErrTransport indicates a processor-level fault that is not a stage failure:
	// network errors, authentication errors, rate limiting, service errors.
	ErrTransport = errors.New("transport fault")
	// ErrUnexpectedResponse indicates the processor returned a malformed response.
	ErrUnexpectedResponse = errors.New("unexpected response")
)
