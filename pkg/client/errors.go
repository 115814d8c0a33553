package client

import (
	"fmt"

	"github.com/textkernel/tx-go/pkg/faults"
)

// APIError is returned for service responses that describe a transport,
// authentication or quota problem rather than a document problem.
type APIError struct {
	StatusCode    int
	Code          string
	Message       string
	TransactionID string
}

func (e *APIError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("tx api: %d %s: %s (transaction %s)", e.StatusCode, e.Code, e.Message, e.TransactionID)
	}
	return fmt.Sprintf("tx api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap makes every APIError match faults.ErrTransport.
func (e *APIError) Unwrap() error {
	return faults.ErrTransport
}
