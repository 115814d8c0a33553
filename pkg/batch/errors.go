package batch

import (
	"fmt"

	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/transaction"
)

// Batch precondition errors. Both wrap faults.ErrInvalidBatch and are
// returned before any document is submitted.
var (
	ErrNoEligibleFiles = fmt.Errorf("%w: no eligible files", faults.ErrInvalidBatch)
	ErrBatchTooLarge   = fmt.Errorf("%w: batch too large", faults.ErrInvalidBatch)
)

// CodeInvalidDocument is reported to OnError for files that could not be
// turned into a document (empty, unreadable, removed after enumeration).
const CodeInvalidDocument = "InvalidDocument"

// CodeInvalidDocumentID is reported to OnError when indexing is requested and
// Job.DocumentID returned a blank id for the file.
const CodeInvalidDocumentID = "InvalidDocumentId"

// Submitted reports whether an error result came back from the processor,
// as opposed to a file rejected locally before submission.
func Submitted(info transaction.ErrorInfo) bool {
	return info.Code != CodeInvalidDocument && info.Code != CodeInvalidDocumentID
}
