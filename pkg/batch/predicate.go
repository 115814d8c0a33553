package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// All returns a predicate that holds when every pred holds. Nil entries are ignored.
func All(preds ...func(path string) bool) func(path string) bool {
	return func(path string) bool {
		for _, pred := range preds {
			if pred != nil && !pred(path) {
				return false
			}
		}
		return true
	}
}

// MaxPDFPages returns a predicate rejecting PDFs with more than n pages.
// Files that are not PDFs pass. PDFs whose page count cannot be read are
// rejected so they are not billed as a transaction that will fail.
func MaxPDFPages(n int) func(path string) bool {
	return func(path string) bool {
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return true
		}

		count, err := api.PageCountFile(path)
		if err != nil {
			return false
		}

		return count <= n
	}
}

// MaxDocumentSize returns a predicate rejecting files larger than n bytes.
// Files that cannot be stat'ed are rejected.
func MaxDocumentSize(n int64) func(path string) bool {
	return func(path string) bool {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		return info.Size() <= n
	}
}
