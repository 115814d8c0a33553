package batch

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/textkernel/tx-go/pkg/faults"
)

// Policy decides which files of a directory are submitted.
//
// Rules are evaluated in order and the first match decides:
// a non-empty AllowedExtensions is an exclusive allow-list;
// otherwise a file whose extension is in DisallowedExtensions is rejected;
// otherwise Predicate, when set, decides; otherwise the file is allowed.
// Extensions compare case-insensitively with or without a leading dot.
//
// MaxBatchSize is not a per-file rule. It is checked once against the
// filtered set before anything is submitted.
type Policy struct {
	MaxBatchSize         int
	AllowedExtensions    []string
	DisallowedExtensions []string
	Predicate            func(path string) bool
}

// IsAllowed reports whether path is eligible for submission.
func (p *Policy) IsAllowed(path string) bool {
	ext := normalizeExt(filepath.Ext(path))

	if len(p.AllowedExtensions) > 0 {
		return containsExt(p.AllowedExtensions, ext)
	}

	if len(p.DisallowedExtensions) > 0 && containsExt(p.DisallowedExtensions, ext) {
		return false
	}

	if p.Predicate != nil {
		return p.Predicate(path)
	}

	return true
}

// Filter returns the paths allowed by p, preserving order.
func (p *Policy) Filter(paths []string) []string {
	var eligible []string
	for _, path := range paths {
		if p.IsAllowed(path) {
			eligible = append(eligible, path)
		}
	}
	return eligible
}

func (p *Policy) validate() error {
	if p.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max batch size must be positive, got %d", faults.ErrInvalidArgument, p.MaxBatchSize)
	}
	return nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func containsExt(set []string, ext string) bool {
	return slices.ContainsFunc(set, func(s string) bool {
		return normalizeExt(s) == ext
	})
}
