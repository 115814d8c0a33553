// Package batch drives every eligible file of a directory through the
// parsing service, one document at a time, and reports each file's
// classified outcome to caller-supplied handlers.
//
// Processing is strictly sequential: file N+1 is not submitted until file N
// has been classified and its handler has returned.
//
// A file whose parse failed, or whose optional stage failed, never stops the
// batch. A processor fault (network, authentication, malformed response), a
// handler error or context cancellation stops it immediately.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/textkernel/tx-go/pkg/document"
	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/transaction"
)

// Runtime bundles the collaborators a batch run needs.
type Runtime struct {
	Processor transaction.Processor
	Logger    *slog.Logger
}

// Job describes one batch run.
// DocumentID, when set, is called exactly once per eligible file in
// enumeration order; otherwise each file receives a fresh UUID.
type Job struct {
	Root       string
	Recurse    bool
	Policy     *Policy
	Template   transaction.Template
	DocumentID func(path string) string
}

// Summary counts what a run did.
type Summary struct {
	Eligible       int `json:"eligible"`
	Submitted      int `json:"submitted"`
	Succeeded      int `json:"succeeded"`
	PartialSuccess int `json:"partial_success"`
	Failed         int `json:"failed"`
}

func (s *Summary) add(kind ResultKind) {
	switch kind {
	case ResultSuccess:
		s.Succeeded++
	case ResultPartialSuccess:
		s.PartialSuccess++
	case ResultError:
		s.Failed++
	}
}

// Run enumerates job.Root, filters it with job.Policy and processes each
// eligible file in order. Preconditions are checked, and the whole file list
// is materialized and sized, before the first submission.
//
// On abort the returned Summary reflects the files handled so far.
func Run(ctx context.Context, rt *Runtime, job Job, h Handlers) (*Summary, error) {
	if err := validate(rt, job); err != nil {
		return nil, err
	}

	logger := rt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("system", "batch")

	files, err := eligibleFiles(job)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(
		ctx, "batch starting",
		"root", job.Root,
		"recurse", job.Recurse,
		"eligible", len(files),
		"kind", job.Template.Kind,
	)

	summary := &Summary{Eligible: len(files)}
	nextID := job.DocumentID
	if nextID == nil {
		nextID = func(string) string { return uuid.NewString() }
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "batch cancelled", "processed", i, "eligible", len(files))
			return summary, fmt.Errorf("batch cancelled after %d of %d files: %w", i, len(files), err)
		}

		result, submitted, err := processFile(ctx, rt.Processor, job.Template, file, nextID)
		if submitted {
			summary.Submitted++
		}
		if err != nil {
			logger.ErrorContext(ctx, "batch aborted", "file", file, "error", err)
			return summary, err
		}
		summary.add(result.Kind)

		logResult(ctx, logger, i, len(files), result)

		if err := h.Dispatch(ctx, result); err != nil {
			logger.ErrorContext(ctx, "handler failed", "file", file, "kind", result.Kind, "error", err)
			return summary, fmt.Errorf("handle %s: %w", file, err)
		}
	}

	logger.InfoContext(
		ctx, "batch complete",
		"submitted", summary.Submitted,
		"succeeded", summary.Succeeded,
		"partial_success", summary.PartialSuccess,
		"failed", summary.Failed,
	)

	return summary, nil
}

func validate(rt *Runtime, job Job) error {
	if rt == nil || rt.Processor == nil {
		return fmt.Errorf("%w: processor is nil", faults.ErrInvalidArgument)
	}
	if job.Policy == nil {
		return fmt.Errorf("%w: policy is nil", faults.ErrInvalidArgument)
	}
	if strings.TrimSpace(job.Root) == "" {
		return fmt.Errorf("%w: root directory is blank", faults.ErrInvalidArgument)
	}
	if !job.Template.Kind.Valid() {
		return fmt.Errorf("%w: unknown document kind %q", faults.ErrInvalidArgument, job.Template.Kind)
	}
	if idx := job.Template.Options.Index; idx != nil && strings.TrimSpace(idx.IndexID) == "" {
		return fmt.Errorf("%w: index id required when indexing", faults.ErrInvalidArgument)
	}
	return job.Policy.validate()
}

func eligibleFiles(job Job) ([]string, error) {
	all, err := Enumerate(job.Root, job.Recurse)
	if err != nil {
		return nil, err
	}

	files := job.Policy.Filter(all)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %d files under %s, none allowed", ErrNoEligibleFiles, len(all), job.Root)
	}
	if len(files) > job.Policy.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d eligible files exceed max batch size %d", ErrBatchTooLarge, len(files), job.Policy.MaxBatchSize)
	}

	return files, nil
}

// processFile returns a Result for per-file content failures and an error
// only for faults that must abort the batch. submitted reports whether the
// processor was called.
func processFile(
	ctx context.Context,
	p transaction.Processor,
	tmpl transaction.Template,
	file string,
	nextID func(string) string,
) (result Result, submitted bool, err error) {
	doc, docErr := document.FromFile(file)
	documentID := nextID(file)

	if docErr != nil {
		return Result{
			Kind:       ResultError,
			File:       file,
			DocumentID: documentID,
			Error:      transaction.ErrorInfo{Code: CodeInvalidDocument, Message: docErr.Error()},
		}, false, nil
	}

	if tmpl.Options.Index != nil && strings.TrimSpace(documentID) == "" {
		return Result{
			Kind:       ResultError,
			File:       file,
			DocumentID: documentID,
			Error:      transaction.ErrorInfo{Code: CodeInvalidDocumentID, Message: "document id is blank"},
		}, false, nil
	}

	req := tmpl.Request(doc, documentID)
	if err := req.Validate(); err != nil {
		return Result{}, false, fmt.Errorf("request for %s: %w", file, err)
	}

	resp, err := p.Submit(ctx, req)
	if err != nil {
		return Result{}, true, fmt.Errorf("submit %s: %w", file, err)
	}

	if err := resp.Validate(); err != nil {
		return Result{}, true, fmt.Errorf("submit %s: %w", file, err)
	}

	return newResult(file, documentID, transaction.Classify(req.Options, resp)), true, nil
}

func logResult(ctx context.Context, logger *slog.Logger, i, total int, r Result) {
	attrs := []any{
		"file", r.File,
		"document_id", r.DocumentID,
		"index", i + 1,
		"total", total,
	}

	switch r.Kind {
	case ResultSuccess:
		logger.InfoContext(ctx, "document processed", attrs...)
	case ResultPartialSuccess:
		attrs = append(attrs, "stage", r.FailedStage, "code", r.Error.Code)
		logger.WarnContext(ctx, "document partially processed", attrs...)
	case ResultError:
		attrs = append(attrs, "code", r.Error.Code, "message", r.Error.Message)
		logger.WarnContext(ctx, "document failed", attrs...)
	}
}
