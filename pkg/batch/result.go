package batch

import (
	"context"

	"github.com/textkernel/tx-go/pkg/transaction"
)

// ResultKind tags a Result.
type ResultKind string

// Result kinds, one per handler callback.
const (
	ResultSuccess        ResultKind = "SUCCESS"
	ResultPartialSuccess ResultKind = "PARTIAL_SUCCESS"
	ResultError          ResultKind = "ERROR"
)

// Result is produced once per submitted file and never mutated.
// Response is set whenever the service answered, including a failed parse,
// which carries no payload; FailedStage is set for partial success; Error for
// partial success and error.
type Result struct {
	Kind        ResultKind
	File        string
	DocumentID  string
	Response    *transaction.CompositeResponse
	FailedStage transaction.Stage
	Error       transaction.ErrorInfo
}

func newResult(file, documentID string, o transaction.Outcome) Result {
	r := Result{
		File:       file,
		DocumentID: documentID,
	}

	switch o.Kind {
	case transaction.OutcomeFullSuccess:
		r.Kind = ResultSuccess
		r.Response = o.Response
	case transaction.OutcomeUsableFailure:
		r.Kind = ResultPartialSuccess
		r.Response = o.Response
		r.FailedStage = o.Stage
		r.Error = o.Error
	default:
		r.Kind = ResultError
		r.Response = o.Response
		r.Error = o.Error
	}

	return r
}

// Handlers receive batch results. Exactly one callback runs per file and it
// completes before the next file is submitted. Nil callbacks are skipped.
// A callback error aborts the remaining batch.
type Handlers struct {
	OnSuccess func(
		ctx context.Context,
		file, documentID string,
		resp *transaction.CompositeResponse,
	) error

	OnPartialSuccess func(
		ctx context.Context,
		file, documentID string,
		resp *transaction.CompositeResponse,
		failedStage transaction.Stage,
		info transaction.ErrorInfo,
	) error

	OnError func(
		ctx context.Context,
		file, documentID string,
		info transaction.ErrorInfo,
	) error

	// result is set by OnResult so that Dispatch hands over the full Result,
	// including the response of a failed parse.
	result func(ctx context.Context, r Result) error
}

// Dispatch routes r to the callback matching its kind. Handlers built by
// OnResult receive r whole.
func (h Handlers) Dispatch(ctx context.Context, r Result) error {
	if h.result != nil {
		return h.result(ctx, r)
	}
	switch r.Kind {
	case ResultSuccess:
		if h.OnSuccess != nil {
			return h.OnSuccess(ctx, r.File, r.DocumentID, r.Response)
		}
	case ResultPartialSuccess:
		if h.OnPartialSuccess != nil {
			return h.OnPartialSuccess(ctx, r.File, r.DocumentID, r.Response, r.FailedStage, r.Error)
		}
	case ResultError:
		if h.OnError != nil {
			return h.OnError(ctx, r.File, r.DocumentID, r.Error)
		}
	}
	return nil
}

// OnResult returns Handlers that pass every result, whatever its kind, to fn.
// Through Dispatch fn sees the Result unchanged; the individual callbacks
// rebuild it from their arguments, so OnError results carry no Response.
func OnResult(fn func(ctx context.Context, r Result) error) Handlers {
	return Handlers{
		OnSuccess: func(ctx context.Context, file, documentID string, resp *transaction.CompositeResponse) error {
			return fn(ctx, Result{Kind: ResultSuccess, File: file, DocumentID: documentID, Response: resp})
		},
		OnPartialSuccess: func(
			ctx context.Context,
			file, documentID string,
			resp *transaction.CompositeResponse,
			stage transaction.Stage,
			info transaction.ErrorInfo,
		) error {
			return fn(ctx, Result{
				Kind:        ResultPartialSuccess,
				File:        file,
				DocumentID:  documentID,
				Response:    resp,
				FailedStage: stage,
				Error:       info,
			})
		},
		OnError: func(ctx context.Context, file, documentID string, info transaction.ErrorInfo) error {
			return fn(ctx, Result{Kind: ResultError, File: file, DocumentID: documentID, Error: info})
		},
		result: fn,
	}
}

// Chain returns Handlers that dispatch each result to hs in order,
// stopping at the first error.
func Chain(hs ...Handlers) Handlers {
	return OnResult(func(ctx context.Context, r Result) error {
		for _, h := range hs {
			if err := h.Dispatch(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
}
