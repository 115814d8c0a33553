package batch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/transaction"
)

func TestHandlersDispatch(t *testing.T) {
	resp := &transaction.CompositeResponse{}
	info := transaction.ErrorInfo{Code: "InsufficientData", Message: "no address"}

	tests := []struct {
		name   string
		result batch.Result
		want   string
	}{
		{
			name:   "success",
			result: batch.Result{Kind: batch.ResultSuccess, File: "a.pdf", DocumentID: "1", Response: resp},
			want:   "success",
		},
		{
			name: "partial success",
			result: batch.Result{
				Kind:        batch.ResultPartialSuccess,
				File:        "a.pdf",
				DocumentID:  "1",
				Response:    resp,
				FailedStage: transaction.StageGeocoding,
				Error:       info,
			},
			want: "partial",
		},
		{
			name:   "error",
			result: batch.Result{Kind: batch.ResultError, File: "a.pdf", DocumentID: "1", Error: info},
			want:   "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := batch.Handlers{
				OnSuccess: func(_ context.Context, file, id string, r *transaction.CompositeResponse) error {
					if r != resp {
						t.Error("OnSuccess received a different response")
					}
					got = "success"
					return nil
				},
				OnPartialSuccess: func(
					_ context.Context,
					file, id string,
					r *transaction.CompositeResponse,
					stage transaction.Stage,
					i transaction.ErrorInfo,
				) error {
					if stage != transaction.StageGeocoding || i != info {
						t.Errorf("OnPartialSuccess got stage %s and %v", stage, i)
					}
					got = "partial"
					return nil
				},
				OnError: func(_ context.Context, file, id string, i transaction.ErrorInfo) error {
					if i != info {
						t.Errorf("OnError got %v, want %v", i, info)
					}
					got = "error"
					return nil
				},
			}

			if err := h.Dispatch(context.Background(), tt.result); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Dispatch() called %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandlersDispatchSkipsNilCallbacks(t *testing.T) {
	var h batch.Handlers
	for _, kind := range []batch.ResultKind{batch.ResultSuccess, batch.ResultPartialSuccess, batch.ResultError} {
		if err := h.Dispatch(context.Background(), batch.Result{Kind: kind}); err != nil {
			t.Errorf("Dispatch(%s) error = %v, want nil", kind, err)
		}
	}
}

func TestChain(t *testing.T) {
	var order []string
	record := func(name string, err error) batch.Handlers {
		return batch.OnResult(func(context.Context, batch.Result) error {
			order = append(order, name)
			return err
		})
	}

	errStop := errors.New("stop")
	h := batch.Chain(record("ledger", nil), record("archive", errStop), record("metrics", nil))

	err := h.Dispatch(context.Background(), batch.Result{Kind: batch.ResultError})
	if !errors.Is(err, errStop) {
		t.Fatalf("Dispatch() error = %v, want %v", err, errStop)
	}

	want := []string{"ledger", "archive"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("Chain() order = %v, want %v", order, want)
	}
}

func TestOnResultKeepsHardFailureResponse(t *testing.T) {
	resp := &transaction.CompositeResponse{
		Parsing: &transaction.StageOutcome{Code: "ConversionException"},
		Info:    transaction.Info{TransactionID: "tx-1", CreditsRemaining: 9},
	}
	in := batch.Result{
		Kind:       batch.ResultError,
		File:       "a.pdf",
		DocumentID: "1",
		Response:   resp,
		Error:      transaction.ErrorInfo{Code: "ConversionException"},
	}

	var got []batch.Result
	h := batch.Chain(batch.OnResult(func(_ context.Context, r batch.Result) error {
		got = append(got, r)
		return nil
	}))

	if err := h.Dispatch(context.Background(), in); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(got) != 1 || got[0].Response != resp {
		t.Errorf("Dispatch() delivered %+v, want the response of the failed parse", got)
	}
}
