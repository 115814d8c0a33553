package metrics_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/document"
	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/metrics"
	"github.com/textkernel/tx-go/pkg/transaction"
)

func request(t *testing.T) *transaction.Request {
	t.Helper()
	doc, err := document.New([]byte("cv"), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	return &transaction.Request{Document: doc, Kind: transaction.KindResume}
}

func TestProcessor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	replies := []struct {
		resp *transaction.CompositeResponse
		err  error
	}{
		{
			resp: &transaction.CompositeResponse{
				Parsing:  &transaction.StageOutcome{Code: "Success", Success: true},
				Payload:  &transaction.Payload{Kind: transaction.KindResume, Data: json.RawMessage(`{}`)},
				Metadata: transaction.Metadata{TimedOut: true},
				Info:     transaction.Info{TransactionCost: 1, CreditsRemaining: 41},
			},
		},
		{err: fmt.Errorf("%w: connection refused", faults.ErrTransport)},
		{resp: &transaction.CompositeResponse{}},
	}

	call := 0
	p := m.Processor(transaction.ProcessorFunc(func(context.Context, *transaction.Request) (*transaction.CompositeResponse, error) {
		r := replies[call]
		call++
		return r.resp, r.err
	}))

	for range replies {
		p.Submit(context.Background(), request(t))
	}

	tests := []struct {
		status string
		want   float64
	}{
		{metrics.StatusOK, 1},
		{metrics.StatusTransport, 1},
		{metrics.StatusInvalid, 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("resume", tt.status))
		if got != tt.want {
			t.Errorf("transactions_total{status=%q} = %v, want %v", tt.status, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(m.CreditsRemaining); got != 41 {
		t.Errorf("credits_remaining = %v, want 41", got)
	}
	if got := testutil.ToFloat64(m.TransactionCost); got != 1 {
		t.Errorf("credits_consumed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TimeoutsTotal); got != 1 {
		t.Errorf("parse_timeouts_total = %v, want 1", got)
	}
}

func TestProcessorPassesErrorsThrough(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	errBoom := errors.New("boom")

	p := m.Processor(transaction.ProcessorFunc(func(context.Context, *transaction.Request) (*transaction.CompositeResponse, error) {
		return nil, errBoom
	}))

	if _, err := p.Submit(context.Background(), request(t)); !errors.Is(err, errBoom) {
		t.Errorf("Submit() error = %v, want %v", err, errBoom)
	}
	if got := testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("resume", metrics.StatusError)); got != 1 {
		t.Errorf("transactions_total{status=error} = %v, want 1", got)
	}
}

func TestHandlers(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := m.Handlers()
	ctx := context.Background()

	results := []batch.Result{
		{Kind: batch.ResultSuccess},
		{Kind: batch.ResultPartialSuccess, FailedStage: transaction.StageIndexing},
		{Kind: batch.ResultError, Error: transaction.ErrorInfo{Code: "ConversionException"}},
		{Kind: batch.ResultError, Error: transaction.ErrorInfo{Code: batch.CodeInvalidDocument}},
		{Kind: batch.ResultError, Error: transaction.ErrorInfo{Code: batch.CodeInvalidDocumentID}},
	}
	for _, r := range results {
		if err := h.Dispatch(ctx, r); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}

	if got := testutil.ToFloat64(m.ResultsTotal.WithLabelValues("ERROR")); got != 3 {
		t.Errorf("batch_results_total{result=ERROR} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.StageFailuresTotal.WithLabelValues("Indexing")); got != 1 {
		t.Errorf("stage_failures_total{stage=Indexing} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StageFailuresTotal.WithLabelValues("Parsing")); got != 1 {
		t.Errorf("stage_failures_total{stage=Parsing} = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ResultsTotal.WithLabelValues("SUCCESS").Add(3)

	path := filepath.Join(t.TempDir(), "tx.prom")
	if err := metrics.WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := `tx_batch_results_total{result="SUCCESS"} 3`; !strings.Contains(string(data), want) {
		t.Errorf("textfile missing %q:\n%s", want, data)
	}
}
