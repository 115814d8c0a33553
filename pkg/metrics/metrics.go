// Package metrics provides Prometheus instrumentation for transactions and
// batch results.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/transaction"
)

const namespace = "tx"

// Metrics holds the collectors for one process.
type Metrics struct {
	TransactionsTotal   *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	TransactionCost     prometheus.Counter
	CreditsRemaining    prometheus.Gauge

	ResultsTotal       *prometheus.CounterVec
	StageFailuresTotal *prometheus.CounterVec
	TimeoutsTotal      prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransactionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of submitted transactions",
			},
			[]string{"kind", "status"},
		),
		TransactionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_duration_seconds",
				Help:      "Duration of transactions in seconds",
				Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64, 128},
			},
			[]string{"kind"},
		),
		TransactionCost: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credits_consumed_total",
				Help:      "Credits consumed by transactions",
			},
		),
		CreditsRemaining: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "credits_remaining",
				Help:      "Account credits remaining after the last transaction",
			},
		),
		ResultsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_results_total",
				Help:      "Batch results by kind",
			},
			[]string{"result"},
		),
		StageFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Failed stages reported by the service",
			},
			[]string{"stage"},
		),
		TimeoutsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_timeouts_total",
				Help:      "Parses that hit the service timeout",
			},
		),
	}
}

// Transaction status label values.
const (
	StatusOK        = "ok"
	StatusTransport = "transport_error"
	StatusInvalid   = "invalid_response"
	StatusError     = "error"
)

// Processor returns p instrumented with transaction counters, latency and
// credit usage.
func (m *Metrics) Processor(p transaction.Processor) transaction.Processor {
	return transaction.ProcessorFunc(func(ctx context.Context, req *transaction.Request) (*transaction.CompositeResponse, error) {
		start := time.Now()
		resp, err := p.Submit(ctx, req)

		kind := string(req.Kind)
		m.TransactionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		m.TransactionsTotal.WithLabelValues(kind, status(resp, err)).Inc()

		if err == nil && resp != nil {
			m.TransactionCost.Add(max(resp.Info.TransactionCost, 0))
			m.CreditsRemaining.Set(resp.Info.CreditsRemaining)
			if resp.Metadata.TimedOut {
				m.TimeoutsTotal.Inc()
			}
		}

		return resp, err
	})
}

func status(resp *transaction.CompositeResponse, err error) string {
	switch {
	case errors.Is(err, faults.ErrTransport):
		return StatusTransport
	case err != nil:
		return StatusError
	case resp.Validate() != nil:
		return StatusInvalid
	}
	return StatusOK
}

// Handlers returns batch handlers that count results and failed stages.
func (m *Metrics) Handlers() batch.Handlers {
	return batch.OnResult(func(_ context.Context, r batch.Result) error {
		m.ResultsTotal.WithLabelValues(string(r.Kind)).Inc()

		switch r.Kind {
		case batch.ResultPartialSuccess:
			m.StageFailuresTotal.WithLabelValues(string(r.FailedStage)).Inc()
		case batch.ResultError:
			if batch.Submitted(r.Error) {
				m.StageFailuresTotal.WithLabelValues(string(transaction.StageParsing)).Inc()
			}
		}

		return nil
	})
}

// WriteTextfile writes everything gathered by g to path in the text
// exposition format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
