package infrastructure_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/textkernel/tx-go/internal/config"
	"github.com/textkernel/tx-go/internal/infrastructure"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		wantJSON  bool
		wantDebug bool
	}{
		{"text info", config.LoggingConfig{Level: "info", Format: "text"}, false, false},
		{"json debug", config.LoggingConfig{Level: "debug", Format: "json"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := infrastructure.NewLogger(&tt.cfg, &buf)

			logger.Debug("hello", "k", "v")
			if got := buf.Len() > 0; got != tt.wantDebug {
				t.Errorf("debug written = %v, want %v", got, tt.wantDebug)
			}

			buf.Reset()
			logger.Info("hello", "k", "v")
			line := strings.TrimSpace(buf.String())
			if tt.wantJSON != json.Valid([]byte(line)) {
				t.Errorf("output %q, want json %v", line, tt.wantJSON)
			}
		})
	}
}

func TestNewMinimal(t *testing.T) {
	t.Setenv("TX_CLIENT_ACCOUNT_ID", "acct")
	t.Setenv("TX_CLIENT_SERVICE_KEY", "key")
	t.Setenv(config.EnvMetricsEnabled, "true")
	t.Setenv(config.EnvMetricsTextfile, "/tmp/tx.prom")

	cfg, err := config.LoadFrom(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	infra, err := infrastructure.New(cfg, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Processor == nil || infra.Metrics == nil || infra.Registry == nil {
		t.Errorf("New() = %+v, want processor and metrics", infra)
	}
	if infra.Database != nil || infra.Storage != nil {
		t.Error("New() built disabled systems")
	}

	if err := infra.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := infra.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
