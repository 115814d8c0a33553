package storage_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/storage"
)

// Azurite's published development account.
const devConnectionString = "DefaultEndpointsProtocol=http;" +
	"AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr error
	}{
		{"results/run/doc.json", nil},
		{"", storage.ErrEmptyKey},
		{"  ", storage.ErrEmptyKey},
		{"results/../secrets", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := storage.ValidateKey(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
			if tt.wantErr != nil && !errors.Is(err, faults.ErrInvalidArgument) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, faults.ErrInvalidArgument)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_STORAGE_ENABLED", "true")
	env := &storage.Env{Enabled: "TEST_STORAGE_ENABLED"}

	tests := []struct {
		name    string
		cfg     storage.Config
		env     *storage.Env
		wantErr bool
	}{
		{"disabled needs nothing", storage.Config{}, nil, false},
		{"enabled by env without credentials", storage.Config{}, env, true},
		{"connection string", storage.Config{Enabled: true, ConnectionString: devConnectionString}, nil, false},
		{"account url", storage.Config{Enabled: true, AccountURL: "https://acct.blob.core.windows.net"}, nil, false},
		{"traversal prefix", storage.Config{Enabled: true, AccountURL: "https://x", Prefix: "../up"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.ContainerName == "" {
				t.Error("Finalize() left container_name empty")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{ContainerName: "base", Prefix: "results"}
	base.Merge(&storage.Config{Enabled: true, ContainerName: "overlay"})

	if !base.Enabled || base.ContainerName != "overlay" || base.Prefix != "results" {
		t.Errorf("Merge() = %+v", base)
	}
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	if _, err := storage.New(&storage.Config{}, logger); !errors.Is(err, storage.ErrDisabled) {
		t.Errorf("New(disabled) error = %v, want %v", err, storage.ErrDisabled)
	}

	cfg := &storage.Config{Enabled: true, ConnectionString: devConnectionString}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	sys, err := storage.New(cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = sys.Upload(context.Background(), "", strings.NewReader("{}"), "application/json")
	if !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("Upload(empty key) error = %v, want %v", err, storage.ErrEmptyKey)
	}
	if _, err := sys.Exists(context.Background(), "a/../b"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Exists(traversal) error = %v, want %v", err, storage.ErrInvalidKey)
	}
}
