// Package archive uploads parsed payloads to blob storage as batch results
// arrive.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/formatting"
	"github.com/textkernel/tx-go/pkg/storage"
	"github.com/textkernel/tx-go/pkg/transaction"
)

const contentType = "application/json"

// ErrExists is returned when a run already holds a record for a document id.
var ErrExists = errors.New("archive record already exists")

// Record is the JSON document stored per usable result.
type Record struct {
	Run         string                 `json:"run"`
	File        string                 `json:"file"`
	DocumentID  string                 `json:"document_id"`
	Result      batch.ResultKind       `json:"result"`
	FailedStage transaction.Stage      `json:"failed_stage,omitempty"`
	Error       *transaction.ErrorInfo `json:"error,omitempty"`
	Info        transaction.Info       `json:"info"`
	Metadata    transaction.Metadata   `json:"metadata"`
	Payload     *transaction.Payload   `json:"payload"`
}

// Archiver writes one Record per successful or partially successful result.
type Archiver struct {
	store  storage.System
	prefix string
	logger *slog.Logger
}

// New creates an Archiver writing under prefix.
func New(store storage.System, prefix string, logger *slog.Logger) *Archiver {
	return &Archiver{
		store:  store,
		prefix: prefix,
		logger: logger.With("system", "archive"),
	}
}

// Key returns the blob key for documentID in run.
func (a *Archiver) Key(run, documentID string) string {
	return path.Join(a.prefix, run, documentID+".json")
}

// Handlers returns batch handlers that archive usable payloads for run.
// Hard failures carry no payload and are not archived.
func (a *Archiver) Handlers(run string) batch.Handlers {
	return batch.Handlers{
		OnSuccess: func(ctx context.Context, file, documentID string, resp *transaction.CompositeResponse) error {
			return a.put(ctx, newRecord(run, batch.Result{
				Kind:       batch.ResultSuccess,
				File:       file,
				DocumentID: documentID,
				Response:   resp,
			}))
		},
		OnPartialSuccess: func(
			ctx context.Context,
			file, documentID string,
			resp *transaction.CompositeResponse,
			stage transaction.Stage,
			info transaction.ErrorInfo,
		) error {
			return a.put(ctx, newRecord(run, batch.Result{
				Kind:        batch.ResultPartialSuccess,
				File:        file,
				DocumentID:  documentID,
				Response:    resp,
				FailedStage: stage,
				Error:       info,
			}))
		},
	}
}

func newRecord(run string, r batch.Result) Record {
	rec := Record{
		Run:         run,
		File:        r.File,
		DocumentID:  r.DocumentID,
		Result:      r.Kind,
		FailedStage: r.FailedStage,
	}
	if r.Kind == batch.ResultPartialSuccess {
		info := r.Error
		rec.Error = &info
	}
	if resp := r.Response; resp != nil {
		rec.Info = resp.Info
		rec.Metadata = resp.Metadata
		rec.Payload = resp.Payload
	}
	return rec
}

func (a *Archiver) put(ctx context.Context, rec Record) error {
	key := a.Key(rec.Run, rec.DocumentID)

	exists, err := a.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("archive %s: %w", rec.File, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record for %s: %w", rec.File, err)
	}

	if err := a.store.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("archive %s: %w", rec.File, err)
	}

	a.logger.DebugContext(ctx, "payload archived", "key", key, "size", formatting.FormatSize(int64(len(data))))
	return nil
}
