// Package client submits composite parse transactions to the remote parsing
// service over HTTP and converts its replies into transaction responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/transaction"
)

// Header names carrying account credentials.
const (
	HeaderAccountID  = "Tx-AccountId"
	HeaderServiceKey = "Tx-ServiceKey"
)

var endpoints = map[transaction.Kind]string{
	transaction.KindResume: "/parser/resume",
	transaction.KindJob:    "/parser/joborder",
}

// Client is a transaction.Processor backed by the parsing service.
type Client struct {
	baseURL    string
	accountID  string
	serviceKey string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ transaction.Processor = (*Client)(nil)

// New creates a client from a finalized Config. A zero RequestsPerSecond
// leaves requests unthrottled.
func New(cfg *Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountID:  cfg.AccountID,
		serviceKey: cfg.ServiceKey,
		http:       &http.Client{Timeout: cfg.TimeoutDuration()},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("system", "client"),
	}
}

// Submit sends req and returns the service's composite response.
//
// Authentication, quota and server failures, network errors and unreadable
// bodies are returned as errors wrapping faults.ErrTransport. A rejection
// that the service attributes to the document itself comes back as a
// response with a failed parsing stage.
func (c *Client) Submit(ctx context.Context, req *transaction.Request) (*transaction.CompositeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(newParseRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", faults.ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoints[req.Kind], bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", faults.ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderAccountID, c.accountID)
	httpReq.Header.Set(HeaderServiceKey, c.serviceKey)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", faults.ErrTransport, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", faults.ErrTransport, err)
	}

	c.logger.DebugContext(
		ctx, "transaction returned",
		"kind", req.Kind,
		"status", httpResp.StatusCode,
		"elapsed", time.Since(start),
	)

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if httpResp.StatusCode == http.StatusOK {
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: decode response: %w", faults.ErrTransport, decodeErr)
		}
		return env.compositeResponse(req.Kind), nil
	}

	if decodeErr == nil && env.Info.Code != "" && isDocumentRejection(httpResp.StatusCode) {
		return env.documentFailure(), nil
	}

	apiErr := &APIError{
		StatusCode: httpResp.StatusCode,
		Code:       env.Info.Code,
		Message:    env.Info.Message,
	}
	if decodeErr != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	apiErr.TransactionID = env.Info.TransactionID

	return nil, apiErr
}

// isDocumentRejection reports whether status is a client error the service
// uses for bad input rather than for credentials or quota.
func isDocumentRejection(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}
