package dgi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AngeYobo/oxalio/internal/infra"
)

// HTTPClient is the live DGI FNE client. It signs requests with the bearer
// API key, retries server-class and transport failures with exponential
// backoff, and classifies every failure into the dgi error family. An
// optional circuit breaker fast-fails while the upstream is known down;
// a rejected call surfaces as a NetworkError so callers keep their
// retry-later semantics.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	cb         *infra.CircuitBreaker
}

// NewHTTPClient builds a live client. cb may be nil to disable the breaker.
func NewHTTPClient(cfg Config, cb *infra.CircuitBreaker) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 2 * time.Second,
			Multiplier:      2.0,
			MaxInterval:     10 * time.Second,
		}
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
	}
}

func (c *HTTPClient) SignInvoice(ctx context.Context, req *SignRequest) (*SignResponse, error) {
	url := c.cfg.BaseURL + "/external/invoices/sign"

	var resp SignResponse
	if err := c.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	if resp.Invoice == nil || resp.Invoice.ID == "" {
		raw, _ := json.Marshal(resp)
		log.Error().Str("body", string(raw)).Msg("dgi: 2xx response without invoice object")
		return nil, &InvalidResponseError{Body: string(raw)}
	}
	log.Info().
		Str("reference", resp.Reference).
		Int("balance_funds", resp.BalanceFunds).
		Msg("dgi: invoice signed")
	return &resp, nil
}

func (c *HTTPClient) CreateRefund(ctx context.Context, fneInvoiceID string, req *RefundRequest) (*RefundResponse, error) {
	url := fmt.Sprintf("%s/external/invoices/%s/refund", c.cfg.BaseURL, fneInvoiceID)

	var resp RefundResponse
	if err := c.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	log.Info().Str("reference", resp.Reference).Msg("dgi: refund created")
	return &resp, nil
}

// post runs one POST with the retry budget. Only *ServerError and
// *NetworkError are retried; anything else returns immediately.
func (c *HTTPClient) post(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("dgi: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.cfg.Retry.Backoff(attempt - 1)
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", wait).
				Err(lastErr).
				Msg("dgi: retrying request")
			select {
			case <-ctx.Done():
				return &NetworkError{Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		lastErr = c.doOnce(ctx, url, payload, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func retryable(err error) bool {
	switch err.(type) {
	case *ServerError, *NetworkError:
		return true
	}
	return false
}

// doOnce performs a single attempt through the circuit breaker.
func (c *HTTPClient) doOnce(ctx context.Context, url string, payload []byte, out interface{}) error {
	if c.cb == nil {
		return c.exchange(ctx, url, payload, out)
	}

	var attemptErr error
	cbErr := c.cb.Execute(func() error {
		attemptErr = c.exchange(ctx, url, payload, out)
		// 4xx and malformed bodies are caller problems, not upstream
		// health — they must not trip the breaker.
		if attemptErr != nil && retryable(attemptErr) {
			return attemptErr
		}
		return nil
	})
	if cbErr == infra.ErrCircuitOpen {
		return &NetworkError{Err: cbErr}
	}
	return attemptErr
}

func (c *HTTPClient) exchange(ctx context.Context, url string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &NetworkError{Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return &ServerError{Status: resp.StatusCode, Body: string(raw)}
	case resp.StatusCode >= 400:
		return &ClientError{Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &InvalidResponseError{Body: string(raw)}
	}
	return nil
}
