// Package dgi talks to the DGI FNE signing API. It exposes one Client
// interface with a live HTTP implementation (retry, backoff, error
// classification) and a mock producing synthetic identifiers for local use.
package dgi

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Client submits signing and refund requests to the tax authority.
// Implementations must be safe for concurrent use and must not reorder
// requests; every call is synchronous from the caller's viewpoint.
type Client interface {
	SignInvoice(ctx context.Context, req *SignRequest) (*SignResponse, error)
	CreateRefund(ctx context.Context, fneInvoiceID string, req *RefundRequest) (*RefundResponse, error)
}

// RetryConfig controls the exponential backoff applied to server-class and
// transport failures. Client-class (4xx) responses are never retried.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// Config holds the live client settings. Values come from external
// configuration; only the timeout and retry knobs carry defaults.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   RetryConfig
}

// Backoff returns the wait before the given retry (attempt is 1-based:
// attempt 1 is the first retry). wait = min(max, initial·multiplier^(n−1)).
func (r RetryConfig) Backoff(attempt int) time.Duration {
	wait := float64(r.InitialInterval)
	for i := 1; i < attempt; i++ {
		wait *= r.Multiplier
	}
	if max := float64(r.MaxInterval); wait > max {
		wait = max
	}
	return time.Duration(wait)
}

// ── Wire types ───────────────────────────────────────────────────────────────

// SignRequest is the outbound payload for POST /external/invoices/sign.
// Extensions carries forward-compatible scalar fields the DGI may add.
type SignRequest struct {
	InvoiceType         string            `json:"invoiceType"`
	PaymentMethod       string            `json:"paymentMethod"`
	Template            string            `json:"template"`
	IsRne               bool              `json:"isRne"`
	Rne                 string            `json:"rne,omitempty"`
	ClientNcc           string            `json:"clientNcc,omitempty"`
	ClientCompanyName   string            `json:"clientCompanyName"`
	ClientPhone         string            `json:"clientPhone,omitempty"`
	ClientEmail         string            `json:"clientEmail,omitempty"`
	Establishment       string            `json:"establishment"`
	PointOfSale         string            `json:"pointOfSale"`
	ForeignCurrency     string            `json:"foreignCurrency,omitempty"`
	ForeignCurrencyRate *decimal.Decimal  `json:"foreignCurrencyRate,omitempty"`
	CommercialMessage   string            `json:"commercialMessage,omitempty"`
	Items               []SignItem        `json:"items"`
	Extensions          map[string]string `json:"extensions,omitempty"`
}

type SignItem struct {
	Reference       string          `json:"reference,omitempty"`
	Taxes           []string        `json:"taxes"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Amount          decimal.Decimal `json:"amount"`
	Discount        decimal.Decimal `json:"discount,omitempty"`
	MeasurementUnit string          `json:"measurementUnit,omitempty"`
}

// SignResponse is the DGI answer. Invoice.Items is positionally aligned to
// the request item list.
type SignResponse struct {
	Ncc          string           `json:"ncc"`
	Reference    string           `json:"reference"`
	Token        string           `json:"token"`
	Warning      bool             `json:"warning,omitempty"`
	BalanceFunds int              `json:"balanceFunds,omitempty"`
	Invoice      *SignedInvoice   `json:"invoice"`
}

type SignedInvoice struct {
	ID         string          `json:"id"`
	Reference  string          `json:"reference"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	TotalTaxes decimal.Decimal `json:"totalTaxes"`
	Items      []SignedItem    `json:"items"`
}

type SignedItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// RefundRequest targets items of a previously signed invoice by their
// DGI-assigned UUIDs.
type RefundRequest struct {
	Items []RefundItem `json:"items"`
}

type RefundItem struct {
	ID       string          `json:"id"`
	Quantity decimal.Decimal `json:"quantity"`
}

type RefundResponse struct {
	Ncc          string `json:"ncc"`
	Reference    string `json:"reference"`
	Token        string `json:"token"`
	BalanceFunds int    `json:"balanceFunds,omitempty"`
}

// ── Error classification ─────────────────────────────────────────────────────

// NetworkError covers transport failures and timeouts. Retryable.
type NetworkError struct{ Err error }

func (e *NetworkError) Error() string { return "dgi: network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is an upstream 5xx. Retried up to the budget; the last
// attempt's status and body are surfaced.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string { return fmt.Sprintf("dgi: server error %d", e.Status) }

// ClientError is an upstream 4xx — the request data is at fault; never
// retried.
type ClientError struct {
	Status int
	Body   string
}

func (e *ClientError) Error() string { return fmt.Sprintf("dgi: client error %d", e.Status) }

// InvalidResponseError is a 2xx whose body lacks the invoice object. Not
// retryable; the raw body is kept for diagnosis.
type InvalidResponseError struct{ Body string }

func (e *InvalidResponseError) Error() string { return "dgi: invalid response body" }
