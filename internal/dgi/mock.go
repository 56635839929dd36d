package dgi

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MockClient simulates the DGI FNE API with synthetic identifiers so the
// full submission flow runs without the live endpoint. Selected with
// DGI_MOCK=true (the default).
type MockClient struct {
	ncc string
}

func NewMockClient(ncc string) *MockClient {
	if ncc == "" {
		ncc = "2505842N"
	}
	return &MockClient{ncc: ncc}
}

func (m *MockClient) SignInvoice(_ context.Context, req *SignRequest) (*SignResponse, error) {
	invoiceID := uuid.NewString()
	reference := mockReference()

	items := make([]SignedItem, len(req.Items))
	total := decimal.Zero
	taxes := decimal.Zero
	for i, it := range req.Items {
		amount := it.Amount.Mul(it.Quantity).Sub(it.Discount)
		items[i] = SignedItem{
			ID:          uuid.NewString(),
			Description: it.Description,
			Quantity:    it.Quantity,
			Amount:      amount,
		}
		total = total.Add(amount)
		if len(it.Taxes) > 0 {
			taxes = taxes.Add(amount.Mul(decimal.NewFromInt(18)).Div(decimal.NewFromInt(100)).Round(2))
		}
	}

	log.Info().
		Str("reference", reference).
		Str("invoice_id", invoiceID).
		Msg("dgi: signed invoice (mock)")

	return &SignResponse{
		Ncc:       m.ncc,
		Reference: reference,
		Token:     "https://fne.dgi.gouv.ci/verify/" + invoiceID,
		Invoice: &SignedInvoice{
			ID:         invoiceID,
			Reference:  reference,
			Type:       req.InvoiceType,
			Status:     "signed",
			Date:       time.Now().UTC().Format(time.RFC3339),
			Amount:     total,
			TotalTaxes: taxes,
			Items:      items,
		},
	}, nil
}

func (m *MockClient) CreateRefund(_ context.Context, fneInvoiceID string, req *RefundRequest) (*RefundResponse, error) {
	reference := "AVR-" + mockReference()
	log.Info().
		Str("invoice_id", fneInvoiceID).
		Int("items", len(req.Items)).
		Str("reference", reference).
		Msg("dgi: refund created (mock)")

	return &RefundResponse{
		Ncc:       m.ncc,
		Reference: reference,
		Token:     "https://fne.dgi.gouv.ci/verify/" + uuid.NewString(),
	}, nil
}

func mockReference() string {
	return "DGI-REF-" + strings.ToUpper(uuid.NewString()[:8])
}
