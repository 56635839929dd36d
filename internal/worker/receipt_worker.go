package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the normalized invoice
// PDF and chains an email job when the buyer left an address.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/infra"

	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID int64  `json:"invoice_id"`
	Email     string `json:"email,omitempty"`
}

// PdfAssembler projects a stored invoice into the renderer data contract.
// Satisfied by service.InvoiceService.
type PdfAssembler interface {
	AssemblePdfData(ctx context.Context, id int64) (*dto.PdfModel, error)
}

// ReceiptWorker renders invoice PDFs for jobs pulled off QueueReceipt.
type ReceiptWorker struct {
	assembler      PdfAssembler
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewReceiptWorker(assembler PdfAssembler, dispatcher *Dispatcher, pdfStoragePath string) *ReceiptWorker {
	return &ReceiptWorker{
		assembler:      assembler,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload from the job envelope
//  2. Assemble the PDF model from the stored invoice
//  3. Render the PDF (with retry, transient disk or assembly failures happen)
//  4. Chain an email job when the buyer email is known
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}

	var pdfPath string
	err := withRetry(ctx, 3, func(attempt int) error {
		m, err := w.assembler.AssemblePdfData(ctx, payload.InvoiceID)
		if err != nil {
			return err
		}
		path, err := infra.RenderInvoicePDF(m, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Int64("invoice_id", payload.InvoiceID).
				Msg("receipt_worker: render attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if err != nil {
		return fmt.Errorf("receipt_worker: render invoice %d: %w", payload.InvoiceID, err)
	}

	log.Info().Str("pdf", pdfPath).Int64("invoice_id", payload.InvoiceID).Msg("receipt_worker: PDF rendered")

	if payload.Email == "" {
		return nil
	}

	emailJob := EmailJobPayload{
		ToEmail: payload.Email,
		Subject: "Votre facture normalisee",
		Body:    "Veuillez trouver ci-joint votre facture normalisee electronique.",
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		return fmt.Errorf("receipt_worker: enqueue email for invoice %d: %w", payload.InvoiceID, err)
	}
	log.Info().Str("email", payload.Email).Int64("invoice_id", payload.InvoiceID).Msg("receipt_worker: email job enqueued")
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
