package infra

// pdf.go — FNE invoice rendering using go-pdf/fpdf.
// Renders an A4 invoice from the assembled PdfModel:
//   - seller / buyer blocks with tax ids
//   - invoice number, DGI reference, issue date
//   - line table (description, qty, unit price, VAT, discount, total)
//   - totals block with stamp tax and amount to pay
//   - QR code carrying the DGI verification token (or the draft payload)
//
// The output file is saved to storagePath/invoice_{number}.pdf.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AngeYobo/oxalio/internal/dto"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// RenderInvoicePDF writes the invoice PDF and returns its absolute path.
// The renderer only sees the PdfModel: it never touches the database.
func RenderInvoicePDF(m *dto.PdfModel, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("invoice_%s.pdf", m.InvoiceNumber))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "FACTURE NORMALISEE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Ref. DGI: %s", m.FneReference), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Invoice info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, m.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 6, fmt.Sprintf("Date: %s", m.IssueDate), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 5, fmt.Sprintf("Modele: %s", m.Template), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, fmt.Sprintf("Paiement: %s", m.PaymentMethod), "", 1, "R", false, 0, "")
	if m.IsRne {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("RNE: %s", m.Rne), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Parties ──────────────────────────────────────────────────────────────
	half := contentW / 2
	yStart := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half, 5, "Vendeur", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(half, 4, m.Seller.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(half, 4, "NCC: "+m.Seller.TaxID, "", 1, "L", false, 0, "")
	if m.Seller.Address != "" {
		pdf.CellFormat(half, 4, m.Seller.Address, "", 1, "L", false, 0, "")
	}
	yEnd := pdf.GetY()

	pdf.SetXY(15+half+5, yStart)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half-5, 5, "Client", "B", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(half-5, 4, m.Buyer.Name, "", 2, "L", false, 0, "")
	if m.Buyer.TaxID != "" {
		pdf.CellFormat(half-5, 4, "NCC: "+m.Buyer.TaxID, "", 2, "L", false, 0, "")
	}
	if m.Buyer.Address != "" {
		pdf.CellFormat(half-5, 4, m.Buyer.Address, "", 2, "L", false, 0, "")
	}
	if pdf.GetY() > yEnd {
		yEnd = pdf.GetY()
	}
	pdf.SetXY(15, yEnd+4)

	// ── Line table ───────────────────────────────────────────────────────────
	colDesc := contentW * 0.36
	colQty := contentW * 0.10
	colPrice := contentW * 0.15
	colVat := contentW * 0.10
	colDisc := contentW * 0.12
	colTotal := contentW * 0.17

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colDesc, 6, "Designation", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 6, "Qte", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colPrice, 6, "P.U.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colVat, 6, "TVA %", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colDisc, 6, "Remise", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range m.Lines {
		desc := l.Description
		if len(desc) > 38 {
			desc = desc[:37] + "…"
		}
		pdf.CellFormat(colDesc, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 5, l.Quantity.StringFixed(3), "", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 5, l.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colVat, 5, l.VatRate.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colDisc, 5, l.Discount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 5, l.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW - colTotal
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(labelW, 5, "Sous-total HT:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 5, m.Totals.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelW, 5, "TVA:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 5, m.Totals.TotalVat.StringFixed(2), "", 1, "R", false, 0, "")
	if !m.Totals.OtherTaxes.IsZero() {
		pdf.CellFormat(labelW, 5, "Autres taxes:", "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 5, m.Totals.OtherTaxes.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !m.Totals.StampTax.IsZero() {
		pdf.CellFormat(labelW, 5, "Timbre:", "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 5, m.Totals.StampTax.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 7, fmt.Sprintf("NET A PAYER (%s):", m.Currency), "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, m.Totals.TotalToPay.StringFixed(2), "", 1, "R", false, 0, "")

	// ── QR ───────────────────────────────────────────────────────────────────
	png, err := qrcode.Encode(m.QrPayload, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("pdf: encode qr: %w", err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("fne-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("fne-qr", 15, pdf.GetY()+4, 30, 30, false, opts, 0, "")
	pdf.SetXY(50, pdf.GetY()+14)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW-35, 4, "Scannez pour verifier aupres de la DGI", "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
