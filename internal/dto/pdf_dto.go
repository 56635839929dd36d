package dto

import "github.com/shopspring/decimal"

// PdfModel is the full data contract handed to the invoice renderer. It is
// assembled read-only from a stored invoice and carries everything the
// template needs, so the renderer never touches the database.

type PdfParty struct {
	TaxID   string `json:"taxId,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type PdfLine struct {
	Description string          `json:"description"`
	Sku         *string         `json:"sku,omitempty"`
	Unit        *string         `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	VatRate     decimal.Decimal `json:"vatRate"`
	Discount    decimal.Decimal `json:"discount"`
	VatAmount   decimal.Decimal `json:"vatAmount"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type PdfTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalVat   decimal.Decimal `json:"totalVat"`
	OtherTaxes decimal.Decimal `json:"otherTaxes"`
	StampTax   decimal.Decimal `json:"stampTax"`
	TotalToPay decimal.Decimal `json:"totalToPay"`
}

type PdfModel struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	FneReference  string    `json:"fneReference"` // DRAFT-<number> when unsubmitted
	IssueDate     string    `json:"issueDate"`
	Seller        PdfParty  `json:"seller"`
	Buyer         PdfParty  `json:"buyer"`
	Lines         []PdfLine `json:"lines"`
	Totals        PdfTotals `json:"totals"`
	Template      string    `json:"template"`
	IsRne         bool      `json:"isRne"`
	Rne           string    `json:"rne,omitempty"`
	PaymentMethod string    `json:"paymentMethod"`
	Currency      string    `json:"currency"`
	QrPayload     string    `json:"qrPayload"`
}
