package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// InvoiceFilter is bound from the query string of GET /api/v1/invoices.
type InvoiceFilter struct {
	Status      string `form:"status"      validate:"omitempty,oneof=RECEIVED SUBMITTED_TO_DGI REJECTED CANCELLED"`
	InvoiceType string `form:"invoiceType" validate:"omitempty,oneof=SALE PURCHASE CREDIT_NOTE PROFORMA"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvoiceLineRequest struct {
	Description string          `json:"description" validate:"required"`
	Sku         *string         `json:"sku"         validate:"omitempty,max=64"`
	Unit        *string         `json:"unit"        validate:"omitempty,max=16"`
	Quantity    decimal.Decimal `json:"quantity"    validate:"required,min=0.001"`
	UnitPrice   decimal.Decimal `json:"unitPrice"   validate:"min=0"`
	VatRate     decimal.Decimal `json:"vatRate"     validate:"min=0,max=100"`
	Discount    decimal.Decimal `json:"discount"    validate:"min=0"`
}

// CreateInvoiceRequest is the draft body of POST /api/v1/invoices and the
// replacement body of PUT /api/v1/invoices/{id}.
type CreateInvoiceRequest struct {
	InvoiceType string `json:"invoiceType" validate:"required,oneof=SALE PURCHASE CREDIT_NOTE PROFORMA"`
	Template    string `json:"template"    validate:"required,oneof=B2B B2C B2F B2G"`
	Currency    string `json:"currency"    validate:"required,oneof=XOF EUR USD"`
	IsRne       bool   `json:"isRne"`
	Rne         string `json:"rne" validate:"required_if=IsRne true"`

	SellerTaxID       string `json:"sellerTaxId" validate:"required,ncc"`
	SellerName        string `json:"sellerName"  validate:"required"`
	SellerAddress     string `json:"sellerAddress"`
	SellerPointOfSale string `json:"sellerPointOfSale"` // empty falls back to FNE_POINT_OF_SALE
	SellerContact     string `json:"sellerContact"`

	BuyerTaxID   *string `json:"buyerTaxId" validate:"omitempty,ncc"`
	BuyerName    string  `json:"buyerName"  validate:"required"`
	BuyerAddress string  `json:"buyerAddress"`
	BuyerPhone   string  `json:"buyerPhone"`
	BuyerEmail   string  `json:"buyerEmail" validate:"omitempty,email"`

	PaymentMethod     string          `json:"paymentMethod" validate:"required"`
	OtherTaxes        decimal.Decimal `json:"otherTaxes"    validate:"min=0"`
	CommercialMessage *string         `json:"commercialMessage"`

	Lines []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type RefundLineRequest struct {
	LineID   int64           `json:"lineId"   validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required,min=0.001"`
}

type RefundInvoiceRequest struct {
	Items  []RefundLineRequest `json:"items"  validate:"required,min=1,dive"`
	Reason *string             `json:"reason"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceLineResponse struct {
	ID          int64           `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Sku         *string         `json:"sku,omitempty"`
	Unit        *string         `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	VatRate     decimal.Decimal `json:"vatRate"`
	Discount    decimal.Decimal `json:"discount"`
	VatAmount   decimal.Decimal `json:"vatAmount"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	FneItemID   *string         `json:"fneItemId,omitempty"`
}

type InvoiceResponse struct {
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceType   string `json:"invoiceType"`
	Template      string `json:"template"`
	Currency      string `json:"currency"`
	IsRne         bool   `json:"isRne"`
	Rne           string `json:"rne,omitempty"`

	SellerTaxID       string `json:"sellerTaxId"`
	SellerName        string `json:"sellerName"`
	SellerAddress     string `json:"sellerAddress,omitempty"`
	SellerPointOfSale string `json:"sellerPointOfSale,omitempty"`
	SellerContact     string `json:"sellerContact,omitempty"`

	BuyerTaxID   *string `json:"buyerTaxId,omitempty"`
	BuyerName    string  `json:"buyerName"`
	BuyerAddress string  `json:"buyerAddress,omitempty"`
	BuyerPhone   string  `json:"buyerPhone,omitempty"`
	BuyerEmail   string  `json:"buyerEmail,omitempty"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalVat      decimal.Decimal `json:"totalVat"`
	OtherTaxes    decimal.Decimal `json:"otherTaxes"`
	StampTax      decimal.Decimal `json:"stampTax"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalToPay    decimal.Decimal `json:"totalToPay"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`

	PaymentMethod     string  `json:"paymentMethod"`
	CommercialMessage *string `json:"commercialMessage,omitempty"`

	Status         string  `json:"status"`
	FneInvoiceID   *string `json:"fneInvoiceId,omitempty"`
	FneReference   *string `json:"fneReference,omitempty"`
	FneToken       *string `json:"fneToken,omitempty"`
	IssueDate      string  `json:"issueDate"`
	DgiSubmittedAt *string `json:"dgiSubmittedAt,omitempty"`

	Lines []InvoiceLineResponse `json:"lines"`
}

// RefundInvoiceResponse mirrors the DGI refund acknowledgement plus the
// cancelled invoice as stored.
type RefundInvoiceResponse struct {
	Ncc       string          `json:"ncc"`
	Reference string          `json:"reference"`
	Token     string          `json:"token,omitempty"`
	Invoice   InvoiceResponse `json:"invoice"`
}
