package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status values. The lifecycle is
// RECEIVED → SUBMITTED_TO_DGI → CANCELLED; a draft in RECEIVED may also be
// deleted. Any other transition is a conflict.
const (
	StatusReceived       = "RECEIVED"
	StatusSubmittedToDgi = "SUBMITTED_TO_DGI"
	StatusRejected       = "REJECTED"
	StatusCancelled      = "CANCELLED"
)

// Invoice types and templates accepted by the DGI.
const (
	TypeSale       = "SALE"
	TypePurchase   = "PURCHASE"
	TypeCreditNote = "CREDIT_NOTE"
	TypeProforma   = "PROFORMA"
)

// Invoice is the aggregate root for a normalized electronic invoice (FNE).
// It exclusively owns its lines; DGI identifiers are written once after a
// successful submission and never mutated afterwards.
type Invoice struct {
	ID            int64  `gorm:"primaryKey"`
	InvoiceNumber string `gorm:"uniqueIndex;not null"` // INV-<YYYY>-<NNNNNN>
	InvoiceType   string `gorm:"type:varchar(20);not null"`
	Template      string `gorm:"type:varchar(10);not null"` // B2B | B2C | B2F | B2G
	Currency      string `gorm:"type:varchar(3);not null"`
	IsRne         bool   `gorm:"not null;default:false"`
	Rne           *string

	// Seller snapshot (copied at creation, immutable)
	SellerTaxID       string `gorm:"type:varchar(16);column:seller_tax_id"`
	SellerName        string
	SellerAddress     string
	SellerPointOfSale string
	SellerContact     string

	// Buyer snapshot
	BuyerTaxID   *string `gorm:"type:varchar(16);column:buyer_tax_id"`
	BuyerName    string  `gorm:"not null"`
	BuyerAddress string
	BuyerPhone   string
	BuyerEmail   string

	// Totals — scale 2, currency minor unit
	Subtotal      decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	TotalVat      decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	OtherTaxes    decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0"`
	StampTax      decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	TotalToPay    decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0"`

	PaymentMethod     string `gorm:"type:varchar(30)"`
	CommercialMessage *string

	Status string `gorm:"type:varchar(20);not null;index"`

	// DGI identifiers — populated only after successful submission
	FneInvoiceID *string `gorm:"type:varchar(36);column:fne_invoice_id;index"`
	FneReference *string `gorm:"column:fne_reference;uniqueIndex"`
	FneToken     *string `gorm:"column:fne_token"`

	IssueDate      time.Time `gorm:"not null"`
	DgiSubmittedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceLine belongs to exactly one invoice. FneItemID is the UUID the DGI
// assigns to the line at submission; refunds target lines through it.
type InvoiceLine struct {
	ID        int64 `gorm:"primaryKey"`
	InvoiceID int64 `gorm:"index;not null"`
	Position  int   `gorm:"not null"`

	Description string `gorm:"type:varchar(512);not null"`
	Sku         *string
	Unit        *string `gorm:"type:varchar(16)"`

	Quantity  decimal.Decimal `gorm:"type:decimal(19,3);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	VatRate   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0"`
	VatAmount decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(19,2);not null"`

	FneItemID *string `gorm:"type:varchar(36);column:fne_item_id"`
}

func (InvoiceLine) TableName() string { return "invoice_lines" }

// IsFinal reports whether the invoice may no longer be edited or deleted.
func (i *Invoice) IsFinal() bool { return i.Status != StatusReceived }
