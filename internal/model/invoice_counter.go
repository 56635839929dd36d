package model

// InvoiceCounter backs invoice numbering. One row per UTC calendar year;
// Value is the last rank handed out. Rows are only ever touched through the
// atomic upsert in the invoice repository.
type InvoiceCounter struct {
	Year  int   `gorm:"primaryKey"`
	Value int64 `gorm:"not null"`
}

func (InvoiceCounter) TableName() string { return "invoice_counters" }
