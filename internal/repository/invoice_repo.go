package repository

import (
	"context"
	"fmt"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id int64) (*model.Invoice, error)
	// FindByIDForUpdate takes the row lock that serializes update, submit and
	// refund on a single invoice. Must run inside tx.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Invoice, error)
	FindByNumber(ctx context.Context, number string) (*model.Invoice, error)
	FindByFneID(ctx context.Context, fneInvoiceID string) (*model.Invoice, error)
	FindByFneReference(ctx context.Context, reference string) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	Save(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	ReplaceLines(ctx context.Context, tx *gorm.DB, inv *model.Invoice, lines []model.InvoiceLine) error
	Delete(ctx context.Context, id int64) error
	// NextInvoiceNumber allocates the next rank for the given UTC year.
	// Gaps on rollback are acceptable, duplicates are not.
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB, year int) (string, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id int64) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Invoice, error) {
	var inv model.Invoice
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	// Lines are loaded separately: FOR UPDATE cannot be combined with the
	// preload join and only the invoice row needs the lock.
	err = tx.WithContext(ctx).
		Where("invoice_id = ?", id).Order("position ASC").
		Find(&inv.Lines).Error
	return &inv, err
}

func (r *invoiceRepo) FindByNumber(ctx context.Context, number string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("invoice_number = ?", number).
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) FindByFneID(ctx context.Context, fneInvoiceID string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("fne_invoice_id = ?", fneInvoiceID).
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) FindByFneReference(ctx context.Context, reference string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("fne_reference = ?", reference).
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.InvoiceType != "" {
		q = q.Where("invoice_type = ?", filter.InvoiceType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepo) Save(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Omit("Lines").Save(inv).Error
}

// ReplaceLines swaps the full line set of a draft atomically within tx.
func (r *invoiceRepo) ReplaceLines(ctx context.Context, tx *gorm.DB, inv *model.Invoice, lines []model.InvoiceLine) error {
	if err := tx.WithContext(ctx).
		Where("invoice_id = ?", inv.ID).
		Delete(&model.InvoiceLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].InvoiceID = inv.ID
	}
	if err := tx.WithContext(ctx).Create(&lines).Error; err != nil {
		return err
	}
	inv.Lines = lines
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Select("Lines").Delete(&model.Invoice{ID: id}).Error
}

func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB, year int) (string, error) {
	var value int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO invoice_counters (year, value) VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET value = invoice_counters.value + 1
		RETURNING value`, year).Scan(&value).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%06d", year, value), nil
}
