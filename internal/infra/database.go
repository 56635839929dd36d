package infra

import (
	"fmt"

	"github.com/AngeYobo/oxalio/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express (partial indexes, descending composite indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surface unique-index violations as gorm.ErrDuplicatedKey so the
		// services can map them to 409 Conflict.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates or updates the schema. Also used by integration tests
// against a fresh container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Invoice{},
		&model.InvoiceLine{},
		&model.InvoiceCounter{},
		&model.Terminal{},
		&model.TerminalEvent{},
		&model.TerminalLocation{},
		&model.TerminalCommand{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle
// on its own. Each statement uses IF NOT EXISTS semantics so re-running on an
// already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Uniqueness on the DGI invoice id only applies once the invoice is signed.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_fne_invoice_id
		    ON invoices (fne_invoice_id)
		    WHERE fne_invoice_id IS NOT NULL`,
		// Event and location history are always read newest-first per terminal.
		`CREATE INDEX IF NOT EXISTS idx_terminal_events_terminal_captured
		    ON terminal_events (terminal_id, captured_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_terminal_locations_terminal_captured
		    ON terminal_locations (terminal_id, captured_at DESC)`,
		// The expiry cron scans only commands still waiting for an ack.
		`CREATE INDEX IF NOT EXISTS idx_terminal_commands_queued
		    ON terminal_commands (created_at)
		    WHERE status = 'QUEUED'`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
