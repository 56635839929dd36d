package model

import (
	"time"

	"github.com/google/uuid"
)

// Location fix sources.
const (
	SourceGPS     = "GPS"
	SourceNetwork = "NETWORK"
	SourceFused   = "FUSED"
	SourceManual  = "MANUAL"
)

// TerminalLocation is an append-only GPS fix. Retrieval is always
// capturedAt DESC per terminal.
type TerminalLocation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TerminalID uuid.UUID `gorm:"type:uuid;index:idx_terminal_locations_captured,priority:1;not null"`
	CapturedAt time.Time `gorm:"index:idx_terminal_locations_captured,priority:2,sort:desc;not null"`
	Source     string    `gorm:"type:varchar(10);not null"`

	Latitude       float64 `gorm:"not null"`
	Longitude      float64 `gorm:"not null"`
	AccuracyMeters *float64
	Provider       *string

	CreatedAt time.Time
}

func (TerminalLocation) TableName() string { return "terminal_locations" }
