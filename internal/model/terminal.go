package model

import (
	"time"

	"github.com/google/uuid"
)

// Terminal lifecycle states. ENROLLED↔ACTIVE, ENROLLED↔SUSPENDED and
// ACTIVE↔SUSPENDED are the legal transitions; RETIRED is terminal.
const (
	TerminalEnrolled  = "ENROLLED"
	TerminalActive    = "ACTIVE"
	TerminalSuspended = "SUSPENDED"
	TerminalRetired   = "RETIRED"
)

// Terminal is a physical point-of-sale device that emits receipts.
// SerialNumber and IMEI are immutable after enrollment.
type Terminal struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID string    `gorm:"index;not null"`
	PosID    *string   `gorm:"column:pos_id;index"`
	Status   string    `gorm:"type:varchar(12);not null;index"`

	SerialNumber string  `gorm:"uniqueIndex;not null"`
	Imei         *string `gorm:"column:imei"`
	Manufacturer *string
	Model        *string
	OsVersion    *string `gorm:"column:os_version"`
	AppVersion   *string

	MdmProvider *string `gorm:"column:mdm_provider"`
	MdmDeviceID *string `gorm:"column:mdm_device_id"`

	Tags []string `gorm:"serializer:json;type:jsonb"`

	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Terminal) TableName() string { return "terminals" }
