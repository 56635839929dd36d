package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Well-known event types. The column is free-form so devices can report
// types the backend does not know yet.
const (
	EventHeartbeat = "HEARTBEAT"
	EventBoot      = "BOOT"
	EventCrash     = "CRASH"
	EventAlarm     = "ALARM"
)

// TerminalEvent is an append-only telemetry record. No update or delete is
// ever exposed on this table.
type TerminalEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TerminalID uuid.UUID `gorm:"type:uuid;index:idx_terminal_events_captured,priority:1;not null"`
	EventType  string    `gorm:"type:varchar(30);not null"`
	CapturedAt time.Time `gorm:"index:idx_terminal_events_captured,priority:2,sort:desc;not null"`

	NetworkType    *string `gorm:"type:varchar(20)"`
	IpAddress      *string `gorm:"column:ip_address"`
	BatteryLevel   *int
	Charging       *bool
	OsVersion      *string `gorm:"column:os_version"`
	AppVersion     *string
	MdmCompliant   *bool           `gorm:"column:mdm_compliant"`
	Payload        json.RawMessage `gorm:"type:jsonb"`

	CreatedAt time.Time
}

func (TerminalEvent) TableName() string { return "terminal_events" }
