package dto

import "time"

// ─── Filter / List ──────────────────────────────────────────────────────────

type TerminalFilter struct {
	TenantID string `form:"tenantId"`
	PosID    string `form:"posId"`
	Status   string `form:"status" validate:"omitempty,oneof=ENROLLED ACTIVE SUSPENDED RETIRED"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TerminalListResponse struct {
	Data  []TerminalResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EnrollTerminalRequest struct {
	TenantID     string   `json:"tenantId"     validate:"required"`
	PosID        *string  `json:"posId"`
	SerialNumber string   `json:"serialNumber" validate:"required,max=64"`
	Imei         *string  `json:"imei"         validate:"omitempty,numeric,len=15"`
	Manufacturer *string  `json:"manufacturer"`
	Model        *string  `json:"model"`
	OsVersion    *string  `json:"osVersion"`
	AppVersion   *string  `json:"appVersion"`
	MdmProvider  *string  `json:"mdmProvider"`
	MdmDeviceID  *string  `json:"mdmDeviceId"`
	Tags         []string `json:"tags"`
}

// UpdateTerminalRequest follows PATCH semantics: nil means "leave as is".
// Serial number and IMEI are immutable and have no field here.
type UpdateTerminalRequest struct {
	PosID        *string  `json:"posId"`
	Manufacturer *string  `json:"manufacturer"`
	Model        *string  `json:"model"`
	OsVersion    *string  `json:"osVersion"`
	AppVersion   *string  `json:"appVersion"`
	MdmProvider  *string  `json:"mdmProvider"`
	MdmDeviceID  *string  `json:"mdmDeviceId"`
	Tags         []string `json:"tags"`
}

type HeartbeatRequest struct {
	CapturedAt     *time.Time `json:"capturedAt"`
	NetworkType    *string    `json:"networkType"`
	IPAddress      *string    `json:"ipAddress"   validate:"omitempty,ip"`
	BatteryPercent *int       `json:"batteryPercent" validate:"omitempty,min=0,max=100"`
	Charging       *bool      `json:"charging"`
	OsVersion      *string    `json:"osVersion"`
	AppVersion     *string    `json:"appVersion"`
	MdmCompliant   *bool      `json:"mdmCompliant"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TerminalResponse struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenantId"`
	PosID        *string  `json:"posId,omitempty"`
	Status       string   `json:"status"`
	SerialNumber string   `json:"serialNumber"`
	Imei         *string  `json:"imei,omitempty"`
	Manufacturer *string  `json:"manufacturer,omitempty"`
	Model        *string  `json:"model,omitempty"`
	OsVersion    *string  `json:"osVersion,omitempty"`
	AppVersion   *string  `json:"appVersion,omitempty"`
	MdmProvider  *string  `json:"mdmProvider,omitempty"`
	MdmDeviceID  *string  `json:"mdmDeviceId,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	LastSeenAt   *string  `json:"lastSeenAt,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// EnrollTerminalResponse carries the one-time device token the terminal
// presents on heartbeat, event and location ingestion.
type EnrollTerminalResponse struct {
	Terminal    TerminalResponse `json:"terminal"`
	DeviceToken string           `json:"deviceToken"`
}
