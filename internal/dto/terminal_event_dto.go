package dto

import (
	"encoding/json"
	"time"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TerminalEventRequest struct {
	EventType      string          `json:"eventType" validate:"required,max=32"`
	CapturedAt     *time.Time      `json:"capturedAt"`
	NetworkType    *string         `json:"networkType"`
	IPAddress      *string         `json:"ipAddress" validate:"omitempty,ip"`
	BatteryPercent *int            `json:"batteryPercent" validate:"omitempty,min=0,max=100"`
	Charging       *bool           `json:"charging"`
	OsVersion      *string         `json:"osVersion"`
	AppVersion     *string         `json:"appVersion"`
	MdmCompliant   *bool           `json:"mdmCompliant"`
	Payload        json.RawMessage `json:"payload"`
}

type TerminalEventFilter struct {
	EventType string `form:"eventType"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TerminalEventResponse struct {
	ID             string          `json:"id"`
	TerminalID     string          `json:"terminalId"`
	EventType      string          `json:"eventType"`
	CapturedAt     string          `json:"capturedAt"`
	NetworkType    *string         `json:"networkType,omitempty"`
	IPAddress      *string         `json:"ipAddress,omitempty"`
	BatteryPercent *int            `json:"batteryPercent,omitempty"`
	Charging       *bool           `json:"charging,omitempty"`
	OsVersion      *string         `json:"osVersion,omitempty"`
	AppVersion     *string         `json:"appVersion,omitempty"`
	MdmCompliant   *bool           `json:"mdmCompliant,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type TerminalEventListResponse struct {
	Data  []TerminalEventResponse `json:"data"`
	Total int64                   `json:"total"`
}
