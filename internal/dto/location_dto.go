package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LocationIngestRequest struct {
	CapturedAt     *time.Time `json:"capturedAt"`
	Source         string     `json:"source"    validate:"required,oneof=GPS NETWORK FUSED MANUAL"`
	Latitude       float64    `json:"latitude"  validate:"min=-90,max=90"`
	Longitude      float64    `json:"longitude" validate:"min=-180,max=180"`
	AccuracyMeters *float64   `json:"accuracyMeters" validate:"omitempty,min=0"`
	Provider       *string    `json:"provider"`
}

type LocationHistoryFilter struct {
	From  *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To    *time.Time `form:"to"   time_format:"2006-01-02T15:04:05Z07:00"`
	Limit int        `form:"limit,default=100" validate:"min=1,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LocationResponse struct {
	ID             string   `json:"id"`
	TerminalID     string   `json:"terminalId"`
	CapturedAt     string   `json:"capturedAt"`
	Source         string   `json:"source"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracyMeters,omitempty"`
	Provider       *string  `json:"provider,omitempty"`
}

type LocationListResponse struct {
	Data  []LocationResponse `json:"data"`
	Total int64              `json:"total"`
}
