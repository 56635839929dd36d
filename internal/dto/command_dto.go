package dto

import "encoding/json"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCommandRequest struct {
	Type        string          `json:"type"        validate:"required,max=64"`
	Payload     json.RawMessage `json:"payload"`
	RequestedBy string          `json:"requestedBy" validate:"required,max=128"`
}

// UpdateCommandRequest is the PATCH body for command lifecycle progression.
// Status moves must follow the command DAG; error fields are only meaningful
// together with FAILED or CANCELED.
type UpdateCommandRequest struct {
	Status       *string `json:"status" validate:"omitempty,oneof=QUEUED ACKED RUNNING SUCCEEDED FAILED CANCELED"`
	ErrorCode    *string `json:"errorCode"    validate:"omitempty,max=64"`
	ErrorMessage *string `json:"errorMessage" validate:"omitempty,max=512"`
}

type CommandFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=QUEUED ACKED RUNNING SUCCEEDED FAILED CANCELED"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CommandResponse struct {
	ID             string          `json:"id"`
	TerminalID     string          `json:"terminalId"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	RequestedBy    string          `json:"requestedBy"`
	AcknowledgedAt *string         `json:"acknowledgedAt,omitempty"`
	CompletedAt    *string         `json:"completedAt,omitempty"`
	ErrorCode      *string         `json:"errorCode,omitempty"`
	ErrorMessage   *string         `json:"errorMessage,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

type CommandListResponse struct {
	Data  []CommandResponse `json:"data"`
	Total int64             `json:"total"`
}
