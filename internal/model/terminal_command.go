package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Command lifecycle states. Transitions form a DAG:
//
//	QUEUED → ACKED → RUNNING → SUCCEEDED | FAILED
//	QUEUED/ACKED/RUNNING → CANCELED
//
// Once in a final state the status may not change (idempotent same-value
// updates are allowed).
const (
	CommandQueued    = "QUEUED"
	CommandAcked     = "ACKED"
	CommandRunning   = "RUNNING"
	CommandSucceeded = "SUCCEEDED"
	CommandFailed    = "FAILED"
	CommandCanceled  = "CANCELED"
)

// TerminalCommand is an administrator-initiated instruction routed to a
// terminal (reboot, config push, log pull, …).
type TerminalCommand struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TerminalID uuid.UUID `gorm:"type:uuid;index;not null"`

	CommandType string          `gorm:"type:varchar(50);not null"`
	Status      string          `gorm:"type:varchar(12);not null;index"`
	Payload     json.RawMessage `gorm:"type:jsonb"`
	RequestedBy string

	AcknowledgedAt *time.Time
	CompletedAt    *time.Time
	ErrorCode      *string
	ErrorMessage   *string

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (TerminalCommand) TableName() string { return "terminal_commands" }

// IsFinalCommandStatus reports whether s is one of the terminal states of
// the command DAG.
func IsFinalCommandStatus(s string) bool {
	return s == CommandSucceeded || s == CommandFailed || s == CommandCanceled
}

// commandEdges enumerates the legal non-identity transitions.
var commandEdges = map[string][]string{
	CommandQueued:  {CommandAcked, CommandCanceled},
	CommandAcked:   {CommandRunning, CommandCanceled},
	CommandRunning: {CommandSucceeded, CommandFailed, CommandCanceled},
}

// CanTransitionCommand reports whether from → to is a legal edge.
// Identity transitions are always allowed.
func CanTransitionCommand(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range commandEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}
