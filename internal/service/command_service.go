package service

import (
	"context"
	"time"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"
	"github.com/AngeYobo/oxalio/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CommandService interface {
	Create(ctx context.Context, terminalID uuid.UUID, req dto.CreateCommandRequest) (*dto.CommandResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CommandResponse, error)
	List(ctx context.Context, terminalID uuid.UUID, filter dto.CommandFilter) (*dto.CommandListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCommandRequest) (*dto.CommandResponse, error)
	// ExpireQueued cancels commands stuck in QUEUED since before cutoff and
	// returns how many were cancelled. Called by the expiry cron.
	ExpireQueued(ctx context.Context, cutoff time.Time) (int, error)
}

type commandService struct {
	repo         repository.TerminalCommandRepository
	terminalRepo repository.TerminalRepository
}

func NewCommandService(repo repository.TerminalCommandRepository, terminalRepo repository.TerminalRepository) CommandService {
	return &commandService{repo: repo, terminalRepo: terminalRepo}
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *commandService) Create(ctx context.Context, terminalID uuid.UUID, req dto.CreateCommandRequest) (*dto.CommandResponse, error) {
	t, err := s.terminalRepo.FindByID(ctx, terminalID)
	if err != nil {
		return nil, notFoundOr(err, "terminal", terminalID)
	}
	if t.Status == model.TerminalRetired {
		return nil, apierror.Conflictf("terminal %s is retired", t.SerialNumber)
	}

	c := &model.TerminalCommand{
		ID:          uuid.New(),
		TerminalID:  terminalID,
		CommandType: req.Type,
		Status:      model.CommandQueued,
		Payload:     req.Payload,
		RequestedBy: req.RequestedBy,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Info().
		Str("command_id", c.ID.String()).
		Str("terminal_id", terminalID.String()).
		Str("type", c.CommandType).
		Msg("command queued")

	return commandToResponse(c), nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *commandService) Get(ctx context.Context, id uuid.UUID) (*dto.CommandResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "command", id)
	}
	return commandToResponse(c), nil
}

func (s *commandService) List(ctx context.Context, terminalID uuid.UUID, filter dto.CommandFilter) (*dto.CommandListResponse, error) {
	if _, err := s.terminalRepo.FindByID(ctx, terminalID); err != nil {
		return nil, notFoundOr(err, "terminal", terminalID)
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	commands, total, err := s.repo.List(ctx, terminalID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CommandResponse, 0, len(commands))
	for i := range commands {
		items = append(items, *commandToResponse(&commands[i]))
	}
	return &dto.CommandListResponse{Data: items, Total: total}, nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// Status moves must follow the DAG. Changing a finalized status to a
// different value is a conflict; repeating the same value succeeds so
// at-least-once device reports stay idempotent.

func (s *commandService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCommandRequest) (*dto.CommandResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "command", id)
	}

	if req.Status != nil && *req.Status != c.Status {
		if !model.CanTransitionCommand(c.Status, *req.Status) {
			return nil, apierror.Conflictf("command %s cannot move from %s to %s", c.ID, c.Status, *req.Status)
		}
		now := time.Now().UTC()
		c.Status = *req.Status
		switch c.Status {
		case model.CommandAcked:
			c.AcknowledgedAt = &now
		case model.CommandSucceeded, model.CommandFailed, model.CommandCanceled:
			c.CompletedAt = &now
		}
	}
	if req.ErrorCode != nil {
		c.ErrorCode = req.ErrorCode
	}
	if req.ErrorMessage != nil {
		c.ErrorMessage = req.ErrorMessage
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return commandToResponse(c), nil
}

// ── Expiry ───────────────────────────────────────────────────────────────────

func (s *commandService) ExpireQueued(ctx context.Context, cutoff time.Time) (int, error) {
	commands, err := s.repo.FindExpiredQueued(ctx, cutoff, 100)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range commands {
		c := &commands[i]
		now := time.Now().UTC()
		code := "EXPIRED"
		msg := "command was never acknowledged before its TTL"
		c.Status = model.CommandCanceled
		c.CompletedAt = &now
		c.ErrorCode = &code
		c.ErrorMessage = &msg
		if err := s.repo.Save(ctx, c); err != nil {
			log.Error().Err(err).Str("command_id", c.ID.String()).Msg("failed to expire command")
			continue
		}
		expired++
	}
	if expired > 0 {
		log.Info().Int("count", expired).Msg("expired queued commands")
	}
	return expired, nil
}

func commandToResponse(c *model.TerminalCommand) *dto.CommandResponse {
	resp := &dto.CommandResponse{
		ID:           c.ID.String(),
		TerminalID:   c.TerminalID.String(),
		Type:         c.CommandType,
		Status:       c.Status,
		Payload:      c.Payload,
		RequestedBy:  c.RequestedBy,
		ErrorCode:    c.ErrorCode,
		ErrorMessage: c.ErrorMessage,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
	if c.AcknowledgedAt != nil {
		s := c.AcknowledgedAt.Format(time.RFC3339)
		resp.AcknowledgedAt = &s
	}
	if c.CompletedAt != nil {
		s := c.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}
