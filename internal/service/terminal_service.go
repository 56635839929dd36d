package service

import (
	"context"
	"errors"
	"time"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/config"
	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"
	"github.com/AngeYobo/oxalio/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TerminalService interface {
	Enroll(ctx context.Context, req dto.EnrollTerminalRequest) (*dto.EnrollTerminalResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error)
	List(ctx context.Context, filter dto.TerminalFilter) (*dto.TerminalListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTerminalRequest) (*dto.TerminalResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error)
	Suspend(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error)
	Retire(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error)
	RecordHeartbeat(ctx context.Context, id uuid.UUID, req dto.HeartbeatRequest) error
	RecordEvent(ctx context.Context, id uuid.UUID, req dto.TerminalEventRequest) (*dto.TerminalEventResponse, error)
	ListEvents(ctx context.Context, id uuid.UUID, filter dto.TerminalEventFilter) (*dto.TerminalEventListResponse, error)
}

type terminalService struct {
	repo      repository.TerminalRepository
	eventRepo repository.TerminalEventRepository
	cfg       *config.Config
}

func NewTerminalService(repo repository.TerminalRepository, eventRepo repository.TerminalEventRepository, cfg *config.Config) TerminalService {
	return &terminalService{repo: repo, eventRepo: eventRepo, cfg: cfg}
}

// ── Enroll ───────────────────────────────────────────────────────────────────

func (s *terminalService) Enroll(ctx context.Context, req dto.EnrollTerminalRequest) (*dto.EnrollTerminalResponse, error) {
	if _, err := s.repo.FindBySerial(ctx, req.SerialNumber); err == nil {
		return nil, apierror.Conflictf("terminal with serial %s already enrolled", req.SerialNumber)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	t := &model.Terminal{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		PosID:        req.PosID,
		Status:       model.TerminalEnrolled,
		SerialNumber: req.SerialNumber,
		Imei:         req.Imei,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		OsVersion:    req.OsVersion,
		AppVersion:   req.AppVersion,
		MdmProvider:  req.MdmProvider,
		MdmDeviceID:  req.MdmDeviceID,
		Tags:         req.Tags,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		// Two devices enrolling the same serial can both pass the lookup
		// above; the unique index on serial_number settles the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflictf("terminal with serial %s already enrolled", req.SerialNumber)
		}
		return nil, err
	}

	token, err := s.issueDeviceToken(t)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("terminal_id", t.ID.String()).
		Str("serial", t.SerialNumber).
		Str("tenant", t.TenantID).
		Msg("terminal enrolled")

	return &dto.EnrollTerminalResponse{
		Terminal:    *terminalToResponse(t),
		DeviceToken: token,
	}, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *terminalService) Get(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return terminalToResponse(t), nil
}

func (s *terminalService) List(ctx context.Context, filter dto.TerminalFilter) (*dto.TerminalListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	terminals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TerminalResponse, 0, len(terminals))
	for i := range terminals {
		items = append(items, *terminalToResponse(&terminals[i]))
	}
	return &dto.TerminalListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// PATCH semantics: nil leaves the field untouched. Serial and IMEI are
// immutable and not part of the request type at all.

func (s *terminalService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTerminalRequest) (*dto.TerminalResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TerminalRetired {
		return nil, apierror.Conflictf("terminal %s is retired", t.SerialNumber)
	}

	if req.PosID != nil {
		t.PosID = req.PosID
	}
	if req.Manufacturer != nil {
		t.Manufacturer = req.Manufacturer
	}
	if req.Model != nil {
		t.Model = req.Model
	}
	if req.OsVersion != nil {
		t.OsVersion = req.OsVersion
	}
	if req.AppVersion != nil {
		t.AppVersion = req.AppVersion
	}
	if req.MdmProvider != nil {
		t.MdmProvider = req.MdmProvider
	}
	if req.MdmDeviceID != nil {
		t.MdmDeviceID = req.MdmDeviceID
	}
	if req.Tags != nil {
		t.Tags = req.Tags
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return terminalToResponse(t), nil
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *terminalService) Activate(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error) {
	return s.transition(ctx, id, model.TerminalActive)
}

func (s *terminalService) Suspend(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error) {
	return s.transition(ctx, id, model.TerminalSuspended)
}

func (s *terminalService) Retire(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error) {
	return s.transition(ctx, id, model.TerminalRetired)
}

// terminalEdges enumerates the legal status moves. RETIRED has no outgoing
// edge; identity moves are allowed for idempotent clients.
var terminalEdges = map[string][]string{
	model.TerminalEnrolled:  {model.TerminalActive, model.TerminalSuspended, model.TerminalRetired},
	model.TerminalActive:    {model.TerminalEnrolled, model.TerminalSuspended, model.TerminalRetired},
	model.TerminalSuspended: {model.TerminalEnrolled, model.TerminalActive, model.TerminalRetired},
}

func canTransitionTerminal(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range terminalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *terminalService) transition(ctx context.Context, id uuid.UUID, to string) (*dto.TerminalResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransitionTerminal(t.Status, to) {
		return nil, apierror.Conflictf("terminal %s cannot move from %s to %s", t.SerialNumber, t.Status, to)
	}
	if t.Status == to {
		return terminalToResponse(t), nil
	}
	t.Status = to
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	log.Info().
		Str("terminal_id", t.ID.String()).
		Str("status", to).
		Msg("terminal status changed")
	return terminalToResponse(t), nil
}

// ── Telemetry ────────────────────────────────────────────────────────────────

func (s *terminalService) RecordHeartbeat(ctx context.Context, id uuid.UUID, req dto.HeartbeatRequest) error {
	t, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == model.TerminalRetired {
		return apierror.Conflictf("terminal %s is retired", t.SerialNumber)
	}

	seenAt := time.Now().UTC()
	if req.CapturedAt != nil {
		seenAt = req.CapturedAt.UTC()
	}

	// lastSeenAt only ever moves forward; late heartbeats still append events.
	if err := s.repo.TouchLastSeen(ctx, id, seenAt); err != nil {
		return err
	}

	e := &model.TerminalEvent{
		ID:           uuid.New(),
		TerminalID:   id,
		EventType:    model.EventHeartbeat,
		CapturedAt:   seenAt,
		NetworkType:  req.NetworkType,
		IpAddress:    req.IPAddress,
		BatteryLevel: req.BatteryPercent,
		Charging:     req.Charging,
		OsVersion:    req.OsVersion,
		AppVersion:   req.AppVersion,
		MdmCompliant: req.MdmCompliant,
	}
	return s.eventRepo.Append(ctx, e)
}

func (s *terminalService) RecordEvent(ctx context.Context, id uuid.UUID, req dto.TerminalEventRequest) (*dto.TerminalEventResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TerminalRetired {
		return nil, apierror.Conflictf("terminal %s is retired", t.SerialNumber)
	}

	capturedAt := time.Now().UTC()
	if req.CapturedAt != nil {
		capturedAt = req.CapturedAt.UTC()
	}

	e := &model.TerminalEvent{
		ID:           uuid.New(),
		TerminalID:   id,
		EventType:    req.EventType,
		CapturedAt:   capturedAt,
		NetworkType:  req.NetworkType,
		IpAddress:    req.IPAddress,
		BatteryLevel: req.BatteryPercent,
		Charging:     req.Charging,
		OsVersion:    req.OsVersion,
		AppVersion:   req.AppVersion,
		MdmCompliant: req.MdmCompliant,
		Payload:      req.Payload,
	}
	if err := s.eventRepo.Append(ctx, e); err != nil {
		return nil, err
	}
	return eventToResponse(e), nil
}

func (s *terminalService) ListEvents(ctx context.Context, id uuid.UUID, filter dto.TerminalEventFilter) (*dto.TerminalEventListResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	events, total, err := s.eventRepo.List(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TerminalEventResponse, 0, len(events))
	for i := range events {
		items = append(items, *eventToResponse(&events[i]))
	}
	return &dto.TerminalEventListResponse{Data: items, Total: total}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *terminalService) find(ctx context.Context, id uuid.UUID) (*model.Terminal, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "terminal", id)
	}
	return t, nil
}

// issueDeviceToken signs the long-lived credential a terminal presents on
// heartbeat, event and location ingestion.
func (s *terminalService) issueDeviceToken(t *model.Terminal) (string, error) {
	claims := jwt.MapClaims{
		"terminal_id": t.ID.String(),
		"tenant_id":   t.TenantID,
		"serial":      t.SerialNumber,
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.DeviceTokenSecret))
}

func terminalToResponse(t *model.Terminal) *dto.TerminalResponse {
	resp := &dto.TerminalResponse{
		ID:           t.ID.String(),
		TenantID:     t.TenantID,
		PosID:        t.PosID,
		Status:       t.Status,
		SerialNumber: t.SerialNumber,
		Imei:         t.Imei,
		Manufacturer: t.Manufacturer,
		Model:        t.Model,
		OsVersion:    t.OsVersion,
		AppVersion:   t.AppVersion,
		MdmProvider:  t.MdmProvider,
		MdmDeviceID:  t.MdmDeviceID,
		Tags:         t.Tags,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
	if t.LastSeenAt != nil {
		s := t.LastSeenAt.Format(time.RFC3339)
		resp.LastSeenAt = &s
	}
	return resp
}

func eventToResponse(e *model.TerminalEvent) *dto.TerminalEventResponse {
	return &dto.TerminalEventResponse{
		ID:             e.ID.String(),
		TerminalID:     e.TerminalID.String(),
		EventType:      e.EventType,
		CapturedAt:     e.CapturedAt.Format(time.RFC3339),
		NetworkType:    e.NetworkType,
		IPAddress:      e.IpAddress,
		BatteryPercent: e.BatteryLevel,
		Charging:       e.Charging,
		OsVersion:      e.OsVersion,
		AppVersion:     e.AppVersion,
		MdmCompliant:   e.MdmCompliant,
		Payload:        e.Payload,
	}
}
