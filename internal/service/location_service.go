package service

import (
	"context"
	"time"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"
	"github.com/AngeYobo/oxalio/internal/repository"

	"github.com/google/uuid"
)

type LocationService interface {
	Ingest(ctx context.Context, terminalID uuid.UUID, req dto.LocationIngestRequest) (*dto.LocationResponse, error)
	History(ctx context.Context, terminalID uuid.UUID, filter dto.LocationHistoryFilter) (*dto.LocationListResponse, error)
	Latest(ctx context.Context, terminalID uuid.UUID) (*dto.LocationResponse, error)
}

type locationService struct {
	repo         repository.TerminalLocationRepository
	terminalRepo repository.TerminalRepository
}

func NewLocationService(repo repository.TerminalLocationRepository, terminalRepo repository.TerminalRepository) LocationService {
	return &locationService{repo: repo, terminalRepo: terminalRepo}
}

// Ingest appends a fix. Fixes are never updated or deleted afterwards.
func (s *locationService) Ingest(ctx context.Context, terminalID uuid.UUID, req dto.LocationIngestRequest) (*dto.LocationResponse, error) {
	if _, err := s.terminalRepo.FindByID(ctx, terminalID); err != nil {
		return nil, notFoundOr(err, "terminal", terminalID)
	}

	capturedAt := time.Now().UTC()
	if req.CapturedAt != nil {
		capturedAt = req.CapturedAt.UTC()
	}

	fix := &model.TerminalLocation{
		ID:             uuid.New(),
		TerminalID:     terminalID,
		CapturedAt:     capturedAt,
		Source:         req.Source,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		Provider:       req.Provider,
	}
	if err := s.repo.Append(ctx, fix); err != nil {
		return nil, err
	}
	return locationToResponse(fix), nil
}

// History returns fixes most recent first, optionally bounded by [from, to].
func (s *locationService) History(ctx context.Context, terminalID uuid.UUID, filter dto.LocationHistoryFilter) (*dto.LocationListResponse, error) {
	if _, err := s.terminalRepo.FindByID(ctx, terminalID); err != nil {
		return nil, notFoundOr(err, "terminal", terminalID)
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	fixes, total, err := s.repo.History(ctx, terminalID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(fixes))
	for i := range fixes {
		items = append(items, *locationToResponse(&fixes[i]))
	}
	return &dto.LocationListResponse{Data: items, Total: total}, nil
}

func (s *locationService) Latest(ctx context.Context, terminalID uuid.UUID) (*dto.LocationResponse, error) {
	if _, err := s.terminalRepo.FindByID(ctx, terminalID); err != nil {
		return nil, notFoundOr(err, "terminal", terminalID)
	}
	fix, err := s.repo.Latest(ctx, terminalID)
	if err != nil {
		return nil, notFoundOr(err, "location fix for terminal", terminalID)
	}
	return locationToResponse(fix), nil
}

func locationToResponse(l *model.TerminalLocation) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:             l.ID.String(),
		TerminalID:     l.TerminalID.String(),
		CapturedAt:     l.CapturedAt.Format(time.RFC3339),
		Source:         l.Source,
		Latitude:       l.Latitude,
		Longitude:      l.Longitude,
		AccuracyMeters: l.AccuracyMeters,
		Provider:       l.Provider,
	}
}
