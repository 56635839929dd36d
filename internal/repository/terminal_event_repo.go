package repository

import (
	"context"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TerminalEventRepository is append-only: no update or delete exists.
type TerminalEventRepository interface {
	Append(ctx context.Context, e *model.TerminalEvent) error
	List(ctx context.Context, terminalID uuid.UUID, filter dto.TerminalEventFilter) ([]model.TerminalEvent, int64, error)
}

type terminalEventRepo struct{ db *gorm.DB }

func NewTerminalEventRepository(db *gorm.DB) TerminalEventRepository {
	return &terminalEventRepo{db: db}
}

func (r *terminalEventRepo) Append(ctx context.Context, e *model.TerminalEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *terminalEventRepo) List(ctx context.Context, terminalID uuid.UUID, filter dto.TerminalEventFilter) ([]model.TerminalEvent, int64, error) {
	var events []model.TerminalEvent
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TerminalEvent{}).
		Where("terminal_id = ?", terminalID)
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("captured_at DESC").
		Limit(filter.Limit).
		Find(&events).Error

	return events, total, err
}
