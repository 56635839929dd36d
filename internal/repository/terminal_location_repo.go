package repository

import (
	"context"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TerminalLocationRepository is append-only: no update or delete exists.
type TerminalLocationRepository interface {
	Append(ctx context.Context, l *model.TerminalLocation) error
	History(ctx context.Context, terminalID uuid.UUID, filter dto.LocationHistoryFilter) ([]model.TerminalLocation, int64, error)
	Latest(ctx context.Context, terminalID uuid.UUID) (*model.TerminalLocation, error)
}

type terminalLocationRepo struct{ db *gorm.DB }

func NewTerminalLocationRepository(db *gorm.DB) TerminalLocationRepository {
	return &terminalLocationRepo{db: db}
}

func (r *terminalLocationRepo) Append(ctx context.Context, l *model.TerminalLocation) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *terminalLocationRepo) History(ctx context.Context, terminalID uuid.UUID, filter dto.LocationHistoryFilter) ([]model.TerminalLocation, int64, error) {
	var fixes []model.TerminalLocation
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TerminalLocation{}).
		Where("terminal_id = ?", terminalID)
	if filter.From != nil {
		q = q.Where("captured_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("captured_at <= ?", *filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("captured_at DESC").
		Limit(filter.Limit).
		Find(&fixes).Error

	return fixes, total, err
}

func (r *terminalLocationRepo) Latest(ctx context.Context, terminalID uuid.UUID) (*model.TerminalLocation, error) {
	var fix model.TerminalLocation
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Order("captured_at DESC").
		First(&fix).Error
	return &fix, err
}
