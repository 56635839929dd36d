package repository

import (
	"context"
	"time"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TerminalRepository interface {
	Create(ctx context.Context, t *model.Terminal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Terminal, error)
	FindBySerial(ctx context.Context, serial string) (*model.Terminal, error)
	List(ctx context.Context, filter dto.TerminalFilter) ([]model.Terminal, int64, error)
	Save(ctx context.Context, t *model.Terminal) error
	// TouchLastSeen advances last_seen_at, never moves it backwards.
	TouchLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error
}

type terminalRepo struct{ db *gorm.DB }

func NewTerminalRepository(db *gorm.DB) TerminalRepository { return &terminalRepo{db: db} }

func (r *terminalRepo) Create(ctx context.Context, t *model.Terminal) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *terminalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Terminal, error) {
	var t model.Terminal
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *terminalRepo) FindBySerial(ctx context.Context, serial string) (*model.Terminal, error) {
	var t model.Terminal
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&t).Error
	return &t, err
}

func (r *terminalRepo) List(ctx context.Context, filter dto.TerminalFilter) ([]model.Terminal, int64, error) {
	var terminals []model.Terminal
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Terminal{})
	if filter.TenantID != "" {
		q = q.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.PosID != "" {
		q = q.Where("pos_id = ?", filter.PosID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&terminals).Error

	return terminals, total, err
}

func (r *terminalRepo) Save(ctx context.Context, t *model.Terminal) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *terminalRepo) TouchLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Terminal{}).
		Where("id = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", id, seenAt).
		Update("last_seen_at", seenAt).Error
}
