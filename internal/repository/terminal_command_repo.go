package repository

import (
	"context"
	"time"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TerminalCommandRepository interface {
	Create(ctx context.Context, c *model.TerminalCommand) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TerminalCommand, error)
	List(ctx context.Context, terminalID uuid.UUID, filter dto.CommandFilter) ([]model.TerminalCommand, int64, error)
	Save(ctx context.Context, c *model.TerminalCommand) error
	// FindExpiredQueued returns commands stuck in QUEUED since before cutoff.
	FindExpiredQueued(ctx context.Context, cutoff time.Time, limit int) ([]model.TerminalCommand, error)
}

type terminalCommandRepo struct{ db *gorm.DB }

func NewTerminalCommandRepository(db *gorm.DB) TerminalCommandRepository {
	return &terminalCommandRepo{db: db}
}

func (r *terminalCommandRepo) Create(ctx context.Context, c *model.TerminalCommand) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *terminalCommandRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TerminalCommand, error) {
	var c model.TerminalCommand
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *terminalCommandRepo) List(ctx context.Context, terminalID uuid.UUID, filter dto.CommandFilter) ([]model.TerminalCommand, int64, error) {
	var commands []model.TerminalCommand
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TerminalCommand{}).
		Where("terminal_id = ?", terminalID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Find(&commands).Error

	return commands, total, err
}

func (r *terminalCommandRepo) Save(ctx context.Context, c *model.TerminalCommand) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *terminalCommandRepo) FindExpiredQueued(ctx context.Context, cutoff time.Time, limit int) ([]model.TerminalCommand, error) {
	var commands []model.TerminalCommand
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.CommandQueued, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&commands).Error
	return commands, err
}
