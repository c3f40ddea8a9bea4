package repo

import (
	"context"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"gorm.io/gorm"
)

const defaultAlertLimit = 50

type AlertRepo interface {
	Create(ctx context.Context, event entity.AlertEvent) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]entity.AlertEvent, error)
	FindByCode(ctx context.Context, code string, limit int) ([]entity.AlertEvent, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepo {
	return &alertRepo{
		db: db,
	}
}

func (r *alertRepo) Create(ctx context.Context, event entity.AlertEvent) (int64, error) {
	err := r.db.WithContext(ctx).Create(&event).Error
	if err != nil {
		return 0, err
	}
	return event.Id, nil
}

func (r *alertRepo) FindRecent(ctx context.Context, limit int) ([]entity.AlertEvent, error) {
	var events []entity.AlertEvent
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(normalizeLimit(limit)).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *alertRepo) FindByCode(ctx context.Context, code string, limit int) ([]entity.AlertEvent, error) {
	var events []entity.AlertEvent
	err := r.db.WithContext(ctx).Where("code = ?", code).
		Order("created_at DESC, id DESC").Limit(normalizeLimit(limit)).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultAlertLimit
	}
	return limit
}
