package repository

import (
	"context"
	"time"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresAuditLogRepository struct {
	baseRepository
}

func NewAuditLogRepository(db *gorm.DB, zapLogger *zap.Logger) repository.AuditRepository {
	return &PostgresAuditLogRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresAuditLogRepository) Create(ctx context.Context, entry *model.DataRoomAudit) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	err := r.database.WithContext(ctx).Create(entry).Error
	if err != nil {
		r.logger.Error(ctx, err.Error())
	}
	return translateError(err)
}

func (r *PostgresAuditLogRepository) List(ctx context.Context, roomID string, filter repository.AuditFilter, limit, offset int) ([]model.DataRoomAudit, int64, error) {
	query := r.database.WithContext(ctx).
		Model(&model.DataRoomAudit{}).
		Where("data_room_id = ?", roomID)

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("created_at <= ?", filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entries []model.DataRoomAudit
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return entries, total, nil
}
