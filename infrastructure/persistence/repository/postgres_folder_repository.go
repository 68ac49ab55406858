package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresFolderRepository struct {
	baseRepository
}

func NewFolderRepository(db *gorm.DB, zapLogger *zap.Logger) repository.FolderRepository {
	return &PostgresFolderRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresFolderRepository) Create(ctx context.Context, folder *model.DataRoomFolder) error {
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now().UTC()
	}
	err := r.database.WithContext(ctx).Create(folder).Error
	if err != nil {
		r.logger.Error(ctx, err.Error())
	}
	return translateError(err)
}

func (r *PostgresFolderRepository) GetByID(ctx context.Context, roomID, id string) (*model.DataRoomFolder, error) {
	var folder model.DataRoomFolder
	err := r.database.WithContext(ctx).
		Where("id = ? AND data_room_id = ?", id, roomID).
		First(&folder).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &folder, nil
}

func (r *PostgresFolderRepository) EnsureRoot(ctx context.Context, roomID, createdBy string) (*model.DataRoomFolder, error) {
	var root model.DataRoomFolder
	err := r.database.WithContext(ctx).
		Where("data_room_id = ? AND parent_id IS NULL", roomID).
		First(&root).Error
	if err == nil {
		return &root, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translateError(err)
	}

	root = model.DataRoomFolder{
		DataRoomID: roomID,
		Name:       "",
		Path:       "/",
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.database.WithContext(ctx).Create(&root).Error; err != nil {
		r.logger.Error(ctx, err.Error())
		return nil, translateError(err)
	}
	return &root, nil
}

func (r *PostgresFolderRepository) NextSiblingOrder(ctx context.Context, roomID string, parentID sql.NullString) (int, error) {
	var maxOrder sql.NullInt64
	query := r.database.WithContext(ctx).
		Model(&model.DataRoomFolder{}).
		Select("MAX(sort_order)").
		Where("data_room_id = ?", roomID)
	if parentID.Valid {
		query = query.Where("parent_id = ?", parentID.String)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if err := query.Scan(&maxOrder).Error; err != nil {
		return 0, translateError(err)
	}
	if !maxOrder.Valid {
		return 1, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

func (r *PostgresFolderRepository) ListByRoom(ctx context.Context, roomID string) ([]model.DataRoomFolder, error) {
	var folders []model.DataRoomFolder
	err := r.database.WithContext(ctx).
		Where("data_room_id = ?", roomID).
		Order("path ASC, sort_order ASC").
		Find(&folders).Error
	if err != nil {
		return nil, translateError(err)
	}
	return folders, nil
}
