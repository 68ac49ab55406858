package repository

import (
	"context"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresDataRoomRepository struct {
	baseRepository
}

func NewDataRoomRepository(db *gorm.DB, zapLogger *zap.Logger) repository.DataRoomRepository {
	return &PostgresDataRoomRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresDataRoomRepository) Create(ctx context.Context, room *model.DataRoom) error {
	err := r.database.WithContext(ctx).Create(room).Error
	if err != nil {
		r.logger.Error(ctx, err.Error())
	}
	return translateError(err)
}

func (r *PostgresDataRoomRepository) GetByID(ctx context.Context, id string) (*model.DataRoom, error) {
	var room model.DataRoom
	err := r.database.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

func (r *PostgresDataRoomRepository) GetByListingID(ctx context.Context, listingID string) (*model.DataRoom, error) {
	var room model.DataRoom
	err := r.database.WithContext(ctx).Where("listing_id = ?", listingID).First(&room).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

type PostgresPermissionRepository struct {
	baseRepository
}

func NewPermissionRepository(db *gorm.DB, zapLogger *zap.Logger) repository.PermissionRepository {
	return &PostgresPermissionRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresPermissionRepository) Upsert(ctx context.Context, perm *model.DataRoomPermission) error {
	err := r.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "data_room_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "invited_by"}),
		}).
		Create(perm).Error
	if err != nil {
		r.logger.Error(ctx, err.Error())
	}
	return translateError(err)
}

func (r *PostgresPermissionRepository) GetRole(ctx context.Context, roomID, userID string) (*model.DataRoomPermission, error) {
	var perm model.DataRoomPermission
	err := r.database.WithContext(ctx).
		Where("data_room_id = ? AND user_id = ?", roomID, userID).
		First(&perm).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &perm, nil
}

func (r *PostgresPermissionRepository) Delete(ctx context.Context, roomID, userID string) error {
	result := r.database.WithContext(ctx).
		Where("data_room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.DataRoomPermission{})
	if result.Error != nil {
		r.logger.Error(ctx, result.Error.Error())
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *PostgresPermissionRepository) ListByRoom(ctx context.Context, roomID string) ([]model.DataRoomPermission, error) {
	var perms []model.DataRoomPermission
	err := r.database.WithContext(ctx).
		Where("data_room_id = ?", roomID).
		Order("created_at ASC").
		Find(&perms).Error
	if err != nil {
		return nil, translateError(err)
	}
	return perms, nil
}
