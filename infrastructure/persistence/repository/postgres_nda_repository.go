package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresNDARepository struct {
	baseRepository
}

func NewNDARepository(db *gorm.DB, zapLogger *zap.Logger) repository.NDARepository {
	return &PostgresNDARepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresNDARepository) Accept(ctx context.Context, acceptance *model.DataRoomNDAAcceptance) (*model.DataRoomNDAAcceptance, bool, error) {
	identity := model.Identity{}
	if acceptance.UserID.Valid {
		identity.UserID = acceptance.UserID.String
	}
	if acceptance.Email.Valid {
		identity.Email = acceptance.Email.String
	}

	existing, err := r.Get(ctx, acceptance.DataRoomID, identity)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	if acceptance.AcceptedAt.IsZero() {
		acceptance.AcceptedAt = time.Now().UTC()
	}
	err = r.database.WithContext(ctx).Create(acceptance).Error
	if err == nil {
		return acceptance, true, nil
	}

	// Lost a concurrent race on the unique index: the winner's row is the
	// acceptance of record.
	if errors.Is(translateError(err), apperrors.ErrConflict) {
		existing, getErr := r.Get(ctx, acceptance.DataRoomID, identity)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}

	r.logger.Error(ctx, err.Error())
	return nil, false, translateError(err)
}

func (r *PostgresNDARepository) Get(ctx context.Context, roomID string, identity model.Identity) (*model.DataRoomNDAAcceptance, error) {
	query := r.database.WithContext(ctx).Where("data_room_id = ?", roomID)

	email := identity.NormalizedEmail()
	switch {
	case identity.UserID != "" && email != "":
		query = query.Where("user_id = ? OR email = ?", identity.UserID, email)
	case identity.UserID != "":
		query = query.Where("user_id = ?", identity.UserID)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return nil, apperrors.ErrNotFound
	}

	var acceptance model.DataRoomNDAAcceptance
	if err := query.First(&acceptance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &acceptance, nil
}
