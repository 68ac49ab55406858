package repository

import (
	"context"
	"strings"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresUserRepository struct {
	baseRepository
}

func NewUserRepository(db *gorm.DB, zapLogger *zap.Logger) repository.UserRepository {
	return &PostgresUserRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.database.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.database.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	result := make(map[string]model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []model.User
	err := r.database.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, translateError(err)
	}
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}

type PostgresListingRepository struct {
	baseRepository
}

func NewListingRepository(db *gorm.DB, zapLogger *zap.Logger) repository.ListingRepository {
	return &PostgresListingRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	err := r.database.WithContext(ctx).Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &listing, nil
}
