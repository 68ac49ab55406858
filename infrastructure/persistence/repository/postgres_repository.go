package repository

import (
	"errors"

	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type baseRepository struct {
	database *gorm.DB
	logger   *logger.GormZapLogger
}

func newBaseRepository(db *gorm.DB, zapLogger *zap.Logger) baseRepository {
	return baseRepository{
		database: db,
		logger:   logger.NewGormLogger(zapLogger),
	}
}

// translateError maps gorm errors onto the shared taxonomy. Requires
// TranslateError enabled on the connection for duplicate-key detection.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrConflict
	}
	return err
}
