package database

import (
	"fmt"
	"sync"

	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	dbInstance *gorm.DB
	mu         sync.RWMutex
)

// Init opens the postgres connection and configures the pool.
func Init(cfg *config.Config, zapLogger *zap.Logger) error {
	db, err := gorm.Open(postgres.Open(cfg.GetPostgresConnectionString()), &gorm.Config{
		Logger:         logger.NewGormLogger(zapLogger),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	mu.Lock()
	dbInstance = db
	mu.Unlock()

	return nil
}

// SetDb overrides the connection. Tests use this with an in-memory sqlite DB.
func SetDb(db *gorm.DB) {
	mu.Lock()
	dbInstance = db
	mu.Unlock()
}

func GetDb() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return dbInstance
}

func Close() error {
	mu.RLock()
	defer mu.RUnlock()
	if dbInstance == nil {
		return nil
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
