package repository

import (
	"testing"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Listing{},
		&model.DataRoom{},
		&model.DataRoomPermission{},
		&model.DataRoomFolder{},
		&model.DataRoomDocument{},
		&model.DataRoomDocumentVersion{},
		&model.DataRoomDocumentGrant{},
		&model.DataRoomNDAAcceptance{},
		&model.DataRoomAudit{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newID() string {
	return uuid.NewString()
}

func seedRoom(t *testing.T, db *gorm.DB, ndaRequired bool) *model.DataRoom {
	t.Helper()

	room := &model.DataRoom{
		ListingID:   newID(),
		NDARequired: ndaRequired,
		CreatedBy:   newID(),
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
	return room
}
