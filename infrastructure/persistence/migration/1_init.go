package migration

import (
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/infrastructure/notify"
	"gorm.io/gorm"
)

// Up1 creates the data-room schema, including the unique indexes the
// correctness of NDA upserts and version numbering depends on.
func Up1(db *gorm.DB) error {
	return db.AutoMigrate(
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
		&notify.Notification{},
	)
}
