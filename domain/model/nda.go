package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataRoomNDAAcceptance records consent for one identity in one room.
// At most one row per identity per room; repeat acceptances return the
// original row unchanged. OWNER role is exempt from needing one.
type DataRoomNDAAcceptance struct {
	ID         string         `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DataRoomID string         `gorm:"type:VARCHAR(36);not null;index;uniqueIndex:idx_nda_user;uniqueIndex:idx_nda_email" json:"dataRoomId"`
	UserID     sql.NullString `gorm:"type:VARCHAR(36);uniqueIndex:idx_nda_user" json:"userId"`
	Email      sql.NullString `gorm:"type:VARCHAR(255);uniqueIndex:idx_nda_email" json:"email"`
	NDAVersion string         `gorm:"type:VARCHAR(32);not null" json:"ndaVersion"`
	IPAddress  string         `gorm:"type:VARCHAR(45)" json:"-"`
	UserAgent  string         `gorm:"type:VARCHAR(512)" json:"-"`
	AcceptedAt time.Time      `gorm:"not null" json:"acceptedAt"`
}

func (a *DataRoomNDAAcceptance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
