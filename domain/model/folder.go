package model

import (
	"time"

	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxFolderNameLength caps a single path segment after sanitization.
const MaxFolderNameLength = 80

// DataRoomFolder is a tree node inside a room. Path is materialized,
// slash-delimited and always derivable by walking the parent chain;
// the root of a room has path "/".
type DataRoomFolder struct {
	ID         string         `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DataRoomID string         `gorm:"type:VARCHAR(36);not null;index" json:"dataRoomId"`
	ParentID   sql.NullString `gorm:"type:VARCHAR(36);index" json:"parentId"`
	Name       string         `gorm:"type:VARCHAR(80);not null" json:"name"`
	Path       string         `gorm:"type:VARCHAR(1024);not null" json:"path"`
	Order      int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedBy  string         `gorm:"type:VARCHAR(36);not null" json:"createdBy"`
	CreatedAt  time.Time      `gorm:"not null" json:"createdAt"`
}

func (f *DataRoomFolder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// IsRoot reports whether the folder is the root of its room.
func (f *DataRoomFolder) IsRoot() bool {
	return !f.ParentID.Valid
}
