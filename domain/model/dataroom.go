package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the per-room permission level of a user.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanManage reports whether the role may change content (folders, uploads, policy).
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleEditor
}

// DataRoom is the per-listing document repository. One room per listing,
// created lazily on first upload intent or an explicit init call.
type DataRoom struct {
	ID          string    `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	ListingID   string    `gorm:"type:VARCHAR(36);not null;uniqueIndex" json:"listingId"`
	NDARequired bool      `gorm:"not null" json:"ndaRequired"`
	CreatedBy   string    `gorm:"type:VARCHAR(36);not null" json:"createdBy"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}

func (r *DataRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// DataRoomPermission maps (room, user) to a role. Unique per pair.
// The listing owner gets an explicit OWNER row at room initialization,
// so the decision engine never needs to compare against the listing.
type DataRoomPermission struct {
	ID         string    `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DataRoomID string    `gorm:"type:VARCHAR(36);not null;uniqueIndex:idx_room_user;index" json:"dataRoomId"`
	UserID     string    `gorm:"type:VARCHAR(36);not null;uniqueIndex:idx_room_user" json:"userId"`
	Role       Role      `gorm:"type:VARCHAR(10);not null" json:"role"`
	InvitedBy  string    `gorm:"type:VARCHAR(36)" json:"invitedBy"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

func (p *DataRoomPermission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
