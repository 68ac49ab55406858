package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the slice of the user directory this service needs: listing
// ownership checks and actor display names on audit reads.
type User struct {
	ID        string    `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:VARCHAR(255);not null" json:"name"`
	Email     string    `gorm:"type:VARCHAR(255);not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Listing is the marketplace listing a room belongs to. SellerID is the
// user who receives the OWNER permission row when the room is initialized.
type Listing struct {
	ID        string    `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	SellerID  string    `gorm:"type:VARCHAR(36);not null;index" json:"sellerId"`
	Title     string    `gorm:"type:VARCHAR(255);not null" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Identity is the caller of an operation: a known user, a known email, or
// both. A zero Identity is unauthenticated.
type Identity struct {
	UserID string
	Email  string
}

// Anonymous reports whether no identity is present.
func (i Identity) Anonymous() bool {
	return i.UserID == "" && i.Email == ""
}

// NormalizedEmail lowercases and trims the email for grant and NDA matching.
func (i Identity) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(i.Email))
}
