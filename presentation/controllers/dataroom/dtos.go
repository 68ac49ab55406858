package dataroom

import "time"

type InitRoomRequest struct {
	ListingID   string `json:"listingId" binding:"required,uuid"`
	NDARequired bool   `json:"ndaRequired"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=EDITOR VIEWER"`
}

type RoomResponse struct {
	ID          string    `json:"id"`
	ListingID   string    `json:"listingId"`
	NDARequired bool      `json:"ndaRequired"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PermissionResponse struct {
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	InvitedBy string    `json:"invitedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
