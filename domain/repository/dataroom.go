package repository

import (
	"context"

	"github.com/dealdeck/dataroom-api/domain/model"
)

type DataRoomRepository interface {
	Create(ctx context.Context, room *model.DataRoom) error
	GetByID(ctx context.Context, id string) (*model.DataRoom, error)
	GetByListingID(ctx context.Context, listingID string) (*model.DataRoom, error)
}

type PermissionRepository interface {
	// Upsert creates or updates the role for (room, user).
	Upsert(ctx context.Context, perm *model.DataRoomPermission) error
	// GetRole returns the permission row for (room, user), or
	// apperrors.ErrNotFound when none exists.
	GetRole(ctx context.Context, roomID, userID string) (*model.DataRoomPermission, error)
	Delete(ctx context.Context, roomID, userID string) error
	ListByRoom(ctx context.Context, roomID string) ([]model.DataRoomPermission, error)
}
