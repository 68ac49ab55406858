package repository

import (
	"context"
	"testing"

	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataRoomListingUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDataRoomRepository(db, testLogger())

	room := &model.DataRoom{ListingID: newID(), NDARequired: true, CreatedBy: newID()}
	require.NoError(t, repo.Create(context.Background(), room))

	dup := &model.DataRoom{ListingID: room.ListingID, NDARequired: false, CreatedBy: newID()}
	err := repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := repo.GetByListingID(context.Background(), room.ListingID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
}

func TestCreatePersistsDisabledNDAFlag(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDataRoomRepository(db, testLogger())

	// A zero-value flag must survive the insert; a column default must
	// never override what the owner chose.
	room := &model.DataRoom{ListingID: newID(), NDARequired: false, CreatedBy: newID()}
	require.NoError(t, repo.Create(context.Background(), room))

	got, err := repo.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.False(t, got.NDARequired)
}

func TestPermissionUpsertReplacesRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPermissionRepository(db, testLogger())
	room := seedRoom(t, db, true)

	userID := newID()
	require.NoError(t, repo.Upsert(context.Background(), &model.DataRoomPermission{
		DataRoomID: room.ID,
		UserID:     userID,
		Role:       model.RoleViewer,
		InvitedBy:  room.CreatedBy,
	}))

	require.NoError(t, repo.Upsert(context.Background(), &model.DataRoomPermission{
		DataRoomID: room.ID,
		UserID:     userID,
		Role:       model.RoleEditor,
		InvitedBy:  room.CreatedBy,
	}))

	perm, err := repo.GetRole(context.Background(), room.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, perm.Role)

	perms, err := repo.ListByRoom(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}

func TestPermissionDeleteMissingIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPermissionRepository(db, testLogger())
	room := seedRoom(t, db, true)

	err := repo.Delete(context.Background(), room.ID, newID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
