package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db, testLogger())
	room := seedRoom(t, db, true)

	actorID := newID()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		entry := &model.DataRoomAudit{
			DataRoomID: room.ID,
			ActorID:    sql.NullString{String: actorID, Valid: true},
			Action:     model.AuditActionDownload,
			TargetType: model.AuditTargetVersion,
			TargetID:   newID(),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), entry))
	}
	require.NoError(t, repo.Create(context.Background(), &model.DataRoomAudit{
		DataRoomID: room.ID,
		Action:     model.AuditActionNDAAccept,
		TargetType: model.AuditTargetRoom,
		TargetID:   room.ID,
		CreatedAt:  base.Add(10 * time.Minute),
	}))

	entries, total, err := repo.List(context.Background(), room.ID, repository.AuditFilter{}, 3, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, model.AuditActionNDAAccept, entries[0].Action)

	entries, total, err = repo.List(context.Background(), room.ID, repository.AuditFilter{
		Action: model.AuditActionDownload,
	}, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, entries, 5)

	entries, _, err = repo.List(context.Background(), room.ID, repository.AuditFilter{
		Since: base.Add(3 * time.Minute),
		Until: base.Add(5 * time.Minute),
	}, 50, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuditListScopedToRoom(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db, testLogger())
	room := seedRoom(t, db, true)
	otherRoom := seedRoom(t, db, true)

	require.NoError(t, repo.Create(context.Background(), &model.DataRoomAudit{
		DataRoomID: room.ID,
		Action:     model.AuditActionRoomInit,
		TargetType: model.AuditTargetRoom,
		TargetID:   room.ID,
		CreatedAt:  time.Now().UTC(),
	}))

	entries, total, err := repo.List(context.Background(), otherRoom.ID, repository.AuditFilter{}, 50, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}
