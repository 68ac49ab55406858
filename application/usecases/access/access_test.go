package access_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	persistence "github.com/dealdeck/dataroom-api/infrastructure/persistence/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	db             *gorm.DB
	accessUC       access.AccessUseCase
	permissionRepo repository.PermissionRepository
	ndaRepo        repository.NDARepository
	documentRepo   repository.DocumentRepository

	room    *model.DataRoom
	ownerID string
}

func newFixture(t *testing.T, ndaRequired bool) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.DataRoom{},
		&model.DataRoomPermission{},
		&model.DataRoomDocument{},
		&model.DataRoomDocumentVersion{},
		&model.DataRoomDocumentGrant{},
		&model.DataRoomNDAAcceptance{},
	))

	zapLogger := zap.NewNop()
	f := &fixture{
		db:             db,
		permissionRepo: persistence.NewPermissionRepository(db, zapLogger),
		ndaRepo:        persistence.NewNDARepository(db, zapLogger),
		documentRepo:   persistence.NewDocumentRepository(db, zapLogger),
		ownerID:        uuid.NewString(),
	}
	roomRepo := persistence.NewDataRoomRepository(db, zapLogger)

	f.accessUC = access.NewAccessUseCase(f.permissionRepo, f.ndaRepo, f.documentRepo, roomRepo, nil, logger.NewNopLogger())

	f.room = &model.DataRoom{
		ListingID:   uuid.NewString(),
		NDARequired: ndaRequired,
		CreatedBy:   f.ownerID,
	}
	require.NoError(t, roomRepo.Create(context.Background(), f.room))
	f.grantRole(t, f.ownerID, model.RoleOwner)

	return f
}

func (f *fixture) grantRole(t *testing.T, userID string, role model.Role) {
	t.Helper()
	require.NoError(t, f.permissionRepo.Upsert(context.Background(), &model.DataRoomPermission{
		DataRoomID: f.room.ID,
		UserID:     userID,
		Role:       role,
		InvitedBy:  f.ownerID,
	}))
}

func (f *fixture) acceptNDA(t *testing.T, userID string) {
	t.Helper()
	_, _, err := f.ndaRepo.Accept(context.Background(), &model.DataRoomNDAAcceptance{
		DataRoomID: f.room.ID,
		UserID:     sql.NullString{String: userID, Valid: true},
		NDAVersion: "v1",
	})
	require.NoError(t, err)
}

func (f *fixture) seedDocument(t *testing.T, visibility model.Visibility, downloadBlocked bool) *model.DataRoomDocument {
	t.Helper()
	doc := &model.DataRoomDocument{
		DataRoomID:      f.room.ID,
		FolderID:        uuid.NewString(),
		Title:           "Cap table",
		Visibility:      visibility,
		DownloadBlocked: downloadBlocked,
		CreatedBy:       f.ownerID,
	}
	ver := &model.DataRoomDocumentVersion{
		FileName:   "cap-table.xlsx",
		MimeType:   "application/vnd.ms-excel",
		Size:       64,
		StorageKey: f.room.ID + "/" + uuid.NewString(),
		UploadedBy: f.ownerID,
	}
	require.NoError(t, f.documentRepo.CreateWithFirstVersion(context.Background(), doc, ver))
	if visibility != model.VisibilityDefault || downloadBlocked {
		blocked := downloadBlocked
		vis := visibility
		_, err := f.documentRepo.UpdatePolicy(context.Background(), doc.ID, repository.PolicyUpdate{
			Visibility:      &vis,
			DownloadBlocked: &blocked,
			GrantedBy:       f.ownerID,
		})
		require.NoError(t, err)
	}
	return doc
}

func TestDecideAnonymousIsUnauthenticated(t *testing.T) {
	f := newFixture(t, true)

	err := f.accessUC.Decide(context.Background(), f.room.ID, model.Identity{}, access.ActionView, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestDecideStrangerIsForbidden(t *testing.T) {
	f := newFixture(t, true)

	err := f.accessUC.Decide(context.Background(), f.room.ID, model.Identity{UserID: uuid.NewString()}, access.ActionView, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.NotErrorIs(t, err, apperrors.ErrNDARequired)
}

func TestDecideOwnerBypassesNDA(t *testing.T) {
	f := newFixture(t, true)
	doc := f.seedDocument(t, model.VisibilityDefault, false)

	owner := model.Identity{UserID: f.ownerID}
	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, owner, access.ActionView, doc))
	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, owner, access.ActionDownload, doc))
	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, owner, access.ActionManagePermissions, nil))
	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, owner, access.ActionViewAudit, nil))
}

func TestDecideViewerRequiresNDA(t *testing.T) {
	f := newFixture(t, true)

	viewerID := uuid.NewString()
	f.grantRole(t, viewerID, model.RoleViewer)
	viewer := model.Identity{UserID: viewerID}

	err := f.accessUC.Decide(context.Background(), f.room.ID, viewer, access.ActionView, nil)
	assert.ErrorIs(t, err, apperrors.ErrNDARequired)

	f.acceptNDA(t, viewerID)
	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, viewer, access.ActionView, nil))
}

func TestDecideNDANotRequiredWhenRoomDisablesIt(t *testing.T) {
	f := newFixture(t, false)

	viewerID := uuid.NewString()
	f.grantRole(t, viewerID, model.RoleViewer)

	err := f.accessUC.Decide(context.Background(), f.room.ID, model.Identity{UserID: viewerID}, access.ActionView, nil)
	assert.NoError(t, err)
}

func TestDecideViewerIsReadOnly(t *testing.T) {
	f := newFixture(t, false)

	viewerID := uuid.NewString()
	f.grantRole(t, viewerID, model.RoleViewer)
	viewer := model.Identity{UserID: viewerID}

	for _, action := range []access.Action{access.ActionUpload, access.ActionDelete, access.ActionManagePolicy, access.ActionManagePermissions, access.ActionViewAudit} {
		err := f.accessUC.Decide(context.Background(), f.room.ID, viewer, action, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "action %s", action)
	}
}

func TestDecideEditorManagesContentButNotPermissions(t *testing.T) {
	f := newFixture(t, false)

	editorID := uuid.NewString()
	f.grantRole(t, editorID, model.RoleEditor)
	editor := model.Identity{UserID: editorID}

	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, editor, access.ActionUpload, nil))
	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, editor, access.ActionManagePolicy, nil))

	err := f.accessUC.Decide(context.Background(), f.room.ID, editor, access.ActionManagePermissions, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	err = f.accessUC.Decide(context.Background(), f.room.ID, editor, access.ActionViewAudit, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDecideCustomVisibilityNeedsGrant(t *testing.T) {
	f := newFixture(t, false)
	doc := f.seedDocument(t, model.VisibilityCustom, false)

	viewerID := uuid.NewString()
	f.grantRole(t, viewerID, model.RoleViewer)
	viewer := model.Identity{UserID: viewerID}

	err := f.accessUC.Decide(context.Background(), f.room.ID, viewer, access.ActionView, doc)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	vis := model.VisibilityCustom
	_, err = f.documentRepo.UpdatePolicy(context.Background(), doc.ID, repository.PolicyUpdate{
		Visibility:     &vis,
		GrantsProvided: true,
		GrantUserIDs:   []string{viewerID},
		GrantedBy:      f.ownerID,
	})
	require.NoError(t, err)

	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, viewer, access.ActionView, doc))
}

func TestDecideDownloadBlockedDeniesDownloadOnly(t *testing.T) {
	f := newFixture(t, false)
	doc := f.seedDocument(t, model.VisibilityDefault, true)

	viewerID := uuid.NewString()
	f.grantRole(t, viewerID, model.RoleViewer)
	viewer := model.Identity{UserID: viewerID}

	assert.NoError(t, f.accessUC.Decide(context.Background(), f.room.ID, viewer, access.ActionView, doc))

	err := f.accessUC.Decide(context.Background(), f.room.ID, viewer, access.ActionDownload, doc)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDecideCrossRoomDocumentIsNotFound(t *testing.T) {
	f := newFixture(t, false)

	viewerID := uuid.NewString()
	f.grantRole(t, viewerID, model.RoleViewer)

	foreign := &model.DataRoomDocument{
		ID:         uuid.NewString(),
		DataRoomID: uuid.NewString(),
		Visibility: model.VisibilityDefault,
	}
	err := f.accessUC.Decide(context.Background(), f.room.ID, model.Identity{UserID: viewerID}, access.ActionView, foreign)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckVersionScan(t *testing.T) {
	assert.NoError(t, access.CheckVersionScan(&model.DataRoomDocumentVersion{VirusScan: model.ScanClean}))

	err := access.CheckVersionScan(&model.DataRoomDocumentVersion{VirusScan: model.ScanPending})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = access.CheckVersionScan(&model.DataRoomDocumentVersion{VirusScan: model.ScanBlocked})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
