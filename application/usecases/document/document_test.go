package document_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/application/usecases/audit"
	"github.com/dealdeck/dataroom-api/application/usecases/document"
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

type fakeObjectStorage struct {
	removed []string
}

func (f *fakeObjectStorage) IssueDownloadURL(_ context.Context, storageKey, _, _ string) (string, int, error) {
	return "https://objects.test/get/" + storageKey, 300, nil
}

func (f *fakeObjectStorage) IssueUploadURL(_ context.Context, storageKey, _ string) (string, int, error) {
	return "https://objects.test/put/" + storageKey, 900, nil
}

func (f *fakeObjectStorage) RemoveObject(_ context.Context, storageKey string) error {
	f.removed = append(f.removed, storageKey)
	return nil
}

type fixture struct {
	documentUC document.DocumentUseCase
	auditRepo  repository.AuditRepository
	objects    *fakeObjectStorage

	room    *model.DataRoom
	ownerID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.DataRoom{},
		&model.DataRoomPermission{},
		&model.DataRoomFolder{},
		&model.DataRoomDocument{},
		&model.DataRoomDocumentVersion{},
		&model.DataRoomDocumentGrant{},
		&model.DataRoomNDAAcceptance{},
		&model.DataRoomAudit{},
	))

	zapLogger := zap.NewNop()
	nopLogger := logger.NewNopLogger()

	documentRepo := persistence.NewDocumentRepository(db, zapLogger)
	folderRepo := persistence.NewFolderRepository(db, zapLogger)
	roomRepo := persistence.NewDataRoomRepository(db, zapLogger)
	permissionRepo := persistence.NewPermissionRepository(db, zapLogger)
	ndaRepo := persistence.NewNDARepository(db, zapLogger)
	userRepo := persistence.NewUserRepository(db, zapLogger)
	auditRepo := persistence.NewAuditLogRepository(db, zapLogger)

	accessUC := access.NewAccessUseCase(permissionRepo, ndaRepo, documentRepo, roomRepo, nil, nopLogger)
	auditUC := audit.NewAuditUseCase(auditRepo, userRepo, nil, nopLogger)

	f := &fixture{
		auditRepo: auditRepo,
		objects:   &fakeObjectStorage{},
		ownerID:   uuid.NewString(),
	}
	f.documentUC = document.NewDocumentUseCase(documentRepo, folderRepo, roomRepo, userRepo, accessUC, auditUC, f.objects, nil, nopLogger)

	f.room = &model.DataRoom{ListingID: uuid.NewString(), CreatedBy: f.ownerID}
	require.NoError(t, roomRepo.Create(context.Background(), f.room))
	require.NoError(t, permissionRepo.Upsert(context.Background(), &model.DataRoomPermission{
		DataRoomID: f.room.ID,
		UserID:     f.ownerID,
		Role:       model.RoleOwner,
		InvitedBy:  f.ownerID,
	}))

	return f
}

func (f *fixture) owner() model.Identity {
	return model.Identity{UserID: f.ownerID, Email: "owner@example.com"}
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Financials", "Financials"},
		{"strips separators", "Q2/..\\reports", "Q2..reports"},
		{"strips nul", "legal\x00docs", "legaldocs"},
		{"collapses whitespace", "  Board \t  minutes  ", "Board minutes"},
		{"only separators", "///", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, document.SanitizeFolderName(tt.in))
		})
	}

	long := document.SanitizeFolderName(strings.Repeat("x", 3*model.MaxFolderNameLength))
	assert.LessOrEqual(t, len(long), model.MaxFolderNameLength)
}

func TestCreateFolderUnderMissingParentIsInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.documentUC.CreateFolder(context.Background(), f.room.ID, f.owner(), "Legal", uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateFolderBuildsPathFromParent(t *testing.T) {
	f := newFixture(t)

	legal, err := f.documentUC.CreateFolder(context.Background(), f.room.ID, f.owner(), "Legal", "")
	require.NoError(t, err)
	assert.Equal(t, "/Legal", legal.Path)

	contracts, err := f.documentUC.CreateFolder(context.Background(), f.room.ID, f.owner(), "Contracts", legal.ID)
	require.NoError(t, err)
	assert.Equal(t, "/Legal/Contracts", contracts.Path)
	assert.Equal(t, legal.ID, contracts.ParentID.String)
}

func TestBeginUploadRejectsOversizedFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.documentUC.BeginUpload(context.Background(), f.room.ID, f.owner(), "", "Model", "model.xlsx", "application/vnd.ms-excel", document.MaxUploadSizeBytes+1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUploadScanDownloadFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intent, err := f.documentUC.BeginUpload(ctx, f.room.ID, f.owner(), "", "Cap table", "cap-table.xlsx", "application/vnd.ms-excel", 4096)
	require.NoError(t, err)
	assert.Contains(t, intent.UploadURL, "https://objects.test/put/")
	assert.Equal(t, model.ScanPending, intent.Version.VirusScan)

	// Bytes are unreachable until the scanner clears the version.
	_, err = f.documentUC.RequestDownload(ctx, f.room.ID, intent.Version.ID, f.owner())
	assert.ErrorIs(t, err, apperrors.ErrScanPending)

	ver, err := f.documentUC.HandleScanCallback(ctx, intent.Version.ID, model.ScanClean, "")
	require.NoError(t, err)
	assert.Equal(t, model.ScanClean, ver.VirusScan)

	ticket, err := f.documentUC.RequestDownload(ctx, f.room.ID, intent.Version.ID, f.owner())
	require.NoError(t, err)
	assert.Contains(t, ticket.DownloadURL, intent.Version.StorageKey)
	assert.Equal(t, 300, ticket.ExpiresIn)
	assert.Equal(t, "cap-table.xlsx", ticket.FileName)

	// The denied attempt left a trail entry alongside the successful one.
	entries, _, err := f.auditRepo.List(ctx, f.room.ID, repository.AuditFilter{Action: model.AuditActionDownloadDenied}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, intent.Version.ID, entries[0].TargetID)
}

func TestHandleScanCallbackRejectsNonTerminalStatus(t *testing.T) {
	f := newFixture(t)

	intent, err := f.documentUC.BeginUpload(context.Background(), f.room.ID, f.owner(), "", "NDA", "nda.pdf", "application/pdf", 128)
	require.NoError(t, err)

	_, err = f.documentUC.HandleScanCallback(context.Background(), intent.Version.ID, model.ScanPending, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRequestDownloadCrossRoomIsNotFound(t *testing.T) {
	f := newFixture(t)

	intent, err := f.documentUC.BeginUpload(context.Background(), f.room.ID, f.owner(), "", "Deck", "deck.pdf", "application/pdf", 256)
	require.NoError(t, err)

	_, err = f.documentUC.RequestDownload(context.Background(), uuid.NewString(), intent.Version.ID, f.owner())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteDocumentRemovesEveryVersionObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intent, err := f.documentUC.BeginUpload(ctx, f.room.ID, f.owner(), "", "Lease", "lease-v1.pdf", "application/pdf", 512)
	require.NoError(t, err)
	second, err := f.documentUC.BeginVersionUpload(ctx, f.room.ID, intent.Document.ID, f.owner(), "lease-v2.pdf", "application/pdf", 640)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version.Version)

	require.NoError(t, f.documentUC.DeleteDocument(ctx, f.room.ID, intent.Document.ID, f.owner()))
	assert.ElementsMatch(t, []string{intent.Version.StorageKey, second.Version.StorageKey}, f.objects.removed)

	_, err = f.documentUC.GetDocument(ctx, f.room.ID, intent.Document.ID, f.owner())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdatePolicyRejectsUnknownGrantUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intent, err := f.documentUC.BeginUpload(ctx, f.room.ID, f.owner(), "", "Payroll", "payroll.csv", "text/csv", 2048)
	require.NoError(t, err)

	vis := model.VisibilityCustom
	_, err = f.documentUC.UpdatePolicy(ctx, f.room.ID, intent.Document.ID, f.owner(), repository.PolicyUpdate{
		Visibility:     &vis,
		GrantsProvided: true,
		GrantUserIDs:   []string{uuid.NewString()},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
