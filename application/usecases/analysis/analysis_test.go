package analysis_test

import (
	"context"
	"testing"
	"time"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/application/usecases/analysis"
	"github.com/dealdeck/dataroom-api/application/usecases/audit"
	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/infrastructure/llm"
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

type fakeLLM struct {
	content string
	err     error
	release chan struct{}
}

func (f *fakeLLM) Complete(ctx context.Context, _ []llm.Message, _ llm.Options) (*llm.Result, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Content: f.content, Provider: "fake"}, nil
}

type fixture struct {
	analysisUC analysis.AnalysisUseCase
	room       *model.DataRoom
	version    *model.DataRoomDocumentVersion
	ownerID    string
}

func newFixture(t *testing.T, client llm.Client) *fixture {
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
		&model.DataRoomDocument{},
		&model.DataRoomDocumentVersion{},
		&model.DataRoomDocumentGrant{},
		&model.DataRoomNDAAcceptance{},
		&model.DataRoomAudit{},
	))

	zapLogger := zap.NewNop()
	nopLogger := logger.NewNopLogger()

	documentRepo := persistence.NewDocumentRepository(db, zapLogger)
	roomRepo := persistence.NewDataRoomRepository(db, zapLogger)
	permissionRepo := persistence.NewPermissionRepository(db, zapLogger)
	ndaRepo := persistence.NewNDARepository(db, zapLogger)
	userRepo := persistence.NewUserRepository(db, zapLogger)
	auditRepo := persistence.NewAuditLogRepository(db, zapLogger)

	accessUC := access.NewAccessUseCase(permissionRepo, ndaRepo, documentRepo, roomRepo, nil, nopLogger)
	auditUC := audit.NewAuditUseCase(auditRepo, userRepo, nil, nopLogger)

	f := &fixture{
		analysisUC: analysis.NewAnalysisUseCase(documentRepo, accessUC, auditUC, client, nopLogger),
		ownerID:    uuid.NewString(),
	}

	f.room = &model.DataRoom{ListingID: uuid.NewString(), CreatedBy: f.ownerID}
	require.NoError(t, roomRepo.Create(context.Background(), f.room))
	require.NoError(t, permissionRepo.Upsert(context.Background(), &model.DataRoomPermission{
		DataRoomID: f.room.ID,
		UserID:     f.ownerID,
		Role:       model.RoleOwner,
		InvitedBy:  f.ownerID,
	}))

	doc := &model.DataRoomDocument{
		DataRoomID: f.room.ID,
		FolderID:   uuid.NewString(),
		Title:      "Financial statements",
		CreatedBy:  f.ownerID,
	}
	ver := &model.DataRoomDocumentVersion{
		FileName:   "financials.pdf",
		MimeType:   "application/pdf",
		Size:       1024,
		StorageKey: f.room.ID + "/" + uuid.NewString(),
		UploadedBy: f.ownerID,
	}
	require.NoError(t, documentRepo.CreateWithFirstVersion(context.Background(), doc, ver))
	f.version = ver

	return f
}

func (f *fixture) owner() model.Identity {
	return model.Identity{UserID: f.ownerID}
}

func TestTriggerWithoutProviderFails(t *testing.T) {
	f := newFixture(t, nil)

	err := f.analysisUC.Trigger(context.Background(), f.room.ID, f.version.ID, f.owner())
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestTriggerRunsToCompletion(t *testing.T) {
	client := &fakeLLM{content: "```json\n{\"score\": 82, \"findings\": [{\"severity\": \"info\", \"message\": \"complete\"}]}\n```"}
	f := newFixture(t, client)
	ctx := context.Background()

	require.NoError(t, f.analysisUC.Trigger(ctx, f.room.ID, f.version.ID, f.owner()))

	require.Eventually(t, func() bool {
		view, err := f.analysisUC.GetStatus(ctx, f.room.ID, f.version.ID, f.owner())
		return err == nil && view.Status == model.AnalysisDone
	}, 5*time.Second, 10*time.Millisecond)

	view, err := f.analysisUC.GetStatus(ctx, f.room.ID, f.version.ID, f.owner())
	require.NoError(t, err)
	require.NotNil(t, view.Score)
	assert.Equal(t, float64(82), *view.Score)
	assert.Contains(t, string(view.Findings), "complete")
}

func TestTriggerWhileInFlightIsConflict(t *testing.T) {
	client := &fakeLLM{content: `{"score": 50, "findings": []}`, release: make(chan struct{})}
	f := newFixture(t, client)
	ctx := context.Background()

	require.NoError(t, f.analysisUC.Trigger(ctx, f.room.ID, f.version.ID, f.owner()))

	err := f.analysisUC.Trigger(ctx, f.room.ID, f.version.ID, f.owner())
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	close(client.release)
	require.Eventually(t, func() bool {
		view, err := f.analysisUC.GetStatus(ctx, f.room.ID, f.version.ID, f.owner())
		return err == nil && view.Status == model.AnalysisDone
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTriggerFailureIsRecordedNotRetried(t *testing.T) {
	client := &fakeLLM{content: "not json at all"}
	f := newFixture(t, client)
	ctx := context.Background()

	require.NoError(t, f.analysisUC.Trigger(ctx, f.room.ID, f.version.ID, f.owner()))

	require.Eventually(t, func() bool {
		view, err := f.analysisUC.GetStatus(ctx, f.room.ID, f.version.ID, f.owner())
		return err == nil && view.Status == model.AnalysisFailed
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTriggerIsManagerOnly(t *testing.T) {
	f := newFixture(t, &fakeLLM{content: `{"score": 10, "findings": []}`})

	err := f.analysisUC.Trigger(context.Background(), f.room.ID, f.version.ID, model.Identity{UserID: uuid.NewString()})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
