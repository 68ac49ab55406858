package document

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/application/usecases/audit"
	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/metrics"
	"github.com/dealdeck/dataroom-api/infrastructure/storage"
	"go.uber.org/zap"
)

// MaxUploadSizeBytes caps a single version upload (500 MiB).
const MaxUploadSizeBytes = 500 << 20

// UploadIntent is the response to a begin-upload call: the created
// entities plus the single-use PUT credential.
type UploadIntent struct {
	Document  *model.DataRoomDocument        `json:"document"`
	Version   *model.DataRoomDocumentVersion `json:"version"`
	UploadURL string                         `json:"uploadUrl"`
	ExpiresIn int                            `json:"expiresIn"`
}

// DownloadTicket is a time-limited GET credential for one version.
type DownloadTicket struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"`
	FileName    string `json:"fileName"`
}

// Policy is a document's visibility policy with its grant rows.
type Policy struct {
	Document *model.DataRoomDocument       `json:"document"`
	Grants   []model.DataRoomDocumentGrant `json:"grants"`
}

type DocumentUseCase interface {
	CreateFolder(ctx context.Context, roomID string, actor model.Identity, name, parentID string) (*model.DataRoomFolder, error)
	ListFolders(ctx context.Context, roomID string, actor model.Identity) ([]model.DataRoomFolder, error)
	ListFolderDocuments(ctx context.Context, roomID, folderID string, actor model.Identity) ([]model.DataRoomDocument, error)

	BeginUpload(ctx context.Context, roomID string, actor model.Identity, folderID, title, fileName, mimeType string, size int64) (*UploadIntent, error)
	BeginVersionUpload(ctx context.Context, roomID, documentID string, actor model.Identity, fileName, mimeType string, size int64) (*UploadIntent, error)

	GetDocument(ctx context.Context, roomID, documentID string, actor model.Identity) (*model.DataRoomDocument, error)
	UpdatePolicy(ctx context.Context, roomID, documentID string, actor model.Identity, update repository.PolicyUpdate) (*Policy, error)
	GetPolicy(ctx context.Context, roomID, documentID string, actor model.Identity) (*Policy, error)

	RequestDownload(ctx context.Context, roomID, versionID string, actor model.Identity) (*DownloadTicket, error)
	DeleteDocument(ctx context.Context, roomID, documentID string, actor model.Identity) error

	HandleScanCallback(ctx context.Context, versionID string, status model.ScanStatus, reason string) (*model.DataRoomDocumentVersion, error)
}

type documentUseCase struct {
	documentRepo repository.DocumentRepository
	folderRepo   repository.FolderRepository
	roomRepo     repository.DataRoomRepository
	userRepo     repository.UserRepository
	accessUC     access.AccessUseCase
	auditUC      audit.AuditUseCase
	objects      storage.ObjectStorage
	metrics      *metrics.Manager
	logger       *logger.Logger
}

func NewDocumentUseCase(
	documentRepo repository.DocumentRepository,
	folderRepo repository.FolderRepository,
	roomRepo repository.DataRoomRepository,
	userRepo repository.UserRepository,
	accessUC access.AccessUseCase,
	auditUC audit.AuditUseCase,
	objects storage.ObjectStorage,
	metricsManager *metrics.Manager,
	logger *logger.Logger,
) DocumentUseCase {
	return &documentUseCase{
		documentRepo: documentRepo,
		folderRepo:   folderRepo,
		roomRepo:     roomRepo,
		userRepo:     userRepo,
		accessUC:     accessUC,
		auditUC:      auditUC,
		objects:      objects,
		metrics:      metricsManager,
		logger:       logger,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFolderName normalizes a folder name into a safe path segment.
// Returns "" when nothing usable remains.
func SanitizeFolderName(name string) string {
	name = strings.NewReplacer("/", "", "\\", "", "\x00", "").Replace(name)
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if len(name) > model.MaxFolderNameLength {
		name = strings.TrimSpace(name[:model.MaxFolderNameLength])
	}
	return name
}

func (uc *documentUseCase) CreateFolder(ctx context.Context, roomID string, actor model.Identity, name, parentID string) (*model.DataRoomFolder, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionUpload, nil); err != nil {
		return nil, err
	}

	name = SanitizeFolderName(name)
	if name == "" {
		return nil, apperrors.Invalid("folder name is empty after sanitization")
	}

	var parent *model.DataRoomFolder
	var err error
	if parentID == "" {
		parent, err = uc.folderRepo.EnsureRoot(ctx, roomID, actor.UserID)
	} else {
		// A non-existent parent is a client error, never silently root.
		parent, err = uc.folderRepo.GetByID(ctx, roomID, parentID)
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.Invalid("parent folder does not exist")
		}
	}
	if err != nil {
		return nil, err
	}

	order, err := uc.folderRepo.NextSiblingOrder(ctx, roomID, sql.NullString{String: parent.ID, Valid: true})
	if err != nil {
		return nil, err
	}

	path := parent.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	folder := &model.DataRoomFolder{
		DataRoomID: roomID,
		ParentID:   sql.NullString{String: parent.ID, Valid: true},
		Name:       name,
		Path:       path + name,
		Order:      order,
		CreatedBy:  actor.UserID,
	}
	if err := uc.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionFolderCreate, model.AuditTargetFolder, folder.ID, map[string]any{
		"name": folder.Name,
		"path": folder.Path,
	})
	return folder, nil
}

func (uc *documentUseCase) ListFolders(ctx context.Context, roomID string, actor model.Identity) ([]model.DataRoomFolder, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionView, nil); err != nil {
		return nil, err
	}
	return uc.folderRepo.ListByRoom(ctx, roomID)
}

func (uc *documentUseCase) ListFolderDocuments(ctx context.Context, roomID, folderID string, actor model.Identity) ([]model.DataRoomDocument, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionView, nil); err != nil {
		return nil, err
	}
	if _, err := uc.folderRepo.GetByID(ctx, roomID, folderID); err != nil {
		return nil, err
	}

	documents, err := uc.documentRepo.ListByFolder(ctx, roomID, folderID)
	if err != nil {
		return nil, err
	}

	// CUSTOM documents are filtered down to the caller's grants; the
	// listing must not reveal titles the caller cannot open.
	visible := make([]model.DataRoomDocument, 0, len(documents))
	for i := range documents {
		doc := documents[i]
		if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionView, &doc); err != nil {
			if errors.Is(err, apperrors.ErrForbidden) {
				continue
			}
			return nil, err
		}
		visible = append(visible, doc)
	}
	return visible, nil
}

func validateUploadInput(fileName, mimeType string, size int64) error {
	if strings.TrimSpace(fileName) == "" {
		return apperrors.Invalid("fileName is required")
	}
	if strings.TrimSpace(mimeType) == "" {
		return apperrors.Invalid("mimeType is required")
	}
	if size <= 0 {
		return apperrors.Invalid("size must be positive")
	}
	if size > MaxUploadSizeBytes {
		return apperrors.Invalid("file exceeds maximum upload size")
	}
	return nil
}

func (uc *documentUseCase) BeginUpload(ctx context.Context, roomID string, actor model.Identity, folderID, title, fileName, mimeType string, size int64) (*UploadIntent, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionUpload, nil); err != nil {
		return nil, err
	}
	if err := validateUploadInput(fileName, mimeType, size); err != nil {
		return nil, err
	}

	var folder *model.DataRoomFolder
	var err error
	if folderID == "" {
		folder, err = uc.folderRepo.EnsureRoot(ctx, roomID, actor.UserID)
	} else {
		folder, err = uc.folderRepo.GetByID(ctx, roomID, folderID)
	}
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(fileName)
	}

	doc := &model.DataRoomDocument{
		DataRoomID: roomID,
		FolderID:   folder.ID,
		Title:      title,
		Status:     model.DocumentPendingScan,
		Visibility: model.VisibilityDefault,
		CreatedBy:  actor.UserID,
	}
	ver := &model.DataRoomDocumentVersion{
		Version:    1,
		FileName:   fileName,
		MimeType:   mimeType,
		Size:       size,
		StorageKey: storage.BuildStorageKey(roomID, fileName),
		VirusScan:  model.ScanPending,
		UploadedBy: actor.UserID,
	}
	if err := uc.documentRepo.CreateWithFirstVersion(ctx, doc, ver); err != nil {
		return nil, err
	}

	uploadURL, expiresIn, err := uc.objects.IssueUploadURL(ctx, ver.StorageKey, mimeType)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.PresignedURLs.WithLabelValues("put").Inc()
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionUploadIntent, model.AuditTargetDocument, doc.ID, map[string]any{
		"fileName": fileName,
		"size":     size,
		"folderId": folder.ID,
	})
	return &UploadIntent{Document: doc, Version: ver, UploadURL: uploadURL, ExpiresIn: expiresIn}, nil
}

func (uc *documentUseCase) BeginVersionUpload(ctx context.Context, roomID, documentID string, actor model.Identity, fileName, mimeType string, size int64) (*UploadIntent, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionUpload, nil); err != nil {
		return nil, err
	}
	if err := validateUploadInput(fileName, mimeType, size); err != nil {
		return nil, err
	}

	doc, err := uc.documentRepo.GetByID(ctx, roomID, documentID)
	if err != nil {
		return nil, err
	}

	ver := &model.DataRoomDocumentVersion{
		FileName:   fileName,
		MimeType:   mimeType,
		Size:       size,
		StorageKey: storage.BuildStorageKey(roomID, fileName),
		VirusScan:  model.ScanPending,
		UploadedBy: actor.UserID,
	}
	if err := uc.documentRepo.AddVersion(ctx, doc.ID, ver); err != nil {
		return nil, err
	}
	doc.CurrentVersionID = sql.NullString{String: ver.ID, Valid: true}
	doc.Status = model.DocumentPendingScan

	uploadURL, expiresIn, err := uc.objects.IssueUploadURL(ctx, ver.StorageKey, mimeType)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.PresignedURLs.WithLabelValues("put").Inc()
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionVersionUpload, model.AuditTargetVersion, ver.ID, map[string]any{
		"documentId": doc.ID,
		"version":    ver.Version,
		"fileName":   fileName,
	})
	return &UploadIntent{Document: doc, Version: ver, UploadURL: uploadURL, ExpiresIn: expiresIn}, nil
}

func (uc *documentUseCase) GetDocument(ctx context.Context, roomID, documentID string, actor model.Identity) (*model.DataRoomDocument, error) {
	doc, err := uc.documentRepo.GetByID(ctx, roomID, documentID)
	if err != nil {
		return nil, err
	}
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionView, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (uc *documentUseCase) UpdatePolicy(ctx context.Context, roomID, documentID string, actor model.Identity, update repository.PolicyUpdate) (*Policy, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionManagePolicy, nil); err != nil {
		return nil, err
	}

	if update.Visibility != nil && !update.Visibility.Valid() {
		return nil, apperrors.Invalid("unknown visibility")
	}

	// Reject unknown grantee user IDs up front; emails may belong to
	// people who have no account yet.
	if len(update.GrantUserIDs) > 0 {
		users, err := uc.userRepo.GetByIDs(ctx, update.GrantUserIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range update.GrantUserIDs {
			if _, ok := users[id]; !ok {
				return nil, apperrors.Invalid("unknown grant user " + id)
			}
		}
	}
	normalized := make([]string, 0, len(update.GrantEmails))
	for _, email := range update.GrantEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			normalized = append(normalized, email)
		}
	}
	update.GrantEmails = normalized
	update.GrantedBy = actor.UserID

	if _, err := uc.documentRepo.GetByID(ctx, roomID, documentID); err != nil {
		return nil, err
	}

	doc, err := uc.documentRepo.UpdatePolicy(ctx, documentID, update)
	if err != nil {
		return nil, err
	}
	grants, err := uc.documentRepo.ListGrants(ctx, documentID)
	if err != nil {
		return nil, err
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionPolicyUpdate, model.AuditTargetDocument, doc.ID, map[string]any{
		"visibility":        doc.Visibility,
		"downloadBlocked":   doc.DownloadBlocked,
		"watermarkRequired": doc.WatermarkRequired,
		"grantCount":        len(grants),
	})
	return &Policy{Document: doc, Grants: grants}, nil
}

func (uc *documentUseCase) GetPolicy(ctx context.Context, roomID, documentID string, actor model.Identity) (*Policy, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionManagePolicy, nil); err != nil {
		return nil, err
	}
	doc, err := uc.documentRepo.GetByID(ctx, roomID, documentID)
	if err != nil {
		return nil, err
	}
	grants, err := uc.documentRepo.ListGrants(ctx, documentID)
	if err != nil {
		return nil, err
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionPolicyRead, model.AuditTargetDocument, doc.ID, nil)
	return &Policy{Document: doc, Grants: grants}, nil
}

func (uc *documentUseCase) RequestDownload(ctx context.Context, roomID, versionID string, actor model.Identity) (*DownloadTicket, error) {
	ver, doc, err := uc.documentRepo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if doc.DataRoomID != roomID {
		return nil, apperrors.ErrNotFound
	}

	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionDownload, doc); err != nil {
		uc.recordDenied(ctx, roomID, actor, ver, err)
		return nil, err
	}
	// The scan gate applies to the exact version being fetched, owners
	// included; an old clean version stays reachable while a newer one
	// is still pending.
	if err := access.CheckVersionScan(ver); err != nil {
		uc.recordDenied(ctx, roomID, actor, ver, err)
		return nil, err
	}

	url, expiresIn, err := uc.objects.IssueDownloadURL(ctx, ver.StorageKey, ver.FileName, ver.MimeType)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.PresignedURLs.WithLabelValues("get").Inc()
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionDownload, model.AuditTargetVersion, ver.ID, map[string]any{
		"documentId": doc.ID,
		"version":    ver.Version,
	})
	return &DownloadTicket{DownloadURL: url, ExpiresIn: expiresIn, FileName: ver.FileName}, nil
}

func (uc *documentUseCase) recordDenied(ctx context.Context, roomID string, actor model.Identity, ver *model.DataRoomDocumentVersion, cause error) {
	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionDownloadDenied, model.AuditTargetVersion, ver.ID, map[string]any{
		"reason": cause.Error(),
	})
}

func (uc *documentUseCase) DeleteDocument(ctx context.Context, roomID, documentID string, actor model.Identity) error {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionDelete, nil); err != nil {
		return err
	}
	doc, err := uc.documentRepo.GetByID(ctx, roomID, documentID)
	if err != nil {
		return err
	}

	storageKeys, err := uc.documentRepo.Delete(ctx, doc.ID)
	if err != nil {
		return err
	}

	// Object cleanup is best effort; an orphaned blob is unreachable
	// once its version row is gone.
	for _, key := range storageKeys {
		if err := uc.objects.RemoveObject(ctx, key); err != nil {
			uc.logger.Warn("orphaned object cleanup failed",
				zap.String("storageKey", key),
				zap.Error(err),
			)
		}
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionDelete, model.AuditTargetDocument, doc.ID, map[string]any{
		"title": doc.Title,
	})
	return nil
}

func (uc *documentUseCase) HandleScanCallback(ctx context.Context, versionID string, status model.ScanStatus, reason string) (*model.DataRoomDocumentVersion, error) {
	if !status.Terminal() {
		return nil, apperrors.Invalid("scan status must be clean or blocked")
	}

	ver, doc, err := uc.documentRepo.SetScanResult(ctx, versionID, status, reason)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.ScanCallbacks.WithLabelValues(string(ver.VirusScan)).Inc()
	}

	uc.auditUC.Record(ctx, doc.DataRoomID, model.Identity{}, model.AuditActionScanResult, model.AuditTargetVersion, ver.ID, map[string]any{
		"status": ver.VirusScan,
		"reason": reason,
	})
	return ver, nil
}
