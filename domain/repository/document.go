package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dealdeck/dataroom-api/domain/model"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *model.DataRoomFolder) error
	GetByID(ctx context.Context, roomID, id string) (*model.DataRoomFolder, error)
	// EnsureRoot returns the root folder of a room, creating it when absent.
	EnsureRoot(ctx context.Context, roomID, createdBy string) (*model.DataRoomFolder, error)
	// NextSiblingOrder returns max(order)+1 among the children of parentID.
	NextSiblingOrder(ctx context.Context, roomID string, parentID sql.NullString) (int, error)
	ListByRoom(ctx context.Context, roomID string) ([]model.DataRoomFolder, error)
}

// PolicyUpdate carries the optional policy fields of a document update.
// Nil pointers leave the current value untouched.
type PolicyUpdate struct {
	Visibility        *model.Visibility
	DownloadBlocked   *bool
	WatermarkRequired *bool
	// GrantUserIDs and GrantEmails form the desired grant set; consulted
	// only when GrantsProvided is set and the resulting visibility is
	// CUSTOM. An update that omits grants leaves the stored set alone,
	// matching the nil-pointer fields above.
	GrantsProvided bool
	GrantUserIDs   []string
	GrantEmails    []string
	// GrantedBy is recorded on newly created grant rows.
	GrantedBy string
}

type DocumentRepository interface {
	// CreateWithFirstVersion persists the document and version 1 atomically
	// and points the document at the new version.
	CreateWithFirstVersion(ctx context.Context, doc *model.DataRoomDocument, ver *model.DataRoomDocumentVersion) error
	// AddVersion assigns the next version number inside the insert
	// transaction. A duplicate-version race surfaces as apperrors.ErrConflict.
	AddVersion(ctx context.Context, documentID string, ver *model.DataRoomDocumentVersion) error
	GetByID(ctx context.Context, roomID, id string) (*model.DataRoomDocument, error)
	// GetVersion resolves a version together with its owning document; the
	// document carries the room the caller must be checked against.
	GetVersion(ctx context.Context, versionID string) (*model.DataRoomDocumentVersion, *model.DataRoomDocument, error)
	ListByFolder(ctx context.Context, roomID, folderID string) ([]model.DataRoomDocument, error)

	// UpdatePolicy applies the update and reconciles grants in one
	// transaction. Leaving CUSTOM clears all grants for the document.
	UpdatePolicy(ctx context.Context, documentID string, update PolicyUpdate) (*model.DataRoomDocument, error)
	ListGrants(ctx context.Context, documentID string) ([]model.DataRoomDocumentGrant, error)
	// HasGrant reports whether the identity matches a grant row by user ID
	// or normalized email.
	HasGrant(ctx context.Context, documentID string, identity model.Identity) (bool, error)

	// Delete removes the document with its versions and grants in one
	// transaction and returns the orphaned storage keys for cleanup.
	Delete(ctx context.Context, documentID string) ([]string, error)

	// SetScanResult updates the version's scan state and the owning
	// document's status atomically. Idempotent for terminal versions.
	SetScanResult(ctx context.Context, versionID string, status model.ScanStatus, reason string) (*model.DataRoomDocumentVersion, *model.DataRoomDocument, error)
	SetAnalysis(ctx context.Context, versionID string, status model.AnalysisStatus, score *float64, findings json.RawMessage) error
}
