package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentStatus tracks usability of a document, driven by the scan
// outcome of its latest version.
type DocumentStatus string

const (
	DocumentPendingScan DocumentStatus = "pending_scan"
	DocumentReady       DocumentStatus = "ready"
	DocumentBlocked     DocumentStatus = "blocked"
)

// Visibility controls who inside a room may see a document.
type Visibility string

const (
	// VisibilityDefault makes the document visible to every room member.
	VisibilityDefault Visibility = "DEFAULT"
	// VisibilityCustom restricts the document to explicit grants.
	VisibilityCustom Visibility = "CUSTOM"
)

func (v Visibility) Valid() bool {
	return v == VisibilityDefault || v == VisibilityCustom
}

// ScanStatus is the virus-scan state of a single version.
type ScanStatus string

const (
	ScanPending ScanStatus = "pending"
	ScanClean   ScanStatus = "clean"
	ScanBlocked ScanStatus = "blocked"
)

// Terminal reports whether a scan outcome has been delivered.
func (s ScanStatus) Terminal() bool {
	return s == ScanClean || s == ScanBlocked
}

// AnalysisStatus is the state of the optional AI quality analysis of a version.
type AnalysisStatus string

const (
	AnalysisNone      AnalysisStatus = ""
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisAnalyzing AnalysisStatus = "analyzing"
	AnalysisDone      AnalysisStatus = "done"
	AnalysisFailed    AnalysisStatus = "failed"
)

// DataRoomDocument belongs to a folder. CurrentVersionID points at the
// latest DataRoomDocumentVersion; Status mirrors that version's scan outcome.
type DataRoomDocument struct {
	ID                string         `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DataRoomID        string         `gorm:"type:VARCHAR(36);not null;index" json:"dataRoomId"`
	FolderID          string         `gorm:"type:VARCHAR(36);not null;index" json:"folderId"`
	Title             string         `gorm:"type:VARCHAR(255);not null" json:"title"`
	Status            DocumentStatus `gorm:"type:VARCHAR(16);not null;default:pending_scan" json:"status"`
	Visibility        Visibility     `gorm:"type:VARCHAR(16);not null;default:DEFAULT" json:"visibility"`
	DownloadBlocked   bool           `gorm:"not null;default:false" json:"downloadBlocked"`
	WatermarkRequired bool           `gorm:"column:watermark_required;not null;default:false" json:"watermarkRequired"`
	CurrentVersionID  sql.NullString `gorm:"type:VARCHAR(36)" json:"currentVersionId"`
	CreatedBy         string         `gorm:"type:VARCHAR(36);not null" json:"createdBy"`
	CreatedAt         time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updatedAt"`
}

func (d *DataRoomDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DataRoomDocumentVersion is immutable once created. Version numbers are
// monotonically increasing per document starting at 1; the unique index on
// (document_id, version) is the guard against count-then-insert races.
type DataRoomDocumentVersion struct {
	ID         string         `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DocumentID string         `gorm:"type:VARCHAR(36);not null;uniqueIndex:idx_document_version;index" json:"documentId"`
	Version    int            `gorm:"not null;uniqueIndex:idx_document_version" json:"version"`
	FileName   string         `gorm:"type:VARCHAR(255);not null" json:"fileName"`
	MimeType   string         `gorm:"type:VARCHAR(128);not null" json:"mimeType"`
	Size       int64          `gorm:"not null" json:"size"`
	StorageKey string         `gorm:"type:VARCHAR(255);not null" json:"-"`
	VirusScan  ScanStatus     `gorm:"type:VARCHAR(10);not null;default:pending" json:"virusScan"`
	ScanReason sql.NullString `gorm:"type:TEXT" json:"-"`

	AnalysisStatus   AnalysisStatus  `gorm:"type:VARCHAR(12)" json:"analysisStatus,omitempty"`
	AnalysisScore    sql.NullFloat64 `gorm:"type:DOUBLE PRECISION" json:"-"`
	AnalysisFindings json.RawMessage `gorm:"type:JSONB" json:"analysisFindings,omitempty"`

	UploadedBy string    `gorm:"type:VARCHAR(36);not null" json:"uploadedBy"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

func (v *DataRoomDocumentVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// DataRoomDocumentGrant is an explicit allow-list entry, consulted only when
// the owning document's visibility is CUSTOM. Exactly one of UserID or Email
// is set; emails are stored lowercased.
type DataRoomDocumentGrant struct {
	ID         string         `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DocumentID string         `gorm:"type:VARCHAR(36);not null;index;uniqueIndex:idx_grant_user;uniqueIndex:idx_grant_email" json:"documentId"`
	UserID     sql.NullString `gorm:"type:VARCHAR(36);uniqueIndex:idx_grant_user" json:"userId"`
	Email      sql.NullString `gorm:"type:VARCHAR(255);uniqueIndex:idx_grant_email" json:"email"`
	GrantedBy  string         `gorm:"type:VARCHAR(36);not null" json:"grantedBy"`
	CreatedAt  time.Time      `gorm:"not null" json:"createdAt"`
}

func (g *DataRoomDocumentGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
