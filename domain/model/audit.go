package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions. Every access-relevant action pairs with exactly one entry.
const (
	AuditActionRoomInit         = "room.init"
	AuditActionPermissionGrant  = "permission.grant"
	AuditActionPermissionRevoke = "permission.revoke"
	AuditActionFolderCreate     = "folder.create"
	AuditActionUploadIntent     = "document.upload_intent"
	AuditActionVersionUpload    = "document.version_upload"
	AuditActionPolicyUpdate     = "document.policy_update"
	AuditActionPolicyRead       = "document.policy_read"
	AuditActionDownload         = "document.download"
	AuditActionDownloadDenied   = "document.download_denied"
	AuditActionDelete           = "document.delete"
	AuditActionNDAAccept        = "nda.accept"
	AuditActionScanResult       = "scan.result"
	AuditActionAnalysis         = "analysis.trigger"
)

// Audit target types.
const (
	AuditTargetRoom     = "dataroom"
	AuditTargetFolder   = "folder"
	AuditTargetDocument = "document"
	AuditTargetVersion  = "version"
	AuditTargetUser     = "user"
)

// DataRoomAudit is append-only. No update or delete path exists anywhere
// in the repository contract.
type DataRoomAudit struct {
	ID         string         `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	DataRoomID string         `gorm:"type:VARCHAR(36);not null;index" json:"dataRoomId"`
	ActorID    sql.NullString `gorm:"type:VARCHAR(36);index" json:"actorId"`
	ActorEmail sql.NullString `gorm:"type:VARCHAR(255)" json:"actorEmail"`
	Action     string         `gorm:"type:VARCHAR(64);not null;index" json:"action"`
	TargetType string         `gorm:"type:VARCHAR(32);not null" json:"targetType"`
	TargetID   string         `gorm:"type:VARCHAR(36);not null" json:"targetId"`
	Meta       json.RawMessage `gorm:"type:JSONB" json:"meta,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (a *DataRoomAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
