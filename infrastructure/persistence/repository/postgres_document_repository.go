package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresDocumentRepository struct {
	baseRepository
}

func NewDocumentRepository(db *gorm.DB, zapLogger *zap.Logger) repository.DocumentRepository {
	return &PostgresDocumentRepository{newBaseRepository(db, zapLogger)}
}

func (r *PostgresDocumentRepository) CreateWithFirstVersion(ctx context.Context, doc *model.DataRoomDocument, ver *model.DataRoomDocumentVersion) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Status = model.DocumentPendingScan
	ver.CreatedAt = now
	ver.Version = 1
	ver.VirusScan = model.ScanPending

	err := r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		ver.DocumentID = doc.ID
		if err := tx.Create(ver).Error; err != nil {
			return err
		}
		return tx.Model(doc).Update("current_version_id", ver.ID).Error
	})
	if err != nil {
		r.logger.Error(ctx, err.Error())
		return translateError(err)
	}
	doc.CurrentVersionID = sql.NullString{String: ver.ID, Valid: true}
	return nil
}

func (r *PostgresDocumentRepository) AddVersion(ctx context.Context, documentID string, ver *model.DataRoomDocumentVersion) error {
	ver.DocumentID = documentID
	ver.CreatedAt = time.Now().UTC()
	ver.VirusScan = model.ScanPending

	// next = max(version)+1 inside the insert transaction; the unique
	// index on (document_id, version) turns a concurrent race into
	// ErrConflict instead of a silent duplicate.
	err := r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion sql.NullInt64
		if err := tx.Model(&model.DataRoomDocumentVersion{}).
			Select("MAX(version)").
			Where("document_id = ?", documentID).
			Scan(&maxVersion).Error; err != nil {
			return err
		}
		ver.Version = int(maxVersion.Int64) + 1

		if err := tx.Create(ver).Error; err != nil {
			return err
		}

		// A new upload restarts the scan gate for the document; a blocked
		// prior version does not automatically unblock it either way.
		return tx.Model(&model.DataRoomDocument{}).
			Where("id = ?", documentID).
			Updates(map[string]any{
				"current_version_id": ver.ID,
				"status":             model.DocumentPendingScan,
				"updated_at":         time.Now().UTC(),
			}).Error
	})
	if err != nil {
		r.logger.Error(ctx, err.Error())
		return translateError(err)
	}
	return nil
}

func (r *PostgresDocumentRepository) GetByID(ctx context.Context, roomID, id string) (*model.DataRoomDocument, error) {
	var doc model.DataRoomDocument
	err := r.database.WithContext(ctx).
		Where("id = ? AND data_room_id = ?", id, roomID).
		First(&doc).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &doc, nil
}

func (r *PostgresDocumentRepository) GetVersion(ctx context.Context, versionID string) (*model.DataRoomDocumentVersion, *model.DataRoomDocument, error) {
	var ver model.DataRoomDocumentVersion
	if err := r.database.WithContext(ctx).Where("id = ?", versionID).First(&ver).Error; err != nil {
		return nil, nil, translateError(err)
	}

	var doc model.DataRoomDocument
	if err := r.database.WithContext(ctx).Where("id = ?", ver.DocumentID).First(&doc).Error; err != nil {
		return nil, nil, translateError(err)
	}
	return &ver, &doc, nil
}

func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, roomID, folderID string) ([]model.DataRoomDocument, error) {
	var docs []model.DataRoomDocument
	err := r.database.WithContext(ctx).
		Where("data_room_id = ? AND folder_id = ?", roomID, folderID).
		Order("title ASC").
		Find(&docs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return docs, nil
}

func (r *PostgresDocumentRepository) UpdatePolicy(ctx context.Context, documentID string, update repository.PolicyUpdate) (*model.DataRoomDocument, error) {
	var doc model.DataRoomDocument

	err := r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", documentID).First(&doc).Error; err != nil {
			return err
		}

		changes := map[string]any{"updated_at": time.Now().UTC()}
		if update.Visibility != nil {
			doc.Visibility = *update.Visibility
			changes["visibility"] = *update.Visibility
		}
		if update.DownloadBlocked != nil {
			doc.DownloadBlocked = *update.DownloadBlocked
			changes["download_blocked"] = *update.DownloadBlocked
		}
		if update.WatermarkRequired != nil {
			doc.WatermarkRequired = *update.WatermarkRequired
			changes["watermark_required"] = *update.WatermarkRequired
		}

		if err := tx.Model(&model.DataRoomDocument{}).Where("id = ?", documentID).Updates(changes).Error; err != nil {
			return err
		}

		if doc.Visibility != model.VisibilityCustom {
			// Leaving CUSTOM clears all grants so stale entries cannot
			// resurrect on a later switch back.
			return tx.Where("document_id = ?", documentID).
				Delete(&model.DataRoomDocumentGrant{}).Error
		}

		if !update.GrantsProvided {
			// A partial update that never mentioned grants must not
			// touch the stored set.
			return nil
		}
		return reconcileGrants(tx, documentID, update)
	})
	if err != nil {
		r.logger.Error(ctx, err.Error())
		return nil, translateError(err)
	}
	return &doc, nil
}

// reconcileGrants makes the stored grant set equal the desired set.
// Idempotent under repeated calls with the same input.
func reconcileGrants(tx *gorm.DB, documentID string, update repository.PolicyUpdate) error {
	desiredUsers := make(map[string]bool, len(update.GrantUserIDs))
	for _, id := range update.GrantUserIDs {
		if id != "" {
			desiredUsers[id] = true
		}
	}
	desiredEmails := make(map[string]bool, len(update.GrantEmails))
	for _, email := range update.GrantEmails {
		if email != "" {
			desiredEmails[email] = true
		}
	}

	var existing []model.DataRoomDocumentGrant
	if err := tx.Where("document_id = ?", documentID).Find(&existing).Error; err != nil {
		return err
	}

	for _, grant := range existing {
		keep := false
		switch {
		case grant.UserID.Valid:
			if desiredUsers[grant.UserID.String] {
				keep = true
				delete(desiredUsers, grant.UserID.String)
			}
		case grant.Email.Valid:
			if desiredEmails[grant.Email.String] {
				keep = true
				delete(desiredEmails, grant.Email.String)
			}
		}
		if !keep {
			if err := tx.Where("id = ?", grant.ID).Delete(&model.DataRoomDocumentGrant{}).Error; err != nil {
				return err
			}
		}
	}

	now := time.Now().UTC()
	for userID := range desiredUsers {
		grant := model.DataRoomDocumentGrant{
			DocumentID: documentID,
			UserID:     sql.NullString{String: userID, Valid: true},
			GrantedBy:  update.GrantedBy,
			CreatedAt:  now,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}
	}
	for email := range desiredEmails {
		grant := model.DataRoomDocumentGrant{
			DocumentID: documentID,
			Email:      sql.NullString{String: email, Valid: true},
			GrantedBy:  update.GrantedBy,
			CreatedAt:  now,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresDocumentRepository) ListGrants(ctx context.Context, documentID string) ([]model.DataRoomDocumentGrant, error) {
	var grants []model.DataRoomDocumentGrant
	err := r.database.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, translateError(err)
	}
	return grants, nil
}

func (r *PostgresDocumentRepository) HasGrant(ctx context.Context, documentID string, identity model.Identity) (bool, error) {
	query := r.database.WithContext(ctx).
		Model(&model.DataRoomDocumentGrant{}).
		Where("document_id = ?", documentID)

	email := identity.NormalizedEmail()
	switch {
	case identity.UserID != "" && email != "":
		query = query.Where("user_id = ? OR email = ?", identity.UserID, email)
	case identity.UserID != "":
		query = query.Where("user_id = ?", identity.UserID)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return false, nil
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *PostgresDocumentRepository) Delete(ctx context.Context, documentID string) ([]string, error) {
	var storageKeys []string

	err := r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var versions []model.DataRoomDocumentVersion
		if err := tx.Where("document_id = ?", documentID).Find(&versions).Error; err != nil {
			return err
		}
		for _, ver := range versions {
			storageKeys = append(storageKeys, ver.StorageKey)
		}

		if err := tx.Where("document_id = ?", documentID).Delete(&model.DataRoomDocumentGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", documentID).Delete(&model.DataRoomDocumentVersion{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", documentID).Delete(&model.DataRoomDocument{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		r.logger.Error(ctx, err.Error())
		return nil, translateError(err)
	}
	return storageKeys, nil
}

func (r *PostgresDocumentRepository) SetScanResult(ctx context.Context, versionID string, status model.ScanStatus, reason string) (*model.DataRoomDocumentVersion, *model.DataRoomDocument, error) {
	var ver model.DataRoomDocumentVersion
	var doc model.DataRoomDocument

	err := r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", versionID).First(&ver).Error; err != nil {
			return err
		}

		// Terminal versions are immutable; redelivery converges on the
		// stored state without error.
		if !ver.VirusScan.Terminal() {
			updates := map[string]any{"virus_scan": status}
			if reason != "" {
				updates["scan_reason"] = sql.NullString{String: reason, Valid: true}
			}
			if err := tx.Model(&model.DataRoomDocumentVersion{}).
				Where("id = ?", versionID).
				Updates(updates).Error; err != nil {
				return err
			}
			ver.VirusScan = status
			if reason != "" {
				ver.ScanReason = sql.NullString{String: reason, Valid: true}
			}
		}

		if err := tx.Where("id = ?", ver.DocumentID).First(&doc).Error; err != nil {
			return err
		}

		// Document status reflects the scan outcome of its latest version
		// only; callbacks for superseded versions leave it alone.
		if doc.CurrentVersionID.Valid && doc.CurrentVersionID.String == ver.ID {
			docStatus := model.DocumentReady
			if ver.VirusScan == model.ScanBlocked {
				docStatus = model.DocumentBlocked
			}
			if doc.Status != docStatus {
				if err := tx.Model(&model.DataRoomDocument{}).
					Where("id = ?", doc.ID).
					Updates(map[string]any{"status": docStatus, "updated_at": time.Now().UTC()}).Error; err != nil {
					return err
				}
				doc.Status = docStatus
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error(ctx, err.Error())
		return nil, nil, translateError(err)
	}
	return &ver, &doc, nil
}

func (r *PostgresDocumentRepository) SetAnalysis(ctx context.Context, versionID string, status model.AnalysisStatus, score *float64, findings json.RawMessage) error {
	updates := map[string]any{"analysis_status": status}
	if score != nil {
		updates["analysis_score"] = sql.NullFloat64{Float64: *score, Valid: true}
	}
	if findings != nil {
		updates["analysis_findings"] = findings
	}

	result := r.database.WithContext(ctx).
		Model(&model.DataRoomDocumentVersion{}).
		Where("id = ?", versionID).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error(ctx, result.Error.Error())
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}
