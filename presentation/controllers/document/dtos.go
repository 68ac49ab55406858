package document

import (
	"encoding/json"
	"time"

	"github.com/dealdeck/dataroom-api/domain/model"
)

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	ParentID string `json:"parentId" binding:"omitempty,uuid"`
}

type BeginUploadRequest struct {
	FolderID string `json:"folderId" binding:"omitempty,uuid"`
	Title    string `json:"title" binding:"omitempty,max=255"`
	FileName string `json:"fileName" binding:"required,max=255"`
	MimeType string `json:"mimeType" binding:"required,max=128"`
	Size     int64  `json:"size" binding:"required,gt=0"`
}

type BeginVersionUploadRequest struct {
	FileName string `json:"fileName" binding:"required,max=255"`
	MimeType string `json:"mimeType" binding:"required,max=128"`
	Size     int64  `json:"size" binding:"required,gt=0"`
}

type UpdatePolicyRequest struct {
	Visibility        *string  `json:"visibility" binding:"omitempty,oneof=DEFAULT CUSTOM"`
	DownloadBlocked   *bool    `json:"downloadBlocked"`
	WatermarkRequired *bool    `json:"watermarkRequired"`
	GrantUserIDs      []string `json:"grantUserIds" binding:"omitempty,dive,uuid"`
	GrantEmails       []string `json:"grantEmails" binding:"omitempty,dive,email"`
}

type FolderResponse struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

type DocumentResponse struct {
	ID                string    `json:"id"`
	FolderID          string    `json:"folderId"`
	Title             string    `json:"title"`
	Status            string    `json:"status"`
	Visibility        string    `json:"visibility"`
	DownloadBlocked   bool      `json:"downloadBlocked"`
	WatermarkRequired bool      `json:"watermarkRequired"`
	CurrentVersionID  string    `json:"currentVersionId,omitempty"`
	CreatedBy         string    `json:"createdBy"`
	CreatedAt         time.Time `json:"createdAt"`
}

type VersionResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	VirusScan string    `json:"virusScan"`
	CreatedAt time.Time `json:"createdAt"`
}

type UploadIntentResponse struct {
	Document  DocumentResponse `json:"document"`
	Version   VersionResponse  `json:"version"`
	UploadURL string           `json:"uploadUrl"`
	ExpiresIn int              `json:"expiresIn"`
}

type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"`
	FileName    string `json:"fileName"`
}

type GrantResponse struct {
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	GrantedBy string    `json:"grantedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type PolicyResponse struct {
	Document DocumentResponse `json:"document"`
	Grants   []GrantResponse  `json:"grants"`
}

type AnalysisStatusResponse struct {
	Status   string          `json:"status"`
	Score    *float64        `json:"score,omitempty"`
	Findings json.RawMessage `json:"findings,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func toFolderResponse(folder *model.DataRoomFolder) FolderResponse {
	resp := FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		Path:      folder.Path,
		Order:     folder.Order,
		CreatedAt: folder.CreatedAt,
	}
	if folder.ParentID.Valid {
		resp.ParentID = folder.ParentID.String
	}
	return resp
}

func toDocumentResponse(doc *model.DataRoomDocument) DocumentResponse {
	resp := DocumentResponse{
		ID:                doc.ID,
		FolderID:          doc.FolderID,
		Title:             doc.Title,
		Status:            string(doc.Status),
		Visibility:        string(doc.Visibility),
		DownloadBlocked:   doc.DownloadBlocked,
		WatermarkRequired: doc.WatermarkRequired,
		CreatedBy:         doc.CreatedBy,
		CreatedAt:         doc.CreatedAt,
	}
	if doc.CurrentVersionID.Valid {
		resp.CurrentVersionID = doc.CurrentVersionID.String
	}
	return resp
}

func toVersionResponse(ver *model.DataRoomDocumentVersion) VersionResponse {
	return VersionResponse{
		ID:        ver.ID,
		Version:   ver.Version,
		FileName:  ver.FileName,
		MimeType:  ver.MimeType,
		Size:      ver.Size,
		VirusScan: string(ver.VirusScan),
		CreatedAt: ver.CreatedAt,
	}
}

func toGrantResponse(grant *model.DataRoomDocumentGrant) GrantResponse {
	resp := GrantResponse{
		GrantedBy: grant.GrantedBy,
		CreatedAt: grant.CreatedAt,
	}
	if grant.UserID.Valid {
		resp.UserID = grant.UserID.String
	}
	if grant.Email.Valid {
		resp.Email = grant.Email.String
	}
	return resp
}
