package document

import (
	"net/http"

	"github.com/dealdeck/dataroom-api/application/usecases/analysis"
	"github.com/dealdeck/dataroom-api/application/usecases/document"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/presentation/controllers/httperr"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type DocumentController interface {
	CreateFolder(ctx *gin.Context)
	ListFolders(ctx *gin.Context)
	ListFolderDocuments(ctx *gin.Context)

	BeginUpload(ctx *gin.Context)
	BeginVersionUpload(ctx *gin.Context)

	GetDocument(ctx *gin.Context)
	GetPolicy(ctx *gin.Context)
	UpdatePolicy(ctx *gin.Context)
	DeleteDocument(ctx *gin.Context)

	RequestDownload(ctx *gin.Context)

	TriggerAnalysis(ctx *gin.Context)
	GetAnalysisStatus(ctx *gin.Context)
}

type documentController struct {
	usecase    document.DocumentUseCase
	analysisUC analysis.AnalysisUseCase
}

func NewDocumentController(usecase document.DocumentUseCase, analysisUC analysis.AnalysisUseCase) DocumentController {
	return &documentController{
		usecase:    usecase,
		analysisUC: analysisUC,
	}
}

func (c *documentController) CreateFolder(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var req CreateFolderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	folder, err := c.usecase.CreateFolder(ctx.Request.Context(), roomID, actor, req.Name, req.ParentID)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toFolderResponse(folder))
}

func (c *documentController) ListFolders(ctx *gin.Context) {
	roomID := ctx.Param("id")
	actor := middlewares.GetIdentity(ctx)

	folders, err := c.usecase.ListFolders(ctx.Request.Context(), roomID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	responses := make([]FolderResponse, len(folders))
	for i := range folders {
		responses[i] = toFolderResponse(&folders[i])
	}
	ctx.JSON(http.StatusOK, gin.H{"folders": responses})
}

func (c *documentController) ListFolderDocuments(ctx *gin.Context) {
	roomID := ctx.Param("id")
	folderID := ctx.Param("folderId")
	actor := middlewares.GetIdentity(ctx)

	documents, err := c.usecase.ListFolderDocuments(ctx.Request.Context(), roomID, folderID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	responses := make([]DocumentResponse, len(documents))
	for i := range documents {
		responses[i] = toDocumentResponse(&documents[i])
	}
	ctx.JSON(http.StatusOK, gin.H{"documents": responses})
}

func (c *documentController) BeginUpload(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var req BeginUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	intent, err := c.usecase.BeginUpload(ctx.Request.Context(), roomID, actor, req.FolderID, req.Title, req.FileName, req.MimeType, req.Size)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toUploadIntentResponse(intent))
}

func (c *documentController) BeginVersionUpload(ctx *gin.Context) {
	roomID := ctx.Param("id")
	documentID := ctx.Param("documentId")

	var req BeginVersionUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	intent, err := c.usecase.BeginVersionUpload(ctx.Request.Context(), roomID, documentID, actor, req.FileName, req.MimeType, req.Size)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toUploadIntentResponse(intent))
}

func toUploadIntentResponse(intent *document.UploadIntent) UploadIntentResponse {
	return UploadIntentResponse{
		Document:  toDocumentResponse(intent.Document),
		Version:   toVersionResponse(intent.Version),
		UploadURL: intent.UploadURL,
		ExpiresIn: intent.ExpiresIn,
	}
}

func (c *documentController) GetDocument(ctx *gin.Context) {
	roomID := ctx.Param("id")
	documentID := ctx.Param("documentId")
	actor := middlewares.GetIdentity(ctx)

	doc, err := c.usecase.GetDocument(ctx.Request.Context(), roomID, documentID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (c *documentController) GetPolicy(ctx *gin.Context) {
	roomID := ctx.Param("id")
	documentID := ctx.Param("documentId")
	actor := middlewares.GetIdentity(ctx)

	policy, err := c.usecase.GetPolicy(ctx.Request.Context(), roomID, documentID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toPolicyResponse(policy))
}

func (c *documentController) UpdatePolicy(ctx *gin.Context) {
	roomID := ctx.Param("id")
	documentID := ctx.Param("documentId")

	var req UpdatePolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	update := repository.PolicyUpdate{
		DownloadBlocked:   req.DownloadBlocked,
		WatermarkRequired: req.WatermarkRequired,
		// An absent key binds to nil, an explicit [] to an empty slice.
		GrantsProvided: req.GrantUserIDs != nil || req.GrantEmails != nil,
		GrantUserIDs:   req.GrantUserIDs,
		GrantEmails:    req.GrantEmails,
	}
	if req.Visibility != nil {
		visibility := model.Visibility(*req.Visibility)
		update.Visibility = &visibility
	}

	policy, err := c.usecase.UpdatePolicy(ctx.Request.Context(), roomID, documentID, actor, update)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toPolicyResponse(policy))
}

func toPolicyResponse(policy *document.Policy) PolicyResponse {
	grants := make([]GrantResponse, len(policy.Grants))
	for i := range policy.Grants {
		grants[i] = toGrantResponse(&policy.Grants[i])
	}
	return PolicyResponse{
		Document: toDocumentResponse(policy.Document),
		Grants:   grants,
	}
}

func (c *documentController) DeleteDocument(ctx *gin.Context) {
	roomID := ctx.Param("id")
	documentID := ctx.Param("documentId")
	actor := middlewares.GetIdentity(ctx)

	if err := c.usecase.DeleteDocument(ctx.Request.Context(), roomID, documentID, actor); err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{
		Message: "document deleted",
	})
}

func (c *documentController) RequestDownload(ctx *gin.Context) {
	roomID := ctx.Param("id")
	versionID := ctx.Param("versionId")
	actor := middlewares.GetIdentity(ctx)

	ticket, err := c.usecase.RequestDownload(ctx.Request.Context(), roomID, versionID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, DownloadResponse{
		DownloadURL: ticket.DownloadURL,
		ExpiresIn:   ticket.ExpiresIn,
		FileName:    ticket.FileName,
	})
}

func (c *documentController) TriggerAnalysis(ctx *gin.Context) {
	roomID := ctx.Param("id")
	versionID := ctx.Param("versionId")
	actor := middlewares.GetIdentity(ctx)

	if err := c.analysisUC.Trigger(ctx.Request.Context(), roomID, versionID, actor); err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, SuccessResponse{
		Message: "analysis started",
	})
}

func (c *documentController) GetAnalysisStatus(ctx *gin.Context) {
	roomID := ctx.Param("id")
	versionID := ctx.Param("versionId")
	actor := middlewares.GetIdentity(ctx)

	view, err := c.analysisUC.GetStatus(ctx.Request.Context(), roomID, versionID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, AnalysisStatusResponse{
		Status:   string(view.Status),
		Score:    view.Score,
		Findings: view.Findings,
	})
}
