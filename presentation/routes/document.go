package routes

import (
	"github.com/dealdeck/dataroom-api/presentation/controllers/document"
	"github.com/gin-gonic/gin"
)

func DocumentRoutes(router *gin.RouterGroup, controller document.DocumentController, uploadLimiter gin.HandlerFunc) {
	rooms := router.Group("/datarooms")
	{
		rooms.POST("/:id/folders", controller.CreateFolder)
		rooms.GET("/:id/folders", controller.ListFolders)
		rooms.GET("/:id/folders/:folderId/documents", controller.ListFolderDocuments)

		rooms.POST("/:id/documents", uploadLimiter, controller.BeginUpload)
		rooms.POST("/:id/documents/:documentId/versions", uploadLimiter, controller.BeginVersionUpload)

		rooms.GET("/:id/documents/:documentId", controller.GetDocument)
		rooms.GET("/:id/documents/:documentId/policy", controller.GetPolicy)
		rooms.PATCH("/:id/documents/:documentId/policy", controller.UpdatePolicy)
		rooms.DELETE("/:id/documents/:documentId", controller.DeleteDocument)

		rooms.POST("/:id/versions/:versionId/download", controller.RequestDownload)

		rooms.POST("/:id/versions/:versionId/analysis", controller.TriggerAnalysis)
		rooms.GET("/:id/versions/:versionId/analysis", controller.GetAnalysisStatus)
	}
}
