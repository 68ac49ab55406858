package routes

import (
	"github.com/dealdeck/dataroom-api/presentation/controllers/audit"
	"github.com/dealdeck/dataroom-api/presentation/controllers/dataroom"
	"github.com/dealdeck/dataroom-api/presentation/controllers/nda"
	"github.com/gin-gonic/gin"
)

func DataRoomRoutes(
	router *gin.RouterGroup,
	roomController dataroom.DataRoomController,
	ndaController nda.NDAController,
	auditController audit.AuditController,
) {
	rooms := router.Group("/datarooms")
	{
		rooms.POST("", roomController.InitRoom)
		rooms.GET("/:id", roomController.GetRoom)

		rooms.GET("/:id/permissions", roomController.ListPermissions)
		rooms.POST("/:id/permissions", roomController.Invite)
		rooms.DELETE("/:id/permissions/:userId", roomController.Revoke)

		rooms.POST("/:id/nda", ndaController.Accept)
		rooms.GET("/:id/nda", ndaController.GetStatus)

		rooms.GET("/:id/audit", auditController.List)
	}
}
