package routes

import (
	"github.com/dealdeck/dataroom-api/presentation/controllers/scan"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

func ScanRoutes(router *gin.RouterGroup, controller scan.ScanController, callbackToken string) {
	internal := router.Group("/internal", middlewares.CallbackAuth(callbackToken))
	{
		internal.POST("/scan-callback", controller.Callback)
	}
}
