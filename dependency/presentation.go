package dependency

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/dealdeck/dataroom-api/infrastructure/metrics"
	auditCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/audit"
	dataroomCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/dataroom"
	documentCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/document"
	ndaCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/nda"
	scanCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/scan"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/dealdeck/dataroom-api/presentation/routes"
)

func (c *Container) initControllers() {
	c.RoomController = dataroomCtrl.NewDataRoomController(c.RoomUC)
	c.DocumentController = documentCtrl.NewDocumentController(c.DocumentUC, c.AnalysisUC)
	c.NDAController = ndaCtrl.NewNDAController(c.NDAUC)
	c.AuditController = auditCtrl.NewAuditController(c.AuditUC, c.AccessUC)
	c.ScanController = scanCtrl.NewScanController(c.DocumentUC)

	c.Logger.Info("Controllers initialized successfully")
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	binding.Validator = new(middlewares.DefaultValidator)

	router := gin.New()
	router.Use(gin.Recovery())

	if c.Config.Sentry.Dsn != "" {
		router.Use(sentrygin.New(sentrygin.Options{
			Repanic:         true,
			WaitForDelivery: false,
			Timeout:         5 * time.Second,
		}))
	}

	router.Use(middlewares.GinLogger(c.Logger))
	router.Use(middlewares.CorsMiddleware(c.Config))

	router.GET("/health", c.healthCheckHandler)

	c.registerObservabilityRoutes(router)

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.Use(middlewares.IdentityMiddleware())

		uploadLimiter := middlewares.UploadRateLimiter(c.UploadLimiter, c.Logger)

		routes.DataRoomRoutes(v1, c.RoomController, c.NDAController, c.AuditController)
		routes.DocumentRoutes(v1, c.DocumentController, uploadLimiter)
		routes.ScanRoutes(v1, c.ScanController, c.Config.Scan.CallbackToken)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Container) registerObservabilityRoutes(router *gin.Engine) {
	metricsGroup := router.Group("/observability")
	{
		metrics.GetHandler(metricsGroup)
	}
}
