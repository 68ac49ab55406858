package dependency

import (
	"fmt"

	accessUseCase "github.com/dealdeck/dataroom-api/application/usecases/access"
	analysisUseCase "github.com/dealdeck/dataroom-api/application/usecases/analysis"
	auditUseCase "github.com/dealdeck/dataroom-api/application/usecases/audit"
	dataroomUseCase "github.com/dealdeck/dataroom-api/application/usecases/dataroom"
	documentUseCase "github.com/dealdeck/dataroom-api/application/usecases/document"
	ndaUseCase "github.com/dealdeck/dataroom-api/application/usecases/nda"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/dealdeck/dataroom-api/infrastructure/llm"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/metrics"
	"github.com/dealdeck/dataroom-api/infrastructure/notify"
	"github.com/dealdeck/dataroom-api/infrastructure/ratelimit"
	"github.com/dealdeck/dataroom-api/infrastructure/storage"
	auditCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/audit"
	dataroomCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/dataroom"
	documentCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/document"
	ndaCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/nda"
	scanCtrl "github.com/dealdeck/dataroom-api/presentation/controllers/scan"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	MetricsManager *metrics.Manager

	ObjectStorage storage.ObjectStorage
	UploadLimiter ratelimit.Limiter
	LLMClient     llm.Client
	EmailSender   notify.EmailSender
	Notifications notify.NotificationSink

	RoomRepo       repository.DataRoomRepository
	PermissionRepo repository.PermissionRepository
	FolderRepo     repository.FolderRepository
	DocumentRepo   repository.DocumentRepository
	NDARepo        repository.NDARepository
	AuditRepo      repository.AuditRepository
	UserRepo       repository.UserRepository
	ListingRepo    repository.ListingRepository

	AccessUC   accessUseCase.AccessUseCase
	AuditUC    auditUseCase.AuditUseCase
	RoomUC     dataroomUseCase.DataRoomUseCase
	NDAUC      ndaUseCase.NDAUseCase
	DocumentUC documentUseCase.DocumentUseCase
	AnalysisUC analysisUseCase.AnalysisUseCase

	RoomController     dataroomCtrl.DataRoomController
	DocumentController documentCtrl.DocumentController
	NDAController      ndaCtrl.NDAController
	AuditController    auditCtrl.AuditController
	ScanController     scanCtrl.ScanController
}

func NewContainer(cfg *config.Config, loggerInstance *logger.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: loggerInstance,
	}

	c.Logger.Info("Initializing data room API dependencies")

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initRepositories()

	c.initUseCases()

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}
