package dependency

import (
	accessUseCase "github.com/dealdeck/dataroom-api/application/usecases/access"
	analysisUseCase "github.com/dealdeck/dataroom-api/application/usecases/analysis"
	auditUseCase "github.com/dealdeck/dataroom-api/application/usecases/audit"
	dataroomUseCase "github.com/dealdeck/dataroom-api/application/usecases/dataroom"
	documentUseCase "github.com/dealdeck/dataroom-api/application/usecases/document"
	ndaUseCase "github.com/dealdeck/dataroom-api/application/usecases/nda"
)

func (c *Container) initUseCases() {
	c.AccessUC = accessUseCase.NewAccessUseCase(c.PermissionRepo, c.NDARepo, c.DocumentRepo, c.RoomRepo, c.MetricsManager, c.Logger)
	c.AuditUC = auditUseCase.NewAuditUseCase(c.AuditRepo, c.UserRepo, c.MetricsManager, c.Logger)
	c.RoomUC = dataroomUseCase.NewDataRoomUseCase(c.RoomRepo, c.PermissionRepo, c.FolderRepo, c.ListingRepo, c.UserRepo, c.AccessUC, c.AuditUC, c.EmailSender, c.Notifications, c.Logger)
	c.NDAUC = ndaUseCase.NewNDAUseCase(c.NDARepo, c.RoomRepo, c.AccessUC, c.AuditUC, c.Notifications, c.Logger)
	c.DocumentUC = documentUseCase.NewDocumentUseCase(c.DocumentRepo, c.FolderRepo, c.RoomRepo, c.UserRepo, c.AccessUC, c.AuditUC, c.ObjectStorage, c.MetricsManager, c.Logger)
	c.AnalysisUC = analysisUseCase.NewAnalysisUseCase(c.DocumentRepo, c.AccessUC, c.AuditUC, c.LLMClient, c.Logger)

	c.Logger.Info("Use cases initialized successfully")
}
