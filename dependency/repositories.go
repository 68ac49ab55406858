package dependency

import (
	"github.com/dealdeck/dataroom-api/infrastructure/persistence/database"
	"github.com/dealdeck/dataroom-api/infrastructure/persistence/repository"
)

func (c *Container) initRepositories() {
	db := database.GetDb()

	c.RoomRepo = repository.NewDataRoomRepository(db, c.Logger.Log)
	c.PermissionRepo = repository.NewPermissionRepository(db, c.Logger.Log)
	c.FolderRepo = repository.NewFolderRepository(db, c.Logger.Log)
	c.DocumentRepo = repository.NewDocumentRepository(db, c.Logger.Log)
	c.NDARepo = repository.NewNDARepository(db, c.Logger.Log)
	c.AuditRepo = repository.NewAuditLogRepository(db, c.Logger.Log)
	c.UserRepo = repository.NewUserRepository(db, c.Logger.Log)
	c.ListingRepo = repository.NewListingRepository(db, c.Logger.Log)

	c.Logger.Info("Repositories initialized successfully")
}
