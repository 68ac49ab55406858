package dependency

import (
	"github.com/dealdeck/dataroom-api/infrastructure/cache"
	"github.com/dealdeck/dataroom-api/infrastructure/llm"
	"github.com/dealdeck/dataroom-api/infrastructure/metrics"
	"github.com/dealdeck/dataroom-api/infrastructure/notify"
	"github.com/dealdeck/dataroom-api/infrastructure/persistence/database"
	"github.com/dealdeck/dataroom-api/infrastructure/ratelimit"
	"github.com/dealdeck/dataroom-api/infrastructure/storage"
)

func (c *Container) initInfrastructure() error {
	c.MetricsManager = metrics.NewManager()

	minioStorage, err := storage.ConnectMinio(c.Config, c.Logger.Log)
	if err != nil {
		return err
	}
	c.ObjectStorage = minioStorage

	// Redis backs the upload limiter when enabled; otherwise the
	// process-local counter is good enough for a single instance.
	requests, window := c.Config.UploadRateLimit()
	if c.Config.Redis.Enabled {
		c.UploadLimiter = ratelimit.NewRedisLimiter(cache.GetRedis(), requests, window)
	} else {
		c.UploadLimiter = ratelimit.NewMemoryLimiter(requests, window)
	}

	if c.Config.LLM.Enabled {
		c.LLMClient = llm.NewHTTPClient(c.Config)
	}

	c.EmailSender = notify.NewLogEmailSender(c.Logger.Log)
	c.Notifications = notify.NewDatabaseNotificationSink(database.GetDb(), c.Logger.Log)

	c.Logger.Info("Infrastructure initialized successfully")

	return nil
}
