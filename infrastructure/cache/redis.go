package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	mu          sync.RWMutex
)

// InitRedis connects the shared redis client. Only called when redis is
// enabled; single-instance deployments run without it.
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Db,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		PoolTimeout:  cfg.Redis.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	mu.Lock()
	redisClient = client
	mu.Unlock()
	return nil
}

func GetRedis() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return redisClient
}

func CloseRedis() error {
	mu.RLock()
	defer mu.RUnlock()
	if redisClient == nil {
		return nil
	}
	return redisClient.Close()
}
