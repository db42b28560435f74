package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the last observed state of the external dependencies. The
// session store and the availability cache run on separate Redis instances,
// so each gets its own field.
type HealthStatus struct {
	Mongo        bool      `json:"mongo"`
	SessionRedis bool      `json:"sessionRedis"`
	CacheRedis   bool      `json:"cacheRedis"`
	CheckedAt    time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(sessionRedis, cacheRedis *redis.Client, mongoClient *mongo.Client) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			snapshot := HealthStatus{
				Mongo:        mongoClient.Ping(ctx, nil) == nil,
				SessionRedis: sessionRedis.Ping(ctx).Err() == nil,
				CacheRedis:   cacheRedis.Ping(ctx).Err() == nil,
				CheckedAt:    time.Now(),
			}
			cancel()

			mu.Lock()
			currentHealth = snapshot
			mu.Unlock()
		}
	}()
}
