package utils

import (
	"context"
	"sync"
	"time"

	"wellvix/config"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the latest dependency snapshot served by /health.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	healthSnapshot HealthStatus
	healthMu       sync.RWMutex
)

// GetHealthStatus returns the most recent snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return healthSnapshot
}

// StartHealthMonitor probes mongo and redis on the configured interval
// (HEALTH_INTERVAL_SECONDS) and keeps the snapshot in memory. The first
// probe runs immediately so /health is never empty after startup.
func StartHealthMonitor(redisClients []*redis.Client, mongoClient *mongo.Client) {
	interval := time.Duration(config.AppConfig.HealthIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ctx := context.Background()
		probeHealth(ctx, redisClients, mongoClient)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			probeHealth(ctx, redisClients, mongoClient)
		}
	}()
}

func probeHealth(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) {
	redisHealth := make([]bool, 0, len(redisClients))
	for _, client := range redisClients {
		redisHealth = append(redisHealth, client.Ping(ctx).Err() == nil)
	}

	mongoHealthy := mongoClient != nil && mongoClient.Ping(ctx, nil) == nil

	healthMu.Lock()
	healthSnapshot = HealthStatus{
		Mongo:     mongoHealthy,
		Redis:     redisHealth,
		CheckedAt: time.Now(),
	}
	healthMu.Unlock()
}
