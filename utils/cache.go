// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"tutorhive/config"

	"github.com/go-redis/redis/v8"
)

// EventCacheClient is the dedicated client for webhook event deduplication.
var EventCacheClient *redis.Client

// InitEventCache initializes the Redis client for the webhook idempotency
// ledger (using the DB number from AppConfig).
func InitEventCache() {
	EventCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := EventCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Event Cache): %v", err)
	}
}

// GetEventCacheClient returns the Redis client for webhook event deduplication.
func GetEventCacheClient() *redis.Client {
	if EventCacheClient == nil {
		InitEventCache()
	}
	return EventCacheClient
}
