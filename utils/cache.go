// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"stayhub/config"

	"github.com/go-redis/redis/v8"
)

// SessionCacheClient is the dedicated client for booking transaction sessions.
var SessionCacheClient *redis.Client

// InitSessionCache initializes the Redis client backing booking transaction
// sessions (using DB from AppConfig).
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Session Cache): %v", err)
	}
}

// GetSessionCacheClient returns the booking session cache client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}
