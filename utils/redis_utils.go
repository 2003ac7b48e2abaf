package utils

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
)

// GetRedisClient builds a client from env configuration. Returns nil when no
// REDIS_HOST is configured; callers treat a nil client as cache disabled.
func GetRedisClient() *redis.Client {
	if os.Getenv("REDIS_HOST") == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
}
