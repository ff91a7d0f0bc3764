package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		return
	}
	log.Println("Connected to Redis")
}

func driverAvailabilityKey(driverUserID uint) string {
	return fmt.Sprintf("driver:%d:available", driverUserID)
}

// CacheDriverAvailability mirrors the database availability flag so
// read-heavy vendor queries can skip the table.
func CacheDriverAvailability(ctx context.Context, driverUserID uint, available bool) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, driverAvailabilityKey(driverUserID), available, 24*time.Hour).Err()
}

// GetCachedDriverAvailability returns the cached flag and whether the
// key was present. Callers fall back to the database on a miss.
func GetCachedDriverAvailability(ctx context.Context, driverUserID uint) (bool, bool, error) {
	if RedisClient == nil {
		return false, false, nil
	}
	val, err := RedisClient.Get(ctx, driverAvailabilityKey(driverUserID)).Bool()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val, true, nil
}

// InvalidateDriverAvailability drops the cached flag after lifecycle
// transitions that change it inside a transaction.
func InvalidateDriverAvailability(ctx context.Context, driverUserID uint) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, driverAvailabilityKey(driverUserID)).Err()
}
