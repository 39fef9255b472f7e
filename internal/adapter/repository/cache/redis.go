package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Error("Failed to ping Redis", zap.String("address", addr), zap.Error(err))
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Info("Connected to Redis", zap.String("address", addr), zap.Int("db", db))
	return client, nil
}
