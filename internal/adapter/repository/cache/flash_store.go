package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// FlashStore keeps notices in one Redis list per session and kind. Reading
// consumes them.
type FlashStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewFlashStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *FlashStore {
	return &FlashStore{
		client: client,
		ttl:    ttl,
		logger: log.Named("FlashStore"),
	}
}

func flashKey(sessionID string, kind domain.FlashKind) string {
	return "flash:" + sessionID + ":" + string(kind)
}

func (s *FlashStore) AddFlash(ctx context.Context, sessionID string, kind domain.FlashKind, message string) error {
	key := flashKey(sessionID, kind)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, message)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis add flash %s: %w", key, err)
	}
	return nil
}

// PopFlash returns and clears every pending notice of the session.
func (s *FlashStore) PopFlash(ctx context.Context, sessionID string) (domain.Flash, error) {
	successKey := flashKey(sessionID, domain.FlashSuccess)
	errorKey := flashKey(sessionID, domain.FlashError)

	var successCmd, errorCmd *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		successCmd = pipe.LRange(ctx, successKey, 0, -1)
		errorCmd = pipe.LRange(ctx, errorKey, 0, -1)
		pipe.Del(ctx, successKey, errorKey)
		return nil
	})
	if err != nil {
		return domain.Flash{}, fmt.Errorf("redis pop flash %s: %w", sessionID, err)
	}
	return domain.Flash{Success: successCmd.Val(), Error: errorCmd.Val()}, nil
}
