package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listingKeyPrefix = "listing:"

	// tombstone marks a freshly invalidated key. While it lives, SetListing
	// cannot repopulate the key with a read that started before the change.
	tombstone        = "-"
	invalidationHold = 5 * time.Second
)

type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewListingCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *ListingCache {
	return &ListingCache{
		client: client,
		ttl:    ttl,
		logger: log.Named("ListingCache"),
	}
}

func listingKey(id string) string {
	return listingKeyPrefix + id
}

// GetListing returns nil, nil on a cache miss.
func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", listingKey(id), err)
	}
	if bytes.Equal(data, []byte(tombstone)) {
		return nil, nil
	}

	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("listing_id", id), zap.Error(err))
		_ = c.client.Del(ctx, listingKey(id)).Err()
		return nil, nil
	}
	return &listing, nil
}

// SetListing only fills an empty key. Entries are never overwritten in
// place: every change goes through DeleteListing first.
func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("marshal listing %s: %w", listing.ID, err)
	}
	stored, err := c.client.SetNX(ctx, listingKey(listing.ID), data, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx %s: %w", listingKey(listing.ID), err)
	}
	if !stored {
		c.logger.Debug("Cache key occupied, skipping write", zap.String("listing_id", listing.ID))
	}
	return nil
}

// DeleteListing replaces the entry with a short-lived tombstone.
func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	if err := c.client.Set(ctx, listingKey(id), tombstone, invalidationHold).Err(); err != nil {
		return fmt.Errorf("redis invalidate %s: %w", listingKey(id), err)
	}
	return nil
}
