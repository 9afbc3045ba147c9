package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "listing:"

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

var _ domain.ListingCache = (*ListingCache)(nil)

// ListingCache stores listings as JSON under listing:<id>.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewListingCache connects and pings redis.
func NewListingCache(ctx context.Context, opts Options, log *logger.Logger) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	log.Info("Redis listing cache connected", zap.String("addr", opts.Addr), zap.Duration("ttl", ttl))
	return &ListingCache{client: client, ttl: ttl, logger: log.Named("ListingCache")}, nil
}

func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		// a stale or foreign value is treated as a miss and dropped
		c.logger.Warn("Dropping undecodable cache entry", zap.String("listing_id", id), zap.Error(err))
		_ = c.client.Del(ctx, keyPrefix+id).Err()
		return nil, nil
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+listing.ID, data, c.ttl).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	return c.client.Del(ctx, keyPrefix+id).Err()
}

func (c *ListingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}
