// Package cache holds the Redis-backed read cache for the public feed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shahriar-rahim/socialite/backend/internal/models"
)

// ErrCacheMiss is returned when no entry exists for the requested page.
var ErrCacheMiss = errors.New("feed cache miss")

// FeedCache caches hydrated feed pages. Entries expire quickly and every
// post write invalidates the whole feed, so staleness is bounded by the TTL
// only when invalidation itself fails.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFeedCache creates a FeedCache over the given client.
func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{rdb: rdb, ttl: ttl}
}

func feedKey(offset, limit int) string {
	return fmt.Sprintf("feed:%d:%d", offset, limit)
}

// Get returns the cached feed page, or ErrCacheMiss.
func (c *FeedCache) Get(ctx context.Context, offset, limit int) ([]models.FeedPost, error) {
	raw, err := c.rdb.Get(ctx, feedKey(offset, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var posts []models.FeedPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Set stores a feed page.
func (c *FeedCache) Set(ctx context.Context, offset, limit int, posts []models.FeedPost) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, feedKey(offset, limit), raw, c.ttl).Err()
}

// Invalidate drops every cached feed page.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, "feed:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
