package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"

	"libman/internal/log"
	"libman/internal/model"
)

const keyPrefix = "libman:books:"

// BookCache is a read-through redis cache for catalog listings. A nil
// *BookCache is valid and disables caching, so callers never branch.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	if client == nil {
		return nil
	}
	return &BookCache{client: client, ttl: ttl}
}

// Get returns the cached listing under key, or ok=false on miss or any
// redis trouble. Cache failures are logged, never surfaced.
func (c *BookCache) Get(ctx context.Context, key string) ([]model.Book, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.GetLogger(ctx).WithError(err).Warn("book cache get failed")
		}
		return nil, false
	}
	var books []model.Book
	if err := sonic.Unmarshal(payload, &books); err != nil {
		log.GetLogger(ctx).WithError(err).Warn("book cache decode failed")
		return nil, false
	}
	return books, true
}

func (c *BookCache) Set(ctx context.Context, key string, books []model.Book) {
	if c == nil {
		return
	}
	payload, err := sonic.Marshal(books)
	if err != nil {
		log.GetLogger(ctx).WithError(err).Warn("book cache encode failed")
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, payload, c.ttl).Err(); err != nil {
		log.GetLogger(ctx).WithError(err).Warn("book cache set failed")
	}
}

// Invalidate drops every cached listing; called after any catalog write.
func (c *BookCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.GetLogger(ctx).WithError(err).Warn("book cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.GetLogger(ctx).WithError(err).Warn("book cache invalidate failed")
	}
}
