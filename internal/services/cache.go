package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shrtn/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "link:"

// CachedLink is the slice of a Link needed to answer a redirect.
type CachedLink struct {
	ID          uint   `json:"id"`
	OriginalURL string `json:"original_url"`
}

// LinkCache keeps alias lookups out of the database. Every method is a
// no-op when Redis is not configured, and failures only get logged.
type LinkCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewLinkCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *LinkCache {
	return &LinkCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *LinkCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *LinkCache) Get(ctx context.Context, alias string) (CachedLink, bool) {
	var entry CachedLink
	if !c.enabled() {
		return entry, false
	}

	val, err := c.rdb.Get(ctx, cacheKeyPrefix+alias).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("link cache read failed", zap.String("alias", alias), zap.Error(err))
		}
		return entry, false
	}
	if err := json.Unmarshal(val, &entry); err != nil || entry.ID == 0 {
		return CachedLink{}, false
	}
	return entry, true
}

func (c *LinkCache) Set(ctx context.Context, link *models.Link) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(CachedLink{ID: link.ID, OriginalURL: link.OriginalURL})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+link.ShortURL, data, c.ttl).Err(); err != nil {
		c.logger.Warn("link cache write failed", zap.String("alias", link.ShortURL), zap.Error(err))
	}
}

func (c *LinkCache) Delete(ctx context.Context, alias string) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, cacheKeyPrefix+alias).Err(); err != nil {
		c.logger.Warn("link cache delete failed", zap.String("alias", alias), zap.Error(err))
	}
}
