// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache (L2).
// When a public page is rendered, the resulting HTML is stored in Valkey
// so subsequent requests skip the DB query and template execution entirely.
// Because block pages vary by the visitor's industry signal, the cache key
// includes it: each industry variant of a page is cached separately.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// PageKey builds the cache key for a request path under a given industry
// signal. An empty industry is the default (non-personalized) variant.
func PageKey(path, industry string) string {
	if industry == "" {
		return path
	}
	return path + "|" + industry
}

// Get retrieves cached HTML for a page key. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidatePath removes a page and all of its industry variants from the
// cache. Called after a publish or update touches that path.
func (pc *PageCache) InvalidatePath(ctx context.Context, path string) {
	pc.deleteByPattern(ctx, pageKeyPrefix+path)
	pc.deleteByPattern(ctx, pageKeyPrefix+path+"|*")
	slog.Debug("page cache invalidated", "path", path)
}

// InvalidateAll removes all cached pages by scanning for the prefix.
// Used when site settings change, since any page could be affected.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	pc.deleteByPattern(ctx, pageKeyPrefix+"*")
}

func (pc *PageCache) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache cleared", "pattern", pattern, "deleted", deleted)
	}
}
