// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimiterStore decides whether a client key may proceed. Implementations
// exist for in-process state and for Valkey, so multi-instance deployments
// can share one counter.
type LimiterStore interface {
	Allow(key string) bool
	Stop()
}

// RateLimiter rate-limits requests per client IP against a LimiterStore.
type RateLimiter struct {
	store LimiterStore

	// OnReject, when set, is called once per rejected request. Used to
	// feed a metrics counter without coupling this package to one.
	OnReject func()
}

// NewRateLimiter creates a rate limiter backed by the given store.
func NewRateLimiter(store LimiterStore) *RateLimiter {
	return &RateLimiter{store: store}
}

// Stop releases the underlying store's resources.
func (rl *RateLimiter) Stop() {
	rl.store.Stop()
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.store.Allow(ip) {
			if rl.OnReject != nil {
				rl.OnReject()
			}
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterEntry tracks request timestamps for a single client.
type limiterEntry struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// MemoryLimiter is a sliding-window limiter held in process memory.
// Suitable for single-instance deployments; counters reset on restart.
type MemoryLimiter struct {
	mu      sync.RWMutex
	clients map[string]*limiterEntry
	limit   int           // max requests per window
	window  time.Duration // sliding window duration
	stopCh  chan struct{}
}

// NewMemoryLimiter creates a limiter that allows limit requests per window.
// It starts a background goroutine to clean up expired entries.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	ml := &MemoryLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   limit,
		window:  window,
		stopCh:  make(chan struct{}),
	}

	// Periodic cleanup of expired entries every 5 minutes.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ml.cleanup()
			case <-ml.stopCh:
				return
			}
		}
	}()

	return ml
}

// Stop terminates the background cleanup goroutine.
func (ml *MemoryLimiter) Stop() {
	close(ml.stopCh)
}

// Allow checks whether the given key is within the rate limit.
func (ml *MemoryLimiter) Allow(key string) bool {
	ml.mu.RLock()
	entry, exists := ml.clients[key]
	ml.mu.RUnlock()

	if !exists {
		ml.mu.Lock()
		// Double-check after acquiring write lock.
		entry, exists = ml.clients[key]
		if !exists {
			entry = &limiterEntry{}
			ml.clients[key] = entry
		}
		ml.mu.Unlock()
	}

	now := time.Now()
	cutoff := now.Add(-ml.window)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Remove expired timestamps.
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= ml.limit {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// cleanup removes entries with no recent activity.
func (ml *MemoryLimiter) cleanup() {
	cutoff := time.Now().Add(-ml.window)

	ml.mu.Lock()
	defer ml.mu.Unlock()

	for key, entry := range ml.clients {
		entry.mu.Lock()
		hasRecent := false
		for _, ts := range entry.timestamps {
			if ts.After(cutoff) {
				hasRecent = true
				break
			}
		}
		entry.mu.Unlock()

		if !hasRecent {
			delete(ml.clients, key)
		}
	}
}

// ValkeyLimiter is a fixed-window limiter stored in Valkey, shared
// across instances. Fails open: if Valkey is unreachable the request
// goes through rather than taking the site down.
type ValkeyLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewValkeyLimiter creates a Valkey-backed limiter allowing limit
// requests per window.
func NewValkeyLimiter(client *redis.Client, limit int, window time.Duration) *ValkeyLimiter {
	return &ValkeyLimiter{client: client, limit: limit, window: window}
}

// Allow increments the window counter for the key and checks the limit.
func (vl *ValkeyLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bucket := "ratelimit:" + key + ":" + strconv.FormatInt(time.Now().Unix()/int64(vl.window.Seconds()), 10)

	count, err := vl.client.Incr(ctx, bucket).Result()
	if err != nil {
		slog.Warn("rate limiter valkey error, failing open", "error", err)
		return true
	}
	if count == 1 {
		vl.client.Expire(ctx, bucket, vl.window)
	}
	return count <= int64(vl.limit)
}

// Stop is a no-op; the Valkey client is owned by the caller.
func (vl *ValkeyLimiter) Stop() {}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first (leftmost) IP, the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
