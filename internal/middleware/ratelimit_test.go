package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiterAllow(t *testing.T) {
	ml := NewMemoryLimiter(3, 1*time.Second)
	defer ml.Stop()

	// First 3 requests should be allowed.
	for i := 0; i < 3; i++ {
		if !ml.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied.
	if ml.Allow("test-ip") {
		t.Error("4th request should be rate-limited")
	}

	// Different IP should still be allowed.
	if !ml.Allow("other-ip") {
		t.Error("different IP should be allowed")
	}
}

func TestMemoryLimiterWindowExpiry(t *testing.T) {
	ml := NewMemoryLimiter(2, 100*time.Millisecond)
	defer ml.Stop()

	// Use up the limit.
	ml.Allow("test-ip")
	ml.Allow("test-ip")

	if ml.Allow("test-ip") {
		t.Error("should be rate-limited")
	}

	// Wait for the window to expire.
	time.Sleep(150 * time.Millisecond)

	if !ml.Allow("test-ip") {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(NewMemoryLimiter(2, 1*time.Second))
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First 2 requests should succeed.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	// 3rd request should be rate-limited.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want 429", rr.Code)
	}
}

func TestRateLimiterOnRejectHook(t *testing.T) {
	rl := NewRateLimiter(NewMemoryLimiter(1, 1*time.Second))
	defer rl.Stop()

	var rejected int
	rl.OnReject = func() { rejected++ }

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if rejected != 2 {
		t.Errorf("got %d rejections, want 2", rejected)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			xff:        "10.0.0.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for multiple",
			xff:        "10.0.0.1, 172.16.0.1, 192.168.1.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip",
			xri:        "10.0.0.2",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.2",
		},
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
		{
			name:       "remote addr no port",
			remoteAddr: "192.168.1.1",
			want:       "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			got := clientIP(req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryLimiterCleanup(t *testing.T) {
	ml := NewMemoryLimiter(5, 50*time.Millisecond)
	defer ml.Stop()

	// Add some entries.
	ml.Allow("ip1")
	ml.Allow("ip2")

	// Wait for entries to expire.
	time.Sleep(100 * time.Millisecond)

	ml.cleanup()

	ml.mu.RLock()
	count := len(ml.clients)
	ml.mu.RUnlock()

	if count != 0 {
		t.Errorf("cleanup should remove expired entries, got %d", count)
	}
}

// TestMemoryLimiterCleanupRetainsRecentEntries verifies that cleanup keeps
// entries that still have recent (non-expired) timestamps.
func TestMemoryLimiterCleanupRetainsRecentEntries(t *testing.T) {
	ml := NewMemoryLimiter(10, 200*time.Millisecond)
	defer ml.Stop()

	// Add entries for two IPs.
	ml.Allow("ip-old")
	ml.Allow("ip-fresh")

	// Wait long enough for "ip-old" to expire.
	time.Sleep(250 * time.Millisecond)

	// Add a new entry for "ip-fresh" so it has a recent timestamp.
	ml.Allow("ip-fresh")

	ml.cleanup()

	ml.mu.RLock()
	_, oldExists := ml.clients["ip-old"]
	_, freshExists := ml.clients["ip-fresh"]
	count := len(ml.clients)
	ml.mu.RUnlock()

	if oldExists {
		t.Error("ip-old should have been cleaned up (all timestamps expired)")
	}
	if !freshExists {
		t.Error("ip-fresh should still exist (has recent timestamp)")
	}
	if count != 1 {
		t.Errorf("expected 1 remaining client, got %d", count)
	}
}

// TestValkeyLimiter exercises the shared-counter limiter against a real
// Valkey. Skipped when none is reachable.
func TestValkeyLimiter(t *testing.T) {
	host := "localhost"
	if v := os.Getenv("VALKEY_HOST"); v != "" {
		host = v
	}
	port := "6379"
	if v := os.Getenv("VALKEY_PORT"); v != "" {
		port = v
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port,
		DB:   15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "ratelimit:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	key := "vl-test-" + time.Now().Format("150405.000000000")
	vl := NewValkeyLimiter(client, 2, time.Minute)
	defer vl.Stop()

	if !vl.Allow(key) || !vl.Allow(key) {
		t.Fatal("first 2 requests should be allowed")
	}
	if vl.Allow(key) {
		t.Error("3rd request should be rate-limited")
	}
}
