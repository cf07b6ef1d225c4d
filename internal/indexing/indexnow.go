// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package indexing pings the IndexNow endpoint when content is published
// or updated, so search engines pick up changes without waiting for a
// crawl. Submission is fire-and-forget: a failed ping is logged and the
// publish flow is never blocked.
package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// Pinger submits changed URLs to an IndexNow-compatible endpoint.
type Pinger struct {
	endpoint string
	key      string
	host     string // bare hostname of the site, e.g. "www.example.com"
	keyURL   string // where the key file is served from
	client   *http.Client

	// retryBase is the initial backoff step, shortened in tests.
	retryBase time.Duration

	// OnResult, when set, is called with "ok" or "error" after each
	// submission attempt settles. Feeds a metrics counter.
	OnResult func(outcome string)
}

// New creates a Pinger for the given site. Returns nil when no key is
// configured so callers can skip submission entirely.
func New(endpoint, key, baseURL string) *Pinger {
	if key == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		slog.Warn("indexnow disabled: invalid base URL", "base_url", baseURL)
		return nil
	}
	return &Pinger{
		endpoint:  endpoint,
		key:       key,
		host:      u.Host,
		keyURL:    baseURL + "/" + key + ".txt",
		client:    &http.Client{Timeout: 10 * time.Second},
		retryBase: 2 * time.Second,
	}
}

// Key returns the configured IndexNow key, used to serve the
// verification file at /<key>.txt.
func (p *Pinger) Key() string {
	return p.key
}

// Submit sends the given absolute URLs to the IndexNow endpoint in the
// background. Transient failures are retried with fibonacci backoff.
func (p *Pinger) Submit(urls ...string) {
	if len(urls) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := p.submit(ctx, urls); err != nil {
			slog.Warn("indexnow submission failed", "urls", len(urls), "error", err)
			if p.OnResult != nil {
				p.OnResult("error")
			}
			return
		}
		slog.Info("indexnow submitted", "urls", len(urls))
		if p.OnResult != nil {
			p.OnResult("ok")
		}
	}()
}

func (p *Pinger) submit(ctx context.Context, urls []string) error {
	payload, err := json.Marshal(map[string]any{
		"host":        p.host,
		"key":         p.key,
		"keyLocation": p.keyURL,
		"urlList":     urls,
	})
	if err != nil {
		return fmt.Errorf("marshal indexnow payload: %w", err)
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(p.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		resp, err := p.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
			return nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return retry.RetryableError(fmt.Errorf("indexnow status %d", resp.StatusCode))
		default:
			// 4xx other than 429 means a bad key or payload; retrying won't help.
			return fmt.Errorf("indexnow status %d", resp.StatusCode)
		}
	})
}
