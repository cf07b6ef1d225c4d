// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package newsletter syncs local subscriber rows to an external email
// service provider over its JSON API. The local subscribers table is the
// source of truth; the provider call is best-effort and retried by a
// background sweep of unsynced rows.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tailorcms/internal/models"
	"tailorcms/internal/store"
)

// Client talks to the newsletter provider's subscription API.
type Client struct {
	baseURL string
	apiKey  string
	listID  string
	client  *http.Client
}

// New creates a provider client. Returns nil when no API URL is
// configured so callers can skip syncing entirely.
func New(baseURL, apiKey, listID string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		listID:  listID,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type subscribeRequest struct {
	Email  string            `json:"email"`
	ListID string            `json:"list_id,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Push subscribes one address at the provider. The industry signal, if
// captured at signup, rides along as a custom field for segmentation.
func (c *Client) Push(ctx context.Context, sub *models.Subscriber) error {
	body := subscribeRequest{
		Email:  sub.Email,
		ListID: c.listID,
	}
	if sub.Industry != nil && *sub.Industry != "" {
		body.Fields = map[string]string{"industry": *sub.Industry}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("newsletter marshal: %w", err)
	}

	url := c.baseURL + "/subscribers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("newsletter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("newsletter http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("newsletter API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SyncUnsynced pushes every subscriber that has not reached the
// provider yet and stamps the ones that succeed. Called after each
// signup and safe to run from a cron.
func (c *Client) SyncUnsynced(ctx context.Context, contacts *store.ContactStore) {
	subs, err := contacts.ListUnsynced()
	if err != nil {
		slog.Error("newsletter sync: list unsynced", "error", err)
		return
	}

	var pushed int
	for i := range subs {
		if err := c.Push(ctx, &subs[i]); err != nil {
			slog.Warn("newsletter sync: push failed", "email", subs[i].Email, "error", err)
			continue
		}
		if err := contacts.MarkSynced(subs[i].ID, time.Now()); err != nil {
			slog.Error("newsletter sync: mark synced", "email", subs[i].Email, "error", err)
			continue
		}
		pushed++
	}
	if pushed > 0 {
		slog.Info("newsletter sync complete", "pushed", pushed, "total", len(subs))
	}
}
