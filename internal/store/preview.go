// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"tailorcms/internal/models"
)

// PreviewStore manages shareable draft-preview tokens.
type PreviewStore struct {
	db *sql.DB
}

// NewPreviewStore creates a new PreviewStore with the given database connection.
func NewPreviewStore(db *sql.DB) *PreviewStore {
	return &PreviewStore{db: db}
}

// Create issues a fresh token for a content item. Any existing token
// for that item is replaced, so a regenerated link invalidates the old
// one immediately.
func (s *PreviewStore) Create(contentID uuid.UUID) (*models.PreviewToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate preview token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if _, err := s.db.Exec(`DELETE FROM preview_tokens WHERE content_id = $1`, contentID); err != nil {
		return nil, fmt.Errorf("revoke previous preview token: %w", err)
	}

	t := &models.PreviewToken{}
	err := s.db.QueryRow(`
		INSERT INTO preview_tokens (token, content_id, expires_at)
		VALUES ($1, $2, NOW() + $3::interval)
		RETURNING id, token, content_id, views, expires_at, created_at`,
		token, contentID, models.PreviewTokenTTL.String(),
	).Scan(&t.ID, &t.Token, &t.ContentID, &t.Views, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create preview token: %w", err)
	}
	return t, nil
}

// FindByToken retrieves a preview token by its opaque value. Returns
// (nil, nil) when unknown; expiry is the caller's decision so an
// expired link can be reported distinctly from a missing one.
func (s *PreviewStore) FindByToken(token string) (*models.PreviewToken, error) {
	t := &models.PreviewToken{}
	err := s.db.QueryRow(`
		SELECT id, token, content_id, views, expires_at, created_at
		FROM preview_tokens WHERE token = $1`, token,
	).Scan(&t.ID, &t.Token, &t.ContentID, &t.Views, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find preview token: %w", err)
	}
	return t, nil
}

// FindByContentID returns the active token for a content item, if any.
// Used by the editor to show the current share link.
func (s *PreviewStore) FindByContentID(contentID uuid.UUID) (*models.PreviewToken, error) {
	t := &models.PreviewToken{}
	err := s.db.QueryRow(`
		SELECT id, token, content_id, views, expires_at, created_at
		FROM preview_tokens WHERE content_id = $1`, contentID,
	).Scan(&t.ID, &t.Token, &t.ContentID, &t.Views, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find preview token by content: %w", err)
	}
	return t, nil
}

// IncrementViews bumps the view counter for a token. The counter is
// informational only and is never read back in the same request.
func (s *PreviewStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE preview_tokens SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment preview views: %w", err)
	}
	return nil
}

// Revoke deletes the token for a content item, killing any shared links.
func (s *PreviewStore) Revoke(contentID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM preview_tokens WHERE content_id = $1`, contentID)
	if err != nil {
		return fmt.Errorf("revoke preview token: %w", err)
	}
	return nil
}

// DeleteExpired clears out tokens past their expiry. Called
// opportunistically; expired tokens are also rejected at read time.
func (s *PreviewStore) DeleteExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM preview_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired preview tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
