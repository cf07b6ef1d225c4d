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

// ResetStore manages single-use password-reset tokens.
type ResetStore struct {
	db *sql.DB
}

// NewResetStore creates a new ResetStore with the given database connection.
func NewResetStore(db *sql.DB) *ResetStore {
	return &ResetStore{db: db}
}

// Create issues a reset token for a user, replacing any outstanding one.
func (s *ResetStore) Create(userID uuid.UUID) (*models.PasswordResetToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if _, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("revoke previous reset token: %w", err)
	}

	t := &models.PasswordResetToken{}
	err := s.db.QueryRow(`
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, NOW() + $3::interval)
		RETURNING id, token, user_id, expires_at, created_at`,
		token, userID, models.PasswordResetTTL.String(),
	).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}
	return t, nil
}

// FindValid retrieves a reset token that has not expired. Returns
// (nil, nil) for unknown or expired tokens alike; the reset form shows
// the same message either way.
func (s *ResetStore) FindValid(token string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := s.db.QueryRow(`
		SELECT id, token, user_id, expires_at, created_at
		FROM password_reset_tokens WHERE token = $1 AND expires_at > NOW()`, token,
	).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return t, nil
}

// Consume deletes a token after a successful reset so it cannot be reused.
func (s *ResetStore) Consume(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}
