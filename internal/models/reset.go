package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetTTL is how long a reset link stays valid.
const PasswordResetTTL = time.Hour

// PasswordResetToken maps an opaque token to a user for password recovery.
// Tokens are single-use: consumed on a successful reset.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
