// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PreviewTokenTTL is how long a preview link stays valid after creation.
const PreviewTokenTTL = 24 * time.Hour

// PreviewToken grants time-boxed, unauthenticated read access to a draft
// content item. The token value is a random opaque string carried in the
// preview URL. Each content item has at most one active token;
// regenerating replaces the previous one.
type PreviewToken struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	ContentID uuid.UUID `json:"content_id"`
	Views     int       `json:"views"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *PreviewToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
