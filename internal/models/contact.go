// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactSubmission is one contact-form entry. Submissions are stored
// before the notification email is attempted, so a mailer outage never
// loses the message itself.
type ContactSubmission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company,omitempty"`
	Message   string    `json:"message"`
	SourceURL *string   `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriber is a newsletter signup. The provider sync is fire-and-forget;
// SyncedAt stays nil when the provider call failed and is retried never
// (the local row is the source of truth for re-sync scripts).
type Subscriber struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Industry  *string    `json:"industry,omitempty"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
