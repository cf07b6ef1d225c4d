// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tailorcms/internal/models"
)

// ContactStore persists contact-form submissions and newsletter
// subscribers.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore creates a new ContactStore with the given database connection.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

// CreateSubmission records a contact-form submission before any email
// delivery is attempted, so a mailer outage never loses the message.
func (s *ContactStore) CreateSubmission(sub *models.ContactSubmission) (*models.ContactSubmission, error) {
	out := &models.ContactSubmission{}
	err := s.db.QueryRow(`
		INSERT INTO contact_submissions (name, email, company, message, source_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, company, message, source_url, created_at`,
		sub.Name, sub.Email, sub.Company, sub.Message, sub.SourceURL,
	).Scan(&out.ID, &out.Name, &out.Email, &out.Company, &out.Message, &out.SourceURL, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create contact submission: %w", err)
	}
	return out, nil
}

// ListSubmissions returns contact submissions newest first for the
// admin inbox view.
func (s *ContactStore) ListSubmissions(limit int) ([]models.ContactSubmission, error) {
	rows, err := s.db.Query(`
		SELECT id, name, email, company, message, source_url, created_at
		FROM contact_submissions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.ContactSubmission
	for rows.Next() {
		var c models.ContactSubmission
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Message, &c.SourceURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		subs = append(subs, c)
	}
	return subs, rows.Err()
}

// Subscribe upserts a newsletter subscriber. Re-subscribing an existing
// address is a no-op rather than an error so the public form never
// leaks whether an email is already on the list.
func (s *ContactStore) Subscribe(email string, industry *string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := s.db.QueryRow(`
		INSERT INTO subscribers (email, industry)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET industry = COALESCE(EXCLUDED.industry, subscribers.industry)
		RETURNING id, email, industry, synced_at, created_at`,
		email, industry,
	).Scan(&sub.ID, &sub.Email, &sub.Industry, &sub.SyncedAt, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// ListUnsynced returns subscribers not yet pushed to the external
// newsletter service.
func (s *ContactStore) ListUnsynced() ([]models.Subscriber, error) {
	rows, err := s.db.Query(`
		SELECT id, email, industry, synced_at, created_at
		FROM subscribers WHERE synced_at IS NULL ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unsynced subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Industry, &sub.SyncedAt, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MarkSynced stamps a subscriber as delivered to the newsletter service.
func (s *ContactStore) MarkSynced(id uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(`UPDATE subscribers SET synced_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark subscriber synced: %w", err)
	}
	return nil
}
