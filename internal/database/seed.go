package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a sample block-built landing page. The admin will be
// prompted to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@tailorcms.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Sample home page assembled from content blocks, including one
	// personalized hero so the editor has a working example to copy.
	_, err = db.Exec(`
		INSERT INTO content (type, slug, status, title, content_blocks, author_id, published_at)
		VALUES ('static_page', 'home', 'published', 'Home', $1, $2, NOW())
	`, sampleHomeBlocks, adminID)
	if err != nil {
		return fmt.Errorf("seed insert home page: %w", err)
	}

	// Baseline site settings.
	_, err = db.Exec(`
		INSERT INTO site_settings (key, value) VALUES
			('site_name', 'TailorCMS'),
			('site_tagline', 'Marketing analytics, explained'),
			('default_og_image', '')
		ON CONFLICT (key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed site settings: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@tailorcms.local",
		"password", "admin",
	)

	return nil
}

const sampleHomeBlocks = `[
  {
    "id": "hero-1",
    "type": "hero",
    "order": 0,
    "data": {
      "title": "Know what every campaign really earns",
      "subtitle": "Server-side attribution for teams that outgrew spreadsheets.",
      "alignment": "center",
      "buttons": [{"label": "Book a demo", "url": "/contact", "style": "primary"}],
      "personalization": {
        "enabled": true,
        "industryVariants": {
          "Healthcare": {"title": "Attribution built for patient-privacy rules"},
          "Ecommerce": {"title": "Tie every order back to the ad that drove it"}
        }
      }
    }
  },
  {
    "id": "features-1",
    "type": "feature_grid",
    "order": 1,
    "data": {
      "heading": "Why teams switch",
      "columns": 3,
      "features": [
        {"title": "First-party data", "description": "Your pipeline, your warehouse."},
        {"title": "No sampling", "description": "Every event, every time."},
        {"title": "Privacy-first", "description": "Consent-aware from the ground up."}
      ]
    }
  },
  {
    "id": "cta-1",
    "type": "cta_banner",
    "order": 2,
    "data": {
      "heading": "See it on your own data",
      "button": {"label": "Start free", "url": "/contact", "style": "primary"}
    }
  }
]`
