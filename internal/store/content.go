// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tailorcms/internal/models"
)

// contentColumns is the canonical SELECT list for the content table.
const contentColumns = `id, type, slug, status, title, excerpt, body, content_blocks,
	meta_title, meta_description, canonical_url, og_title, og_description, og_image,
	twitter_title, twitter_description, article_schema, breadcrumb_schema,
	industries, goals, tags, author_name, author_id, published_at, created_at, updated_at`

// ContentStore handles all content-related database operations across the
// eight content types in the unified content table.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type scanner interface {
	Scan(dest ...any) error
}

// scanContent reads one content row. JSONB columns arrive as raw bytes;
// categorical arrays are decoded from their JSONB representation.
func scanContent(sc scanner) (*models.Content, error) {
	c := &models.Content{}
	var blocks, articleSchema, breadcrumbSchema, industries, goals, tags []byte
	err := sc.Scan(
		&c.ID, &c.Type, &c.Slug, &c.Status, &c.Title, &c.Excerpt, &c.Body, &blocks,
		&c.MetaTitle, &c.MetaDescription, &c.CanonicalURL, &c.OGTitle, &c.OGDescription, &c.OGImage,
		&c.TwitterTitle, &c.TwitterDesc, &articleSchema, &breadcrumbSchema,
		&industries, &goals, &tags, &c.AuthorName, &c.AuthorID,
		&c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Blocks = json.RawMessage(blocks)
	c.ArticleSchema = json.RawMessage(articleSchema)
	c.BreadcrumbSchema = json.RawMessage(breadcrumbSchema)
	if err := decodeStrings(industries, &c.Industries); err != nil {
		return nil, fmt.Errorf("decode industries: %w", err)
	}
	if err := decodeStrings(goals, &c.Goals); err != nil {
		return nil, fmt.Errorf("decode goals: %w", err)
	}
	if err := decodeStrings(tags, &c.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return c, nil
}

func decodeStrings(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// encodeStrings renders a string slice for a JSONB column; nil stays a
// JSON empty array so reads never see SQL NULL.
func encodeStrings(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

// nullableJSON maps an empty RawMessage to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// FindPublishedBySlug retrieves a published content item by slug.
// typeFilter narrows type-specific routes; "" matches any type. Returns
// (nil, nil) when absent or not published — drafts are invisible here.
func (s *ContentStore) FindPublishedBySlug(slug string, typeFilter models.ContentType) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE slug = $1 AND status = 'published'`
	args := []any{slug}
	if typeFilter != "" {
		query += ` AND type = $2`
		args = append(args, typeFilter)
	}

	c, err := scanContent(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// FindByID retrieves a content item by UUID regardless of status.
// Returns nil if not found. Used by the admin editor and preview path.
func (s *ContentStore) FindByID(id uuid.UUID) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRow(
		`SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// ListByType returns all content of a type for the admin list view,
// newest first.
func (s *ContentStore) ListByType(contentType models.ContentType) ([]models.Content, error) {
	return s.list(`SELECT `+contentColumns+` FROM content WHERE type = $1 ORDER BY created_at DESC`, contentType)
}

// ListPublishedByType returns published content of a type for public
// listing pages, most recently published first.
func (s *ContentStore) ListPublishedByType(contentType models.ContentType) ([]models.Content, error) {
	return s.list(`SELECT `+contentColumns+` FROM content
		WHERE type = $1 AND status = 'published'
		ORDER BY published_at DESC NULLS LAST`, contentType)
}

// ListPublished returns every published item. Used by the sitemap and
// bulk search-index submission.
func (s *ContentStore) ListPublished() ([]models.Content, error) {
	return s.list(`SELECT ` + contentColumns + ` FROM content
		WHERE status = 'published'
		ORDER BY published_at DESC NULLS LAST`)
}

func (s *ContentStore) list(query string, args ...any) ([]models.Content, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a new content item and returns it with generated fields.
func (s *ContentStore) Create(c *models.Content) (*models.Content, error) {
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	industries, err := encodeStrings(c.Industries)
	if err != nil {
		return nil, fmt.Errorf("encode industries: %w", err)
	}
	goals, err := encodeStrings(c.Goals)
	if err != nil {
		return nil, fmt.Errorf("encode goals: %w", err)
	}
	tags, err := encodeStrings(c.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO content (type, slug, status, title, excerpt, body, content_blocks,
			meta_title, meta_description, canonical_url, og_title, og_description, og_image,
			twitter_title, twitter_description, article_schema, breadcrumb_schema,
			industries, goals, tags, author_name, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING `+contentColumns,
		c.Type, c.Slug, c.Status, c.Title, c.Excerpt, c.Body, nullableJSON(c.Blocks),
		c.MetaTitle, c.MetaDescription, c.CanonicalURL, c.OGTitle, c.OGDescription, c.OGImage,
		c.TwitterTitle, c.TwitterDesc, nullableJSON(c.ArticleSchema), nullableJSON(c.BreadcrumbSchema),
		industries, goals, tags, c.AuthorName, c.AuthorID, c.PublishedAt,
	)

	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// Update modifies an existing content item.
//
// This is a plain read-modify-write with no optimistic-concurrency check:
// two editors saving the same record race and the last write wins. Known
// and accepted for a small editorial team.
func (s *ContentStore) Update(c *models.Content) error {
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	industries, err := encodeStrings(c.Industries)
	if err != nil {
		return fmt.Errorf("encode industries: %w", err)
	}
	goals, err := encodeStrings(c.Goals)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	tags, err := encodeStrings(c.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE content SET
			type = $1, slug = $2, status = $3, title = $4, excerpt = $5, body = $6,
			content_blocks = $7, meta_title = $8, meta_description = $9, canonical_url = $10,
			og_title = $11, og_description = $12, og_image = $13,
			twitter_title = $14, twitter_description = $15,
			article_schema = $16, breadcrumb_schema = $17,
			industries = $18, goals = $19, tags = $20,
			author_name = $21, published_at = $22, updated_at = NOW()
		WHERE id = $23`,
		c.Type, c.Slug, c.Status, c.Title, c.Excerpt, c.Body,
		nullableJSON(c.Blocks), c.MetaTitle, c.MetaDescription, c.CanonicalURL,
		c.OGTitle, c.OGDescription, c.OGImage,
		c.TwitterTitle, c.TwitterDesc,
		nullableJSON(c.ArticleSchema), nullableJSON(c.BreadcrumbSchema),
		industries, goals, tags, c.AuthorName, c.PublishedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// Delete removes a content item permanently. No tombstone: preview
// tokens cascade away with the row.
func (s *ContentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// CountByType returns the number of content items of the given type.
func (s *ContentStore) CountByType(contentType models.ContentType) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM content WHERE type = $1`, contentType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return count, nil
}
