// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentType distinguishes the kinds of content served from the unified
// content table. Each type has its own public route prefix.
type ContentType string

const (
	ContentTypeBlog                ContentType = "blog"
	ContentTypeCaseStudy           ContentType = "case_study"
	ContentTypeImplementationGuide ContentType = "implementation_guide"
	ContentTypeTestResult          ContentType = "test_result"
	ContentTypeBestPractice        ContentType = "best_practice"
	ContentTypeToolGuide           ContentType = "tool_guide"
	ContentTypeNews                ContentType = "news"
	ContentTypeStaticPage          ContentType = "static_page"
)

// ContentTypes lists every valid content type, in admin display order.
var ContentTypes = []ContentType{
	ContentTypeBlog,
	ContentTypeCaseStudy,
	ContentTypeImplementationGuide,
	ContentTypeTestResult,
	ContentTypeBestPractice,
	ContentTypeToolGuide,
	ContentTypeNews,
	ContentTypeStaticPage,
}

// Valid reports whether ct is one of the known content types.
func (ct ContentType) Valid() bool {
	for _, t := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// IsArticle reports whether content of this type gets derived Article
// structured data (title, dates, author) even without an explicit schema.
func (ct ContentType) IsArticle() bool {
	switch ct {
	case ContentTypeBlog, ContentTypeCaseStudy, ContentTypeNews:
		return true
	}
	return false
}

// ContentStatus represents the publishing state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// Content represents one piece of content: a blog post, case study, guide,
// or static page. The body is either raw Markdown/HTML in Body (legacy
// path) or an ordered block list in Blocks (block editor path).
type Content struct {
	ID      uuid.UUID     `json:"id"`
	Type    ContentType   `json:"type"`
	Slug    string        `json:"slug"`
	Status  ContentStatus `json:"status"`
	Title   string        `json:"title"`
	Excerpt *string       `json:"excerpt,omitempty"`
	Body    string        `json:"body"`

	// Blocks holds the content_blocks JSONB column verbatim. Nil or empty
	// means the legacy Body path is used. Parsed by blocks.ParseBlocks at
	// render time.
	Blocks json.RawMessage `json:"content_blocks,omitempty"`

	// SEO overrides. Each falls back per the precedence chain in pages.Meta.
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	CanonicalURL    *string `json:"canonical_url,omitempty"`
	OGTitle         *string `json:"og_title,omitempty"`
	OGDescription   *string `json:"og_description,omitempty"`
	OGImage         *string `json:"og_image,omitempty"`
	TwitterTitle    *string `json:"twitter_title,omitempty"`
	TwitterDesc     *string `json:"twitter_description,omitempty"`

	// Explicit structured-data overrides (JSON objects). When present they
	// are emitted verbatim instead of the derived fragments.
	ArticleSchema    json.RawMessage `json:"article_schema,omitempty"`
	BreadcrumbSchema json.RawMessage `json:"breadcrumb_schema,omitempty"`

	// Categorical arrays used for filtering and personalization authoring.
	Industries []string `json:"industries,omitempty"`
	Goals      []string `json:"goals,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	AuthorName  *string    `json:"author_name,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished returns true if the content item is publicly visible.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}

// HasBlocks reports whether the item carries a non-empty block list.
// A present-but-empty JSON array counts as no blocks (legacy path).
func (c *Content) HasBlocks() bool {
	if len(c.Blocks) == 0 {
		return false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(c.Blocks, &arr); err != nil {
		return false
	}
	return len(arr) > 0
}

// Author returns the display author for structured data, falling back to
// the organization-level default when no author is set.
func (c *Content) Author() string {
	if c.AuthorName != nil && *c.AuthorName != "" {
		return *c.AuthorName
	}
	return "organization team"
}
