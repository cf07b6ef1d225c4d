// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pages

import (
	"strings"

	"tailorcms/internal/models"
)

// Meta holds the fully resolved SEO head fields for one page. Every field
// is the end of its fallback chain — templates emit them verbatim.
type Meta struct {
	Title       string
	Description string
	Canonical   string

	OGTitle       string
	OGDescription string
	OGImage       string

	TwitterTitle       string
	TwitterDescription string
}

// routePrefixes maps content types to their public URL section.
// static_page is intentionally absent: those live at the site root.
var routePrefixes = map[models.ContentType]string{
	models.ContentTypeBlog:                "/blog",
	models.ContentTypeCaseStudy:           "/case-studies",
	models.ContentTypeImplementationGuide: "/guides",
	models.ContentTypeTestResult:          "/test-results",
	models.ContentTypeBestPractice:        "/best-practices",
	models.ContentTypeToolGuide:           "/tools",
	models.ContentTypeNews:                "/news",
}

// PublicPath returns the site-relative path a content item is served at.
func PublicPath(c *models.Content) string {
	if prefix, ok := routePrefixes[c.Type]; ok {
		return prefix + "/" + c.Slug
	}
	return "/" + c.Slug
}

// BuildMeta resolves the SEO metadata for a content item with explicit
// override precedence. Later fields in each chain are fallbacks only —
// values never merge:
//
//	title:       meta_title ?? title
//	description: meta_description ?? excerpt ?? title
//	og_*:        og_* ?? the resolved meta field
//	twitter_*:   twitter_* ?? the resolved og field
//
// baseURL absolutizes the canonical URL when no explicit canonical exists.
func BuildMeta(c *models.Content, baseURL string) Meta {
	m := Meta{
		Title:       coalesce(c.MetaTitle, c.Title),
		Description: coalesce(c.MetaDescription, coalesce(c.Excerpt, c.Title)),
	}

	m.Canonical = coalesce(c.CanonicalURL, strings.TrimRight(baseURL, "/")+PublicPath(c))

	m.OGTitle = coalesce(c.OGTitle, m.Title)
	m.OGDescription = coalesce(c.OGDescription, m.Description)
	if c.OGImage != nil {
		m.OGImage = *c.OGImage
	}

	m.TwitterTitle = coalesce(c.TwitterTitle, m.OGTitle)
	m.TwitterDescription = coalesce(c.TwitterDesc, m.OGDescription)

	return m
}

// coalesce returns the pointed-to value when present and non-empty,
// otherwise the fallback.
func coalesce(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
