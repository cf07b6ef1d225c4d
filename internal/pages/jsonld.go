// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pages

import (
	"encoding/json"
	"strings"
	"time"

	"tailorcms/internal/models"
)

// sectionLabels provides human breadcrumb names per content type.
var sectionLabels = map[models.ContentType]string{
	models.ContentTypeBlog:                "Blog",
	models.ContentTypeCaseStudy:           "Case Studies",
	models.ContentTypeImplementationGuide: "Implementation Guides",
	models.ContentTypeTestResult:          "Test Results",
	models.ContentTypeBestPractice:        "Best Practices",
	models.ContentTypeToolGuide:           "Tool Guides",
	models.ContentTypeNews:                "News",
}

// structuredData collects the JSON-LD fragments for a content item:
// Article and Breadcrumb, plus any block-level fragments (HowTo) passed
// in. Explicit schema columns win verbatim; otherwise fragments are
// derived, but only for article-type content.
func structuredData(c *models.Content, baseURL string, blockFragments []map[string]any) []string {
	var out []string

	if frag := articleJSON(c, baseURL); frag != "" {
		out = append(out, frag)
	}
	if frag := breadcrumbJSON(c, baseURL); frag != "" {
		out = append(out, frag)
	}
	for _, f := range blockFragments {
		if raw, err := json.Marshal(f); err == nil {
			out = append(out, string(raw))
		}
	}
	return out
}

func articleJSON(c *models.Content, baseURL string) string {
	if len(c.ArticleSchema) > 0 {
		return string(c.ArticleSchema)
	}
	if !c.Type.IsArticle() {
		return ""
	}

	frag := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Article",
		"headline": c.Title,
		"url":      strings.TrimRight(baseURL, "/") + PublicPath(c),
		"author": map[string]any{
			"@type": "Organization",
			"name":  c.Author(),
		},
		"dateModified": c.UpdatedAt.Format(time.RFC3339),
	}
	if c.PublishedAt != nil {
		frag["datePublished"] = c.PublishedAt.Format(time.RFC3339)
	}
	if c.Excerpt != nil && *c.Excerpt != "" {
		frag["description"] = *c.Excerpt
	}

	raw, err := json.Marshal(frag)
	if err != nil {
		return ""
	}
	return string(raw)
}

func breadcrumbJSON(c *models.Content, baseURL string) string {
	if len(c.BreadcrumbSchema) > 0 {
		return string(c.BreadcrumbSchema)
	}
	if !c.Type.IsArticle() {
		return ""
	}

	base := strings.TrimRight(baseURL, "/")
	items := []map[string]any{
		{"@type": "ListItem", "position": 1, "name": "Home", "item": base + "/"},
	}
	if label, ok := sectionLabels[c.Type]; ok {
		items = append(items, map[string]any{
			"@type": "ListItem", "position": 2, "name": label,
			"item": base + routePrefixes[c.Type],
		})
	}
	items = append(items, map[string]any{
		"@type": "ListItem", "position": len(items) + 1, "name": c.Title,
		"item": base + PublicPath(c),
	})

	frag := map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
	raw, err := json.Marshal(frag)
	if err != nil {
		return ""
	}
	return string(raw)
}
