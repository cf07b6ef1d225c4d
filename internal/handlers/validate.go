// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxTitleLen    = 300
	maxSlugLen     = 300
	maxBodyLen     = 100_000
	maxBlocksLen   = 500_000
	maxExcerptLen  = 1_000
	maxMetaLen     = 500
	maxNameLen     = 200
	maxEmailLen    = 320
	maxMessageLen  = 10_000
	maxCompanyLen  = 200
)

// validateContent checks content form inputs and returns the first error found.
func validateContent(title, slug, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateMetadata checks optional SEO metadata fields.
func validateMetadata(excerpt string, metaFields ...string) string {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	for _, f := range metaFields {
		if utf8.RuneCountInString(f) > maxMetaLen {
			return "A metadata field is too long (max 500 characters)."
		}
	}
	return ""
}

// validateBlocksJSON checks the content_blocks textarea. Empty input is
// valid (the legacy body path applies). Non-empty input must be a JSON
// array of objects — deeper schema checks happen at render time, where a
// bad block is skipped rather than rejected, so authors are only stopped
// here for input the renderer could never parse.
func validateBlocksJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if utf8.RuneCountInString(raw) > maxBlocksLen {
		return "Content blocks are too long (max 500,000 characters)."
	}
	var arr []map[string]any
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return "Content blocks must be a JSON array of block objects."
	}
	return ""
}

// validateSchemaJSON checks an optional structured-data override field.
// Must be empty or a single JSON object.
func validateSchemaJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "Structured data overrides must be a JSON object."
	}
	return ""
}

// validateContactForm checks public contact submissions.
func validateContactForm(name, email, message string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long."
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if strings.TrimSpace(message) == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return "Message is too long (max 10,000 characters)."
	}
	return ""
}

// validateEmail performs a shallow shape check. Real validation is the
// delivery attempt; this only rejects obvious garbage.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t\n") {
		return "Email address looks invalid."
	}
	return ""
}
