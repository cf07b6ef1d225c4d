package models

import (
	"encoding/json"
	"testing"
)

// TestContentIsPublished verifies that IsPublished returns true only for
// the "published" status.
func TestContentIsPublished(t *testing.T) {
	tests := []struct {
		name   string
		status ContentStatus
		want   bool
	}{
		{name: "published", status: ContentStatusPublished, want: true},
		{name: "draft", status: ContentStatusDraft, want: false},
		{name: "archived", status: ContentStatusArchived, want: false},
		{name: "empty status", status: ContentStatus(""), want: false},
		{name: "uppercase PUBLISHED", status: ContentStatus("PUBLISHED"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Content{Status: tt.status}
			if got := c.IsPublished(); got != tt.want {
				t.Errorf("Content{Status: %q}.IsPublished() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}

// TestContentTypeValid verifies the closed set of content types.
func TestContentTypeValid(t *testing.T) {
	for _, ct := range ContentTypes {
		if !ct.Valid() {
			t.Errorf("ContentType %q should be valid", ct)
		}
	}
	for _, bad := range []ContentType{"", "post", "page", "BLOG"} {
		if bad.Valid() {
			t.Errorf("ContentType %q should not be valid", bad)
		}
	}
}

// TestContentTypeIsArticle verifies which types get derived Article schema.
func TestContentTypeIsArticle(t *testing.T) {
	tests := []struct {
		ct   ContentType
		want bool
	}{
		{ContentTypeBlog, true},
		{ContentTypeCaseStudy, true},
		{ContentTypeNews, true},
		{ContentTypeStaticPage, false},
		{ContentTypeToolGuide, false},
		{ContentTypeImplementationGuide, false},
	}
	for _, tt := range tests {
		if got := tt.ct.IsArticle(); got != tt.want {
			t.Errorf("%s.IsArticle() = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

// TestContentHasBlocks verifies the blocks-vs-legacy branch condition: only
// a well-formed, non-empty JSON array counts as block content.
func TestContentHasBlocks(t *testing.T) {
	tests := []struct {
		name   string
		blocks string
		want   bool
	}{
		{name: "nil", blocks: "", want: false},
		{name: "empty array", blocks: "[]", want: false},
		{name: "one block", blocks: `[{"id":"b1","type":"hero","order":1,"data":{}}]`, want: true},
		{name: "not an array", blocks: `{"type":"hero"}`, want: false},
		{name: "garbage", blocks: `not json`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Content{}
			if tt.blocks != "" {
				c.Blocks = json.RawMessage(tt.blocks)
			}
			if got := c.HasBlocks(); got != tt.want {
				t.Errorf("HasBlocks() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestContentAuthor verifies the literal organization-level author default.
func TestContentAuthor(t *testing.T) {
	c := &Content{}
	if got := c.Author(); got != "organization team" {
		t.Errorf("Author() = %q, want %q", got, "organization team")
	}

	name := "Jamie Rivers"
	c.AuthorName = &name
	if got := c.Author(); got != "Jamie Rivers" {
		t.Errorf("Author() = %q, want %q", got, "Jamie Rivers")
	}

	empty := ""
	c.AuthorName = &empty
	if got := c.Author(); got != "organization team" {
		t.Errorf("Author() with empty name = %q, want default", got)
	}
}
