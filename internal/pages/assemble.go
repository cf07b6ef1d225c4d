// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pages assembles public pages: it loads a content record,
// renders either its block list or its legacy Markdown body, and computes
// the SEO metadata and JSON-LD for the document head.
package pages

import (
	"errors"
	"html/template"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tailorcms/internal/blocks"
	"tailorcms/internal/markdown"
	"tailorcms/internal/models"
	"tailorcms/internal/personalization"
)

var (
	// ErrNotFound covers every terminal miss: unknown slug, unpublished
	// record on a public route, invalid preview token, and a record whose
	// block list is malformed with no legacy body to fall back to.
	ErrNotFound = errors.New("pages: content not found")

	// ErrPreviewExpired distinguishes a known-but-stale preview token so
	// the handler can render an "expired" page instead of a bare 404.
	ErrPreviewExpired = errors.New("pages: preview token expired")
)

// ContentSource is the slice of the content store the assembler needs.
type ContentSource interface {
	// FindPublishedBySlug returns (nil, nil) on miss; typeFilter "" means
	// any type.
	FindPublishedBySlug(slug string, typeFilter models.ContentType) (*models.Content, error)
	FindByID(id uuid.UUID) (*models.Content, error)
}

// PreviewSource resolves preview tokens.
type PreviewSource interface {
	// FindByToken returns (nil, nil) on miss.
	FindByToken(token string) (*models.PreviewToken, error)
	// IncrementViews is best-effort; see the preview store for the
	// documented read-then-write race.
	IncrementViews(id uuid.UUID) error
}

// Page is a fully assembled public page ready for the layout template.
type Page struct {
	Content        *models.Content
	Body           template.HTML
	Meta           Meta
	StructuredData []string // serialized JSON-LD fragments, one <script> each
	Preview        bool     // render the Preview Mode indicator
}

// Assembler wires the content store, preview store, and block renderer
// into the page assembly pipeline.
type Assembler struct {
	content  ContentSource
	previews PreviewSource
	renderer *blocks.Renderer
	baseURL  string
	now      func() time.Time
}

// New creates an Assembler. baseURL is the absolute site origin used for
// canonical URLs and JSON-LD.
func New(content ContentSource, previews PreviewSource, renderer *blocks.Renderer, baseURL string) *Assembler {
	return &Assembler{
		content:  content,
		previews: previews,
		renderer: renderer,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// Assemble builds the public page for a slug. typeFilter scopes
// type-specific routes ("" for the root static-page route). Only
// published records are visible here; drafts 404 regardless of session
// state.
func (a *Assembler) Assemble(slug string, typeFilter models.ContentType, state personalization.State) (*Page, error) {
	c, err := a.content.FindPublishedBySlug(slug, typeFilter)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return a.build(c, state, false)
}

// AssemblePreview builds a page from a preview token, bypassing the
// published filter. The token must exist and be unexpired; the view
// counter is bumped best-effort.
func (a *Assembler) AssemblePreview(token string, state personalization.State) (*Page, error) {
	t, err := a.previews.FindByToken(token)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Expired(a.now()) {
		return nil, ErrPreviewExpired
	}

	c, err := a.content.FindByID(t.ContentID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	if err := a.previews.IncrementViews(t.ID); err != nil {
		slog.Warn("preview view count failed", "token_id", t.ID, "error", err)
	}

	return a.build(c, state, true)
}

// build renders the body and computes head metadata. Branch order: a
// well-formed, non-empty block list wins; otherwise a non-empty legacy
// body renders as Markdown; otherwise the record has nothing to show and
// is treated as not found rather than serving a blank page.
func (a *Assembler) build(c *models.Content, state personalization.State, preview bool) (*Page, error) {
	p := &Page{
		Content: c,
		Meta:    BuildMeta(c, a.baseURL),
		Preview: preview,
	}

	var blockFragments []map[string]any
	if list := blocks.ParseBlocks(c.Blocks); len(list) > 0 {
		res := a.renderer.Render(list, state)
		p.Body = res.HTML
		blockFragments = res.StructuredData
	} else if c.Body != "" {
		html, err := markdown.ToHTML(c.Body)
		if err != nil {
			slog.Warn("markdown render failed, serving raw body", "slug", c.Slug, "error", err)
			html = c.Body
		}
		p.Body = template.HTML(html)
	} else {
		return nil, ErrNotFound
	}

	p.StructuredData = structuredData(c, a.baseURL, blockFragments)
	return p, nil
}
