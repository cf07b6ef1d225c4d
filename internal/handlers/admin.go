// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tailorcms/internal/cache"
	"tailorcms/internal/indexing"
	"tailorcms/internal/models"
	"tailorcms/internal/pages"
	"tailorcms/internal/personalization"
	"tailorcms/internal/render"
	"tailorcms/internal/slug"
	"tailorcms/internal/store"
)

// Admin groups the handlers behind /admin. Everything here sits behind
// the auth and 2FA middleware; handlers only deal with editorial logic.
type Admin struct {
	renderer     *render.Renderer
	contentStore *store.ContentStore
	previewStore *store.PreviewStore
	contactStore *store.ContactStore
	settingStore *store.SiteSettingStore
	pageCache    *cache.PageCache
	pinger       *indexing.Pinger
	baseURL      string
}

// NewAdmin creates the admin handler group. pinger may be nil when
// search-index submission is not configured.
func NewAdmin(renderer *render.Renderer, contentStore *store.ContentStore, previewStore *store.PreviewStore, contactStore *store.ContactStore, settingStore *store.SiteSettingStore, pageCache *cache.PageCache, pinger *indexing.Pinger, baseURL string) *Admin {
	return &Admin{
		renderer:     renderer,
		contentStore: contentStore,
		previewStore: previewStore,
		contactStore: contactStore,
		settingStore: settingStore,
		pageCache:    pageCache,
		pinger:       pinger,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// Dashboard shows per-type content counts and recent contact submissions.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	type typeCount struct {
		Type  string
		Count int
	}

	counts := make([]typeCount, 0, len(models.ContentTypes))
	for _, ct := range models.ContentTypes {
		n, err := a.contentStore.CountByType(ct)
		if err != nil {
			slog.Error("count content failed", "type", ct, "error", err)
		}
		counts = append(counts, typeCount{Type: string(ct), Count: n})
	}

	contacts, err := a.contactStore.ListSubmissions(5)
	if err != nil {
		slog.Error("list contact submissions failed", "error", err)
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Counts":   counts,
			"Contacts": contacts,
		},
	})
}

// ContentList shows all items of one content type.
func (a *Admin) ContentList(w http.ResponseWriter, r *http.Request) {
	ct := models.ContentType(chi.URLParam(r, "key"))
	if !ct.Valid() {
		http.NotFound(w, r)
		return
	}

	items, err := a.contentStore.ListByType(ct)
	if err != nil {
		slog.Error("list content failed", "type", ct, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "content_list", &render.PageData{
		Title:   string(ct),
		Section: string(ct),
		Data: map[string]any{
			"Type":  string(ct),
			"Items": items,
		},
	})
}

// ContentNew renders an empty editor form for one content type.
func (a *Admin) ContentNew(w http.ResponseWriter, r *http.Request) {
	ct := models.ContentType(chi.URLParam(r, "key"))
	if !ct.Valid() {
		http.NotFound(w, r)
		return
	}

	a.renderer.Page(w, r, "content_form", &render.PageData{
		Title:   "New " + string(ct),
		Section: string(ct),
		Data:    contentFormData(&models.Content{Type: ct, Status: models.ContentStatusDraft}, true, nil),
	})
}

// ContentEdit renders the editor form for an existing item.
func (a *Admin) ContentEdit(w http.ResponseWriter, r *http.Request) {
	c, ok := a.findByParam(w, r)
	if !ok {
		return
	}

	token, err := a.previewStore.FindByContentID(c.ID)
	if err != nil {
		slog.Error("find preview token failed", "content_id", c.ID, "error", err)
	}

	a.renderer.Page(w, r, "content_form", &render.PageData{
		Title:   "Edit " + c.Title,
		Section: string(c.Type),
		Data:    contentFormData(c, false, token),
	})
}

// ContentSave handles both editor form posts. The form posts to
// /admin/content/{type} for new items and /admin/content/{id} for edits,
// which land on the same route pattern; a key that parses as a UUID is an
// edit, anything else must be a content type.
func (a *Admin) ContentSave(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if id, err := uuid.Parse(key); err == nil {
		a.updateContent(w, r, id)
		return
	}

	ct := models.ContentType(key)
	if !ct.Valid() {
		http.NotFound(w, r)
		return
	}
	a.createContent(w, r, ct)
}

func (a *Admin) createContent(w http.ResponseWriter, r *http.Request, ct models.ContentType) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	c := &models.Content{Type: ct, AuthorID: sess.UserID}
	if errMsg := applyContentForm(r, c); errMsg != "" {
		a.renderer.Page(w, r, "content_form", &render.PageData{
			Title:   "New " + string(ct),
			Section: string(ct),
			Flashes: []render.Flash{{Type: "error", Message: errMsg}},
			Data:    contentFormData(c, true, nil),
		})
		return
	}

	created, err := a.contentStore.Create(c)
	if err != nil {
		slog.Error("create content failed", "type", ct, "error", err)
		a.renderer.Page(w, r, "content_form", &render.PageData{
			Title:   "New " + string(ct),
			Section: string(ct),
			Flashes: []render.Flash{{Type: "error", Message: "Failed to create. The slug may already exist."}},
			Data:    contentFormData(c, true, nil),
		})
		return
	}

	a.afterMutation(r, created)
	http.Redirect(w, r, "/admin/content/"+string(ct), http.StatusSeeOther)
}

func (a *Admin) updateContent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	c, err := a.contentStore.FindByID(id)
	if err != nil {
		slog.Error("find content failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}

	oldPath := pages.PublicPath(c)
	wasPublished := c.IsPublished()

	if errMsg := applyContentForm(r, c); errMsg != "" {
		token, _ := a.previewStore.FindByContentID(c.ID)
		a.renderer.Page(w, r, "content_form", &render.PageData{
			Title:   "Edit " + c.Title,
			Section: string(c.Type),
			Flashes: []render.Flash{{Type: "error", Message: errMsg}},
			Data:    contentFormData(c, false, token),
		})
		return
	}

	// A record unpublished or re-slugged must also vanish from its old
	// URL, so the old path is invalidated regardless of the new state.
	if err := a.contentStore.Update(c); err != nil {
		slog.Error("update content failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if wasPublished && oldPath != pages.PublicPath(c) {
		a.pageCache.InvalidatePath(r.Context(), oldPath)
	}
	a.afterMutation(r, c)

	http.Redirect(w, r, "/admin/content/edit/"+c.ID.String(), http.StatusSeeOther)
}

// ContentDelete removes an item permanently. Preview tokens cascade away
// in the database.
func (a *Admin) ContentDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := a.findByParam(w, r)
	if !ok {
		return
	}

	if err := a.contentStore.Delete(c.ID); err != nil {
		slog.Error("delete content failed", "id", c.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidatePath(r.Context(), pages.PublicPath(c))

	// HTMX swaps the table row out with an empty response.
	w.WriteHeader(http.StatusOK)
}

// PreviewTokenCreate mints (or regenerates) the preview link for an item.
func (a *Admin) PreviewTokenCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := a.findByParam(w, r)
	if !ok {
		return
	}

	if _, err := a.previewStore.Create(c.ID); err != nil {
		slog.Error("create preview token failed", "content_id", c.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/content/edit/"+c.ID.String(), http.StatusSeeOther)
}

// PreviewTokenRevoke invalidates the item's outstanding preview link.
func (a *Admin) PreviewTokenRevoke(w http.ResponseWriter, r *http.Request) {
	c, ok := a.findByParam(w, r)
	if !ok {
		return
	}

	if err := a.previewStore.Revoke(c.ID); err != nil {
		slog.Error("revoke preview token failed", "content_id", c.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/content/edit/"+c.ID.String(), http.StatusSeeOther)
}

// ContactsList shows stored contact-form submissions, newest first.
func (a *Admin) ContactsList(w http.ResponseWriter, r *http.Request) {
	subs, err := a.contactStore.ListSubmissions(100)
	if err != nil {
		slog.Error("list contact submissions failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "contacts", &render.PageData{
		Title:   "Contact Submissions",
		Section: "contacts",
		Data:    map[string]any{"Submissions": subs},
	})
}

// SettingsPage renders the site settings form.
func (a *Admin) SettingsPage(w http.ResponseWriter, r *http.Request) {
	settings, err := a.settingStore.All()
	if err != nil {
		slog.Error("load settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data:    map[string]any{"Settings": settings},
	})
}

// settingKeys lists the keys the settings form manages.
var settingKeys = []string{"site_name", "site_tagline", "default_og_image"}

// SettingsUpdate saves the settings form and flushes the whole page
// cache — the site chrome is baked into every cached page.
func (a *Admin) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	values := make(map[string]string, len(settingKeys))
	for _, k := range settingKeys {
		values[k] = strings.TrimSpace(r.FormValue(k))
	}

	if err := a.settingStore.SetMany(values); err != nil {
		slog.Error("save settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())

	settings, _ := a.settingStore.All()
	a.renderer.Page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Flashes: []render.Flash{{Type: "success", Message: "Settings saved."}},
		Data:    map[string]any{"Settings": settings},
	})
}

// PersonalizeTest sets or clears any personalization signal on the
// editor's own browser, so variant content can be checked on the live
// site without touching real visitor flows. Unlike the public endpoint
// it accepts the tool and goal fields too.
func (a *Admin) PersonalizeTest(w http.ResponseWriter, r *http.Request) {
	field := personalization.Field(r.FormValue("field"))
	value := strings.TrimSpace(r.FormValue("value"))

	var err error
	if value == "" {
		err = personalization.ClearField(w, field)
	} else {
		err = personalization.SetField(w, field, value)
	}
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// findByParam loads the content item named by the {key} URL parameter,
// writing the error response itself on failure.
func (a *Admin) findByParam(w http.ResponseWriter, r *http.Request) (*models.Content, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "key"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}

	c, err := a.contentStore.FindByID(id)
	if err != nil {
		slog.Error("find content failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if c == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return c, true
}

// afterMutation invalidates the cached page (all personalized variants)
// and submits the URL to the search index when the item is published.
// The submission is fire-and-forget and never delays the response.
func (a *Admin) afterMutation(r *http.Request, c *models.Content) {
	path := pages.PublicPath(c)
	a.pageCache.InvalidatePath(r.Context(), path)

	if c.IsPublished() && a.pinger != nil {
		a.pinger.Submit(a.baseURL + path)
	}
}

// applyContentForm copies the editor form fields onto c, returning a
// user-facing message for the first validation failure.
func applyContentForm(r *http.Request, c *models.Content) string {
	title := strings.TrimSpace(r.FormValue("title"))
	contentSlug := strings.TrimSpace(r.FormValue("slug"))
	body := r.FormValue("body")
	blocksJSON := strings.TrimSpace(r.FormValue("content_blocks"))
	articleSchema := strings.TrimSpace(r.FormValue("article_schema"))
	breadcrumbSchema := strings.TrimSpace(r.FormValue("breadcrumb_schema"))

	if errMsg := validateContent(title, contentSlug, body); errMsg != "" {
		return errMsg
	}
	if errMsg := validateBlocksJSON(blocksJSON); errMsg != "" {
		return errMsg
	}
	if errMsg := validateSchemaJSON(articleSchema); errMsg != "" {
		return errMsg
	}
	if errMsg := validateSchemaJSON(breadcrumbSchema); errMsg != "" {
		return errMsg
	}
	if errMsg := validateMetadata(r.FormValue("excerpt"),
		r.FormValue("meta_title"), r.FormValue("meta_description"), r.FormValue("canonical_url"),
		r.FormValue("og_title"), r.FormValue("og_description"), r.FormValue("og_image"),
		r.FormValue("twitter_title"), r.FormValue("twitter_description")); errMsg != "" {
		return errMsg
	}

	if contentSlug == "" {
		contentSlug = slug.Generate(title)
	}

	status := models.ContentStatus(r.FormValue("status"))
	switch status {
	case models.ContentStatusDraft, models.ContentStatusPublished, models.ContentStatusArchived:
	default:
		status = models.ContentStatusDraft
	}

	c.Title = title
	c.Slug = contentSlug
	c.Body = body
	c.Status = status
	c.Blocks = nil
	if blocksJSON != "" {
		c.Blocks = []byte(blocksJSON)
	}
	c.ArticleSchema = nil
	if articleSchema != "" {
		c.ArticleSchema = []byte(articleSchema)
	}
	c.BreadcrumbSchema = nil
	if breadcrumbSchema != "" {
		c.BreadcrumbSchema = []byte(breadcrumbSchema)
	}

	c.Excerpt = optField(r, "excerpt")
	c.MetaTitle = optField(r, "meta_title")
	c.MetaDescription = optField(r, "meta_description")
	c.CanonicalURL = optField(r, "canonical_url")
	c.OGTitle = optField(r, "og_title")
	c.OGDescription = optField(r, "og_description")
	c.OGImage = optField(r, "og_image")
	c.TwitterTitle = optField(r, "twitter_title")
	c.TwitterDesc = optField(r, "twitter_description")
	c.AuthorName = optField(r, "author_name")

	c.Industries = splitCSV(r.FormValue("industries"))
	c.Goals = splitCSV(r.FormValue("goals"))
	c.Tags = splitCSV(r.FormValue("tags"))

	return ""
}

// contentFormData builds the template payload for the editor form.
func contentFormData(c *models.Content, isNew bool, token *models.PreviewToken) map[string]any {
	return map[string]any{
		"Content":              c,
		"Type":                 string(c.Type),
		"IsNew":                isNew,
		"PreviewToken":         token,
		"BlocksJSON":           string(c.Blocks),
		"ArticleSchemaJSON":    string(c.ArticleSchema),
		"BreadcrumbSchemaJSON": string(c.BreadcrumbSchema),
		"Industries":           strings.Join(c.Industries, ", "),
		"Goals":                strings.Join(c.Goals, ", "),
		"Tags":                 strings.Join(c.Tags, ", "),
	}
}

// optField returns a pointer to the trimmed form value, nil when empty.
func optField(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

// splitCSV parses a comma-separated input into trimmed non-empty values.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
