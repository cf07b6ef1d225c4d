// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/xml"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"tailorcms/internal/cache"
	"tailorcms/internal/mailer"
	"tailorcms/internal/metrics"
	"tailorcms/internal/models"
	"tailorcms/internal/newsletter"
	"tailorcms/internal/pages"
	"tailorcms/internal/personalization"
	"tailorcms/internal/store"
)

// Public groups the handlers for the visitor-facing site. Rendered pages
// go through the L2 Valkey page cache; cache keys carry the visitor's
// industry signal so personalized variants never cross-contaminate.
type Public struct {
	assembler    *pages.Assembler
	contentStore *store.ContentStore
	contactStore *store.ContactStore
	settingStore *store.SiteSettingStore
	pageCache    *cache.PageCache
	mail         *mailer.Mailer
	news         *newsletter.Client
	metrics      *metrics.Metrics
	baseURL      string
	contactTo    string
}

// NewPublic creates the public handler group. mail, news, and m may be
// nil when the corresponding integration is not configured.
func NewPublic(assembler *pages.Assembler, contentStore *store.ContentStore, contactStore *store.ContactStore, settingStore *store.SiteSettingStore, pageCache *cache.PageCache, mail *mailer.Mailer, news *newsletter.Client, m *metrics.Metrics, baseURL, contactTo string) *Public {
	return &Public{
		assembler:    assembler,
		contentStore: contentStore,
		contactStore: contactStore,
		settingStore: settingStore,
		pageCache:    pageCache,
		mail:         mail,
		news:         news,
		metrics:      m,
		baseURL:      strings.TrimRight(baseURL, "/"),
		contactTo:    contactTo,
	}
}

// Homepage serves the static page with slug "home" at the site root.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	p.servePage(w, r, "home", models.ContentTypeStaticPage)
}

// StaticPage serves root-level static pages by slug.
func (p *Public) StaticPage(w http.ResponseWriter, r *http.Request) {
	p.servePage(w, r, chi.URLParam(r, "slug"), models.ContentTypeStaticPage)
}

// TypedPage returns a handler serving slugs of one content type, for the
// prefixed routes (/blog/{slug}, /case-studies/{slug}, ...).
func (p *Public) TypedPage(ct models.ContentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.servePage(w, r, chi.URLParam(r, "slug"), ct)
	}
}

// servePage is the shared published-page path: cache check, assemble,
// render, cache fill.
func (p *Public) servePage(w http.ResponseWriter, r *http.Request, slug string, ct models.ContentType) {
	ctx := r.Context()
	state := personalization.ReadState(r)

	key := cache.PageKey(r.URL.Path, state.Industry)
	if cached, ok := p.pageCache.Get(ctx, key); ok {
		if p.metrics != nil {
			p.metrics.PageCacheHitsTotal.Inc()
		}
		writeHTML(w, cached)
		return
	}
	if p.metrics != nil {
		p.metrics.PageCacheMissesTotal.Inc()
	}

	page, err := p.assembler.Assemble(slug, ct, state)
	if errors.Is(err, pages.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("assemble page failed", "slug", slug, "type", ct, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderPublic(page, state)
	if err != nil {
		slog.Error("render page failed", "slug", slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.metrics != nil {
		p.metrics.PagesRenderedTotal.WithLabelValues(string(ct)).Inc()
		if state.Industry != "" {
			p.metrics.PersonalizedBlocksTotal.WithLabelValues(state.Industry).Inc()
		}
	}

	p.pageCache.Set(ctx, key, html)
	writeHTML(w, html)
}

// Preview serves a draft through its preview token. Never cached: the
// content changes while being edited, and the token itself is the access
// control.
func (p *Public) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	state := personalization.ReadState(r)

	page, err := p.assembler.AssemblePreview(token, state)
	if errors.Is(err, pages.ErrPreviewExpired) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusGone)
		w.Write([]byte(`<!DOCTYPE html><html><head><title>Preview expired</title></head>` +
			`<body><h1>Preview link expired</h1><p>Ask the author for a fresh link.</p></body></html>`))
		return
	}
	if errors.Is(err, pages.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("assemble preview failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.metrics != nil {
		p.metrics.PreviewViewsTotal.Inc()
	}

	html, err := p.renderPublic(page, state)
	if err != nil {
		slog.Error("render preview failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, html)
}

// Personalize sets or clears the visitor's industry signal from a form
// post. An empty value clears it. Redirects back to the submitting page.
func (p *Public) Personalize(w http.ResponseWriter, r *http.Request) {
	field := personalization.Field(r.FormValue("field"))
	value := strings.TrimSpace(r.FormValue("value"))

	// Visitors may only pick their own industry; the tool and goal
	// signals are set by campaign landing flows and the admin tester.
	if field != personalization.FieldIndustry {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

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

	http.Redirect(w, r, safeRedirect(r), http.StatusSeeOther)
}

// ContactSubmit stores a contact-form submission and notifies the site
// owner by email. The submission is stored before the email attempt so a
// mailer outage never loses the message; a failed notification still
// surfaces as an error to the caller.
func (p *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	company := strings.TrimSpace(r.FormValue("company"))
	message := strings.TrimSpace(r.FormValue("message"))

	if msg := validateContactForm(name, email, message); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(company) > maxCompanyLen {
		http.Error(w, "Company is too long.", http.StatusBadRequest)
		return
	}

	sub := &models.ContactSubmission{Name: name, Email: email, Message: message}
	if company != "" {
		sub.Company = &company
	}
	if ref := r.Referer(); ref != "" {
		sub.SourceURL = &ref
	}

	created, err := p.contactStore.CreateSubmission(sub)
	if err != nil {
		slog.Error("store contact submission failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.metrics != nil {
		p.metrics.ContactSubmissionsTotal.Inc()
	}

	if err := p.mail.SendContactNotification(p.contactTo, created); err != nil {
		slog.Error("contact notification failed", "submission_id", created.ID, "error", err)
		http.Error(w, "Your message was received but the notification could not be sent.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, safeRedirect(r)+"?sent=1", http.StatusSeeOther)
}

// Subscribe records a newsletter signup and forwards it to the provider
// in the background. The local row is the source of truth — a provider
// outage only delays the sync, it never fails the signup.
func (p *Public) Subscribe(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if msg := validateEmail(email); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	var industry *string
	if v := personalization.ReadState(r).Industry; v != "" {
		industry = &v
	}

	sub, err := p.contactStore.Subscribe(email, industry)
	if err != nil {
		slog.Error("subscribe failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.metrics != nil {
		p.metrics.NewsletterSignupsTotal.Inc()
	}

	if p.news != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := p.news.Push(ctx, sub); err != nil {
				slog.Warn("newsletter provider sync failed", "subscriber_id", sub.ID, "error", err)
				return
			}
			if err := p.contactStore.MarkSynced(sub.ID, time.Now()); err != nil {
				slog.Warn("mark subscriber synced failed", "subscriber_id", sub.ID, "error", err)
			}
		}()
	}

	http.Redirect(w, r, safeRedirect(r)+"?subscribed=1", http.StatusSeeOther)
}

// sitemapURL is one <url> entry in the sitemap.
type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapSet is the <urlset> root element.
type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap serves sitemap.xml built from all published records.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	published, err := p.contentStore.ListPublished()
	if err != nil {
		slog.Error("sitemap listing failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	set := sitemapSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(published)),
	}
	for i := range published {
		c := &published[i]
		u := sitemapURL{
			Loc:     p.baseURL + pages.PublicPath(c),
			LastMod: c.UpdatedAt.Format("2006-01-02"),
		}
		set.URLs = append(set.URLs, u)
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		slog.Error("sitemap encode failed", "error", err)
	}
}

// Robots serves robots.txt.
func (p *Public) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("User-agent: *\nDisallow: /admin\nDisallow: /preview\n\nSitemap: " + p.baseURL + "/sitemap.xml\n"))
}

// Health reports liveness.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// writeHTML writes a rendered page body.
func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// safeRedirect returns the submitting page for post-action redirects,
// falling back to the site root. Only same-site relative targets and the
// Referer header's path component are honored.
func safeRedirect(r *http.Request) string {
	if v := r.FormValue("redirect"); strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") {
		return v
	}
	if ref := r.Referer(); ref != "" {
		if i := strings.Index(ref, "://"); i > 0 {
			if j := strings.Index(ref[i+3:], "/"); j > 0 {
				path := ref[i+3+j:]
				if strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
					return path
				}
			}
		}
	}
	return "/"
}

// publicLayout wraps an assembled page in the site chrome: head metadata,
// JSON-LD scripts, preview banner, header, and footer. Block markup is
// already escaped by the fragment templates.
var publicLayout = template.Must(template.New("public").Funcs(template.FuncMap{
	"ld": func(s string) template.HTML {
		return template.HTML("<script type=\"application/ld+json\">" + s + "</script>")
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}} · {{.SiteName}}</title>
<meta name="description" content="{{.Meta.Description}}">
<link rel="canonical" href="{{.Meta.Canonical}}">
<meta property="og:title" content="{{.Meta.OGTitle}}">
<meta property="og:description" content="{{.Meta.OGDescription}}">
<meta property="og:url" content="{{.Meta.Canonical}}">
<meta property="og:type" content="{{if .IsArticle}}article{{else}}website{{end}}">
{{if .Meta.OGImage}}<meta property="og:image" content="{{.Meta.OGImage}}">
{{end}}<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Meta.TwitterTitle}}">
<meta name="twitter:description" content="{{.Meta.TwitterDescription}}">
{{range .StructuredData}}{{ld .}}
{{end}}<script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-white text-gray-900">
{{if .Preview}}<div class="bg-yellow-400 text-yellow-900 text-center text-sm py-2 font-medium">Preview Mode — this content is not published</div>
{{end}}<header class="border-b">
  <div class="max-w-6xl mx-auto flex items-center justify-between px-4 py-4">
    <a href="/" class="text-lg font-semibold">{{.SiteName}}</a>
    {{if .Industry}}<form method="post" action="/personalize" class="text-sm text-gray-500">
      <input type="hidden" name="field" value="industry">
      <input type="hidden" name="value" value="">
      Viewing as {{.Industry}} <button type="submit" class="underline">clear</button>
    </form>{{end}}
  </div>
</header>
<main>
{{.Body}}
</main>
<footer class="border-t mt-16">
  <div class="max-w-6xl mx-auto px-4 py-8 text-sm text-gray-500">
    <p>{{.SiteName}}{{if .Tagline}} — {{.Tagline}}{{end}}</p>
  </div>
</footer>
</body>
</html>
`))

// publicPageData feeds the public layout template.
type publicPageData struct {
	SiteName       string
	Tagline        string
	Meta           pages.Meta
	Body           template.HTML
	StructuredData []string
	Preview        bool
	IsArticle      bool
	Industry       string
}

// renderPublic executes the public layout for an assembled page.
func (p *Public) renderPublic(page *pages.Page, state personalization.State) ([]byte, error) {
	settings, err := p.settingStore.All()
	if err != nil {
		slog.Warn("load site settings failed", "error", err)
		settings = models.SiteSettings{}
	}

	data := publicPageData{
		SiteName:       settings.Get("site_name", "TailorCMS"),
		Tagline:        settings.Get("site_tagline", ""),
		Meta:           page.Meta,
		Body:           page.Body,
		StructuredData: page.StructuredData,
		Preview:        page.Preview,
		IsArticle:      page.Content.Type.IsArticle(),
		Industry:       state.Industry,
	}
	if data.Meta.OGImage == "" {
		data.Meta.OGImage = settings.Get("default_og_image", "")
	}

	var buf strings.Builder
	if err := publicLayout.Execute(&buf, data); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
