package store

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"tailorcms/internal/models"
)

// testAuthorID returns a valid user ID for content creation.
func testAuthorID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	if err := db.QueryRow("SELECT id FROM users LIMIT 1").Scan(&id); err != nil {
		t.Fatalf("no users in database — run seed first: %v", err)
	}
	return id
}

func TestContentStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-create-content-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	content := &models.Content{
		Type:       models.ContentTypeBlog,
		Title:      "Test Post",
		Slug:       slug,
		Body:       "<p>Test body</p>",
		Status:     models.ContentStatusDraft,
		Industries: []string{"Healthcare", "Finance"},
		Tags:       []string{"attribution"},
		AuthorID:   authorID,
	}

	created, err := s.Create(content)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Title != "Test Post" {
		t.Errorf("title: got %q, want %q", created.Title, "Test Post")
	}
	if created.Status != models.ContentStatusDraft {
		t.Errorf("status: got %q, want %q", created.Status, models.ContentStatusDraft)
	}
	if created.PublishedAt != nil {
		t.Error("expected nil published_at for draft")
	}
	if len(created.Industries) != 2 || created.Industries[0] != "Healthcare" {
		t.Errorf("industries: got %v", created.Industries)
	}

	// FindByID.
	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected content, got nil")
	}
	if found.Slug != slug {
		t.Errorf("slug: got %q, want %q", found.Slug, slug)
	}
	if len(found.Tags) != 1 || found.Tags[0] != "attribution" {
		t.Errorf("tags: got %v", found.Tags)
	}
}

func TestContentStoreBlocksRoundTrip(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-blocks-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	blocks := json.RawMessage(`[{"id":"b1","type":"hero","order":0,"data":{"title":"Hi"}}]`)
	created, err := s.Create(&models.Content{
		Type: models.ContentTypeStaticPage, Title: "Blocks", Slug: slug,
		Status: models.ContentStatusDraft, Blocks: blocks, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.HasBlocks() {
		t.Fatal("expected blocks to survive the round trip")
	}

	var decoded []map[string]any
	if err := json.Unmarshal(created.Blocks, &decoded); err != nil {
		t.Fatalf("unmarshal blocks: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["type"] != "hero" {
		t.Errorf("blocks: got %s", created.Blocks)
	}
}

func TestContentStoreCreatePublished(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-pub-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	created, err := s.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "Published Post", Slug: slug,
		Body: "<p>Published</p>", Status: models.ContentStatusPublished, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.PublishedAt == nil {
		t.Error("expected non-nil published_at for published content")
	}
}

func TestContentStoreFindPublishedBySlug(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-slug-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	// Create draft — should NOT be findable publicly.
	s.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "Draft", Slug: slug,
		Body: "draft", Status: models.ContentStatusDraft, AuthorID: authorID,
	})

	found, err := s.FindPublishedBySlug(slug, "")
	if err != nil {
		t.Fatalf("FindPublishedBySlug (draft): %v", err)
	}
	if found != nil {
		t.Error("expected nil for draft content via FindPublishedBySlug")
	}

	// Update to published.
	db.Exec("UPDATE content SET status = 'published', published_at = NOW() WHERE slug = $1", slug)

	found, err = s.FindPublishedBySlug(slug, "")
	if err != nil {
		t.Fatalf("FindPublishedBySlug (published): %v", err)
	}
	if found == nil {
		t.Fatal("expected content after publishing")
	}
	if found.Slug != slug {
		t.Errorf("slug: got %q, want %q", found.Slug, slug)
	}

	// Type filter excludes other sections.
	found, err = s.FindPublishedBySlug(slug, models.ContentTypeCaseStudy)
	if err != nil {
		t.Fatalf("FindPublishedBySlug (wrong type): %v", err)
	}
	if found != nil {
		t.Error("expected nil when the type filter does not match")
	}

	// Matching filter finds it.
	found, _ = s.FindPublishedBySlug(slug, models.ContentTypeBlog)
	if found == nil {
		t.Error("expected content with matching type filter")
	}

	// Not found.
	found, _ = s.FindPublishedBySlug("nonexistent-slug-xyz", "")
	if found != nil {
		t.Error("expected nil for nonexistent slug")
	}
}

func TestContentStoreListByType(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug1 := "test-list-blog-" + uuid.NewString()[:8]
	slug2 := "test-list-guide-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug1, slug2) })

	s.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "List Blog", Slug: slug1,
		Body: "body", Status: models.ContentStatusDraft, AuthorID: authorID,
	})
	s.Create(&models.Content{
		Type: models.ContentTypeImplementationGuide, Title: "List Guide", Slug: slug2,
		Body: "body", Status: models.ContentStatusDraft, AuthorID: authorID,
	})

	posts, err := s.ListByType(models.ContentTypeBlog)
	if err != nil {
		t.Fatalf("ListByType(blog): %v", err)
	}
	guides, err := s.ListByType(models.ContentTypeImplementationGuide)
	if err != nil {
		t.Fatalf("ListByType(implementation_guide): %v", err)
	}

	if len(posts) < 1 {
		t.Error("expected at least 1 blog post")
	}
	if len(guides) < 1 {
		t.Error("expected at least 1 guide")
	}
}

func TestContentStoreUpdate(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-update-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	created, _ := s.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "Original", Slug: slug,
		Body: "original", Status: models.ContentStatusDraft, AuthorID: authorID,
	})

	created.Title = "Updated Title"
	created.Body = "updated body"
	created.Status = models.ContentStatusPublished
	created.Goals = []string{"roi"}

	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, _ := s.FindByID(created.ID)
	if found.Title != "Updated Title" {
		t.Errorf("title: got %q, want %q", found.Title, "Updated Title")
	}
	if found.Status != models.ContentStatusPublished {
		t.Errorf("status: got %q, want %q", found.Status, models.ContentStatusPublished)
	}
	if found.PublishedAt == nil {
		t.Error("expected published_at set after publishing")
	}
	if len(found.Goals) != 1 || found.Goals[0] != "roi" {
		t.Errorf("goals: got %v", found.Goals)
	}
}

func TestContentStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-delete-" + uuid.NewString()[:8]

	created, _ := s.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "Delete", Slug: slug,
		Body: "body", Status: models.ContentStatusDraft, AuthorID: authorID,
	})

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, _ := s.FindByID(created.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}
}

func TestContentStoreCountByType(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)

	count, err := s.CountByType(models.ContentTypeBlog)
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if count < 0 {
		t.Error("expected non-negative count")
	}
}

func TestContentStoreListPublishedByType(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-publist-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	s.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "Published", Slug: slug,
		Body: "body", Status: models.ContentStatusPublished, AuthorID: authorID,
	})

	published, err := s.ListPublishedByType(models.ContentTypeBlog)
	if err != nil {
		t.Fatalf("ListPublishedByType: %v", err)
	}

	found := false
	for _, p := range published {
		if p.Slug == slug {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected published post in list")
	}
}
