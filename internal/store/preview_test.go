package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"tailorcms/internal/models"
)

func previewTestContent(t *testing.T) (*models.Content, *ContentStore, *PreviewStore) {
	t.Helper()
	db := testDB(t)
	cs := NewContentStore(db)
	ps := NewPreviewStore(db)

	slug := "test-preview-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	content, err := cs.Create(&models.Content{
		Type: models.ContentTypeBlog, Title: "Preview Draft", Slug: slug,
		Body: "draft body", Status: models.ContentStatusDraft, AuthorID: testAuthorID(t, db),
	})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	return content, cs, ps
}

func TestPreviewStoreCreateAndFind(t *testing.T) {
	content, _, ps := previewTestContent(t)

	tok, err := ps.Create(content.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(tok.Token) != 64 {
		t.Errorf("token length: got %d, want 64 hex chars", len(tok.Token))
	}
	if tok.Views != 0 {
		t.Errorf("views: got %d, want 0", tok.Views)
	}

	until := time.Until(tok.ExpiresAt)
	if until < 23*time.Hour || until > 25*time.Hour {
		t.Errorf("expiry not ~24h out: %v", until)
	}

	found, err := ps.FindByToken(tok.Token)
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if found == nil || found.ContentID != content.ID {
		t.Fatalf("expected token for content %s, got %+v", content.ID, found)
	}

	found, _ = ps.FindByToken("no-such-token")
	if found != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestPreviewStoreRegenerateInvalidatesOld(t *testing.T) {
	content, _, ps := previewTestContent(t)

	first, _ := ps.Create(content.ID)
	second, err := ps.Create(content.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if first.Token == second.Token {
		t.Error("expected a fresh token value")
	}

	old, _ := ps.FindByToken(first.Token)
	if old != nil {
		t.Error("old token should be gone after regeneration")
	}
	current, _ := ps.FindByContentID(content.ID)
	if current == nil || current.Token != second.Token {
		t.Error("expected the new token to be the active one")
	}
}

func TestPreviewStoreIncrementViews(t *testing.T) {
	content, _, ps := previewTestContent(t)

	tok, _ := ps.Create(content.ID)
	if err := ps.IncrementViews(tok.ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if err := ps.IncrementViews(tok.ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}

	found, _ := ps.FindByToken(tok.Token)
	if found.Views != 2 {
		t.Errorf("views: got %d, want 2", found.Views)
	}
}

func TestPreviewStoreRevoke(t *testing.T) {
	content, _, ps := previewTestContent(t)

	tok, _ := ps.Create(content.ID)
	if err := ps.Revoke(content.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	found, _ := ps.FindByToken(tok.Token)
	if found != nil {
		t.Error("expected nil after revoke")
	}
}

func TestPreviewStoreCascadeOnContentDelete(t *testing.T) {
	content, cs, ps := previewTestContent(t)

	tok, _ := ps.Create(content.ID)
	if err := cs.Delete(content.ID); err != nil {
		t.Fatalf("delete content: %v", err)
	}

	found, _ := ps.FindByToken(tok.Token)
	if found != nil {
		t.Error("expected token to cascade away with its content")
	}
}
