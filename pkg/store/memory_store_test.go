package store

import (
	"testing"
	"time"

	"mediashare/pkg/domain"
)

func TestMemoryStoreInsertMediaJoinsCreatorEmail(t *testing.T) {
	s := NewMemoryStore()
	creator := s.AddUser("creator@example.com", domain.RoleCreator)

	rec, err := s.InsertMedia(domain.MediaRecord{
		UserID: creator.UserID,
		Title:  "sunset",
	})
	if err != nil {
		t.Fatalf("insert media: %v", err)
	}
	if rec.MediaID == 0 {
		t.Fatal("expected assigned media id")
	}
	if rec.UploadedAt.IsZero() {
		t.Fatal("expected store-assigned upload timestamp")
	}
	if rec.CreatorEmail != "creator@example.com" {
		t.Fatalf("creator email = %q, want creator@example.com", rec.CreatorEmail)
	}

	listed, err := s.ListMedia()
	if err != nil {
		t.Fatalf("list media: %v", err)
	}
	if len(listed) != 1 || listed[0].MediaID != rec.MediaID {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestMemoryStoreGetMediaMissing(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.GetMedia(42)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown media id")
	}
}

func TestMemoryStoreInsertCommentAgainstAnyMediaID(t *testing.T) {
	s := NewMemoryStore()
	before := time.Now().UTC().Add(-time.Second)

	// No media row with ID 999 exists; the insert still succeeds.
	c, err := s.InsertComment(domain.Comment{MediaID: 999, UserID: 1, CommentText: "nice"})
	if err != nil {
		t.Fatalf("insert comment: %v", err)
	}
	if c.CommentID == 0 {
		t.Fatal("expected assigned comment id")
	}
	if c.CreatedAt.Before(before) {
		t.Fatalf("created at %v predates request time %v", c.CreatedAt, before)
	}
	if got := s.Comments(); len(got) != 1 {
		t.Fatalf("expected one stored comment, got %d", len(got))
	}
}
