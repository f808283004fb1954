package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flashblog/flashblog-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestUser creates and stores a user so foreign keys hold.
func makeTestUser(t *testing.T, s *Store, id string) *domain.User {
	t.Helper()
	now := time.Now()
	u := &domain.User{
		Email:        id + "@example.com",
		PasswordHash: "$argon2id$fake",
		DisplayName:  "User " + id,
		Role:         domain.RoleUser,
		Active:       true,
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// makeTestBlog creates and stores a published post.
func makeTestBlog(t *testing.T, s *Store, id, authorID, slug string) *domain.Blog {
	t.Helper()
	now := time.Now()
	b := &domain.Blog{
		Title:       "Post " + id,
		Content:     "Some content for " + id,
		Slug:        slug,
		AuthorID:    authorID,
		Published:   true,
		PublishedAt: &now,
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.CreateBlog(context.Background(), b, nil); err != nil {
		t.Fatalf("CreateBlog: %v", err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"users", "sessions", "blogs", "tags", "blog_tags", "comments", "likes",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	if err := s2.Close(); err != nil {
		t.Fatalf("close re-opened store: %v", err)
	}
}
