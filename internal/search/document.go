// Package search provides full-text search over published posts using Bleve.
package search

import (
	"github.com/flashblog/flashblog-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index.
// Only published posts are indexed; drafts never enter the index.
//
// Design note: author display name and tag slugs are denormalized into the
// document so a search can filter and display without touching SQLite.
type SearchDocument struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Slug       string   `json:"slug"`
	AuthorID   string   `json:"author_id"`
	AuthorName string   `json:"author_name,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	// Timestamps for sorting. Unix millis.
	PublishedAt int64 `json:"published_at"`
	CreatedAt   int64 `json:"created_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"content":    d.Content,
		"slug":       d.Slug,
		"author_id":  d.AuthorID,
		"created_at": d.CreatedAt,
	}

	if d.AuthorName != "" {
		m["author_name"] = d.AuthorName
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.PublishedAt > 0 {
		m["published_at"] = d.PublishedAt
	}

	return m
}

// BlogToSearchDocument converts a domain Blog to a SearchDocument.
// The author name is provided by the caller, as the search package
// shouldn't depend on store.
func BlogToSearchDocument(blog *domain.Blog, authorName string) *SearchDocument {
	doc := &SearchDocument{
		ID:         blog.ID,
		Title:      blog.Title,
		Content:    blog.Content,
		Slug:       blog.Slug,
		AuthorID:   blog.AuthorID,
		AuthorName: authorName,
		CreatedAt:  blog.CreatedAt.UnixMilli(),
	}

	if blog.PublishedAt != nil {
		doc.PublishedAt = blog.PublishedAt.UnixMilli()
	}

	for _, tag := range blog.Tags {
		doc.Tags = append(doc.Tags, tag.Slug)
	}

	return doc
}
