package domain

import "time"

// Blog represents a single post on the platform.
// Slug is derived from the title and is unique across all posts,
// so it can be used in public URLs.
type Blog struct {
	Timestamps
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Slug        string     `json:"slug"`
	AuthorID    string     `json:"author_id"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// Denormalized counters maintained by the store.
	ViewCount    int `json:"view_count"`
	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`

	// Tags attached to this post, populated on read.
	Tags []Tag `json:"tags,omitempty"`
}

// Publish marks the post as published. The first publish records the
// timestamp; republishing after an unpublish keeps the original date.
func (b *Blog) Publish() {
	b.Published = true
	if b.PublishedAt == nil {
		now := time.Now()
		b.PublishedAt = &now
	}
	b.Touch()
}

// Unpublish takes the post back to draft state.
// PublishedAt is kept so republishing preserves the original date.
func (b *Blog) Unpublish() {
	b.Published = false
	b.Touch()
}

// IsVisibleTo reports whether the user may read this post.
// Drafts are visible only to their author and admins.
func (b *Blog) IsVisibleTo(user *User) bool {
	if b.Published {
		return true
	}
	if user == nil {
		return false
	}
	return user.ID == b.AuthorID || user.IsAdmin()
}
