package domain

import "time"

// Tag represents a global tag for categorizing posts.
// Tags are shared across all users and managed by admins.
// Name is the display form; Slug is the canonical lowercase-hyphenated form.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"` // Hex color for UI display
	UsageCount  int       `json:"usage_count"`     // Denormalized count of posts with this tag
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// BlogTag represents the many-to-many relationship between posts and tags.
type BlogTag struct {
	BlogID    string    `json:"blog_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxTagsPerBlog caps how many tags a single post can carry.
const MaxTagsPerBlog = 10
