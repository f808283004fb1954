package domain

// Comment represents a comment on a post. A comment with a ParentID is a
// reply; replies nest one level deep in the API but deleting a comment
// removes its whole subtree.
type Comment struct {
	Timestamps
	BlogID    string  `json:"blog_id"`
	AuthorID  string  `json:"author_id"`
	ParentID  *string `json:"parent_id,omitempty"`
	Content   string  `json:"content"`
	Edited    bool    `json:"edited"`
	LikeCount int     `json:"like_count"`

	// Replies to this comment, populated on read for top-level comments.
	Replies []*Comment `json:"replies,omitempty"`
}

// IsReply reports whether this comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// MarkEdited flags the comment as edited and bumps UpdatedAt.
func (c *Comment) MarkEdited() {
	c.Edited = true
	c.Touch()
}
