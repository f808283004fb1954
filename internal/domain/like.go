package domain

import "time"

// LikeTarget identifies what kind of entity a like is attached to.
type LikeTarget string

const (
	// LikeTargetBlog marks a like on a post.
	LikeTargetBlog LikeTarget = "blog"
	// LikeTargetComment marks a like on a comment.
	LikeTargetComment LikeTarget = "comment"
)

// Like represents a user liking a post or a comment.
// A user can like a given target at most once.
type Like struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TargetType LikeTarget `json:"target_type"`
	TargetID   string     `json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewLike builds a like stamped with the current time.
func NewLike(id, userID string, target LikeTarget, targetID string) *Like {
	return &Like{
		ID:         id,
		UserID:     userID,
		TargetType: target,
		TargetID:   targetID,
		CreatedAt:  time.Now(),
	}
}
