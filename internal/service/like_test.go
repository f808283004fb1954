package service

import (
	"context"
	"testing"

	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_BlogLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.registerUser(t, "author@example.com", "Author")
	fan := env.registerUser(t, "fan@example.com", "Fan")
	post := env.createPost(t, author, "Likeable Post")

	require.NoError(t, env.likes.LikeBlog(ctx, fan, post.ID))

	liked, err := env.likes.HasLiked(ctx, fan.ID, domain.LikeTargetBlog, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := env.blogs.Get(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	// Liking twice is a conflict, not a second like.
	err = env.likes.LikeBlog(ctx, fan, post.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	require.NoError(t, env.likes.UnlikeBlog(ctx, fan, post.ID))

	got, err = env.blogs.Get(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikeCount)

	// Unliking something never liked is NotFound.
	err = env.likes.UnlikeBlog(ctx, fan, post.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestLikeService_DraftNotLikeable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.registerUser(t, "author@example.com", "Author")
	fan := env.registerUser(t, "fan@example.com", "Fan")

	draft, err := env.blogs.Create(ctx, author, CreateBlogRequest{Title: "Draft", Content: "x"})
	require.NoError(t, err)

	err = env.likes.LikeBlog(ctx, fan, draft.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestLikeService_CommentLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.registerUser(t, "author@example.com", "Author")
	fan := env.registerUser(t, "fan@example.com", "Fan")
	post := env.createPost(t, author, "Post")

	comment, err := env.comments.Create(ctx, author, post.ID, CreateCommentRequest{Content: "likeable"})
	require.NoError(t, err)

	require.NoError(t, env.likes.LikeComment(ctx, fan, comment.ID))

	got, err := env.comments.Get(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	require.NoError(t, env.likes.UnlikeComment(ctx, fan, comment.ID))

	got, err = env.comments.Get(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikeCount)

	err = env.likes.LikeComment(ctx, fan, "comment-missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
