package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerLikeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "likeBlog",
		Method:      http.MethodPut,
		Path:        "/api/v1/blogs/{id}/like",
		Summary:     "Like post",
		Description: "Likes a published post. Liking twice is a conflict.",
		Tags:        []string{"Likes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLikeBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlikeBlog",
		Method:      http.MethodDelete,
		Path:        "/api/v1/blogs/{id}/like",
		Summary:     "Unlike post",
		Description: "Removes the caller's like from a post",
		Tags:        []string{"Likes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnlikeBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "likeComment",
		Method:      http.MethodPut,
		Path:        "/api/v1/comments/{id}/like",
		Summary:     "Like comment",
		Description: "Likes a comment. Liking twice is a conflict.",
		Tags:        []string{"Likes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLikeComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlikeComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}/like",
		Summary:     "Unlike comment",
		Description: "Removes the caller's like from a comment",
		Tags:        []string{"Likes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnlikeComment)
}

// === Handlers ===

func (s *Server) handleLikeBlog(ctx context.Context, input *BlogIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Like.LikeBlog(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Post liked"}}, nil
}

func (s *Server) handleUnlikeBlog(ctx context.Context, input *BlogIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Like.UnlikeBlog(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Like removed"}}, nil
}

func (s *Server) handleLikeComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Like.LikeComment(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Comment liked"}}, nil
}

func (s *Server) handleUnlikeComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Like.UnlikeComment(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Like removed"}}, nil
}
