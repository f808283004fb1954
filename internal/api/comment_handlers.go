package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/blogs/{id}/comments",
		Summary:     "Create comment",
		Description: "Adds a top-level comment on a published post",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/blogs/{id}/comments",
		Summary:     "List comments",
		Description: "Returns a post's top-level comments with replies nested, paginated",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "getComment",
		Method:      http.MethodGet,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Get comment",
		Description: "Returns a comment by ID",
		Tags:        []string{"Comments"},
	}, s.handleGetComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Update comment",
		Description: "Edits a comment. Only the author or an admin may edit.",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Deletes a comment together with all its replies",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReply",
		Method:      http.MethodPost,
		Path:        "/api/v1/comments/{id}/replies",
		Summary:     "Reply to comment",
		Description: "Adds a reply under a top-level comment. Replies cannot be nested further.",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReplies",
		Method:      http.MethodGet,
		Path:        "/api/v1/comments/{id}/replies",
		Summary:     "List replies",
		Description: "Returns one page of a comment's direct replies, oldest first",
		Tags:        []string{"Comments"},
	}, s.handleListReplies)
}

// === DTOs ===

// CommentResponse contains comment data in API responses.
type CommentResponse struct {
	ID        string            `json:"id" doc:"Comment ID"`
	BlogID    string            `json:"blog_id" doc:"Post ID"`
	AuthorID  string            `json:"author_id" doc:"Author user ID"`
	ParentID  *string           `json:"parent_id,omitempty" doc:"Parent comment ID (for replies)"`
	Content   string            `json:"content" doc:"Comment body"`
	Edited    bool              `json:"edited" doc:"Whether the comment has been edited"`
	LikeCount int               `json:"like_count" doc:"Like count"`
	Replies   []CommentResponse `json:"replies,omitempty" doc:"Nested replies"`
	CreatedAt time.Time         `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time         `json:"updated_at" doc:"Last update timestamp"`
}

// CommentOutput wraps a single comment response for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// CommentRequest is the request body for creating or editing a comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000" doc:"Comment body"`
}

// CreateCommentInput wraps a new comment on a post for Huma.
type CreateCommentInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body CommentRequest
}

// ListCommentsInput contains parameters for listing a post's comments.
type ListCommentsInput struct {
	ID      string `path:"id" doc:"Post ID"`
	Page    int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PerPage int    `query:"per_page" validate:"omitempty,gte=1,lte=100" doc:"Items per page (default 20)"`
}

// CommentListResponse contains one page of top-level comments.
type CommentListResponse struct {
	Comments   []CommentResponse `json:"comments" doc:"Top-level comments with replies nested"`
	Total      int               `json:"total" doc:"Total top-level comments"`
	Page       int               `json:"page" doc:"Current page"`
	PerPage    int               `json:"per_page" doc:"Items per page"`
	TotalPages int               `json:"total_pages" doc:"Total pages"`
	HasNext    bool              `json:"has_next" doc:"Whether a next page exists"`
	HasPrev    bool              `json:"has_prev" doc:"Whether a previous page exists"`
}

// CommentListOutput wraps the comment listing for Huma.
type CommentListOutput struct {
	Body CommentListResponse
}

// CommentIDInput contains a comment ID path parameter.
type CommentIDInput struct {
	ID string `path:"id" doc:"Comment ID"`
}

// UpdateCommentInput wraps a comment edit for Huma.
type UpdateCommentInput struct {
	ID   string `path:"id" doc:"Comment ID"`
	Body CommentRequest
}

// CreateReplyInput wraps a new reply for Huma.
type CreateReplyInput struct {
	ID   string `path:"id" doc:"Parent comment ID"`
	Body CommentRequest
}

// ListRepliesInput contains parameters for listing a comment's replies.
type ListRepliesInput struct {
	ID      string `path:"id" doc:"Comment ID"`
	Page    int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PerPage int    `query:"per_page" validate:"omitempty,gte=1,lte=100" doc:"Items per page (default 20)"`
}

// RepliesResponse contains one page of a comment's direct replies.
type RepliesResponse struct {
	Replies    []CommentResponse `json:"replies" doc:"Direct replies, oldest first"`
	Total      int               `json:"total" doc:"Total replies"`
	Page       int               `json:"page" doc:"Current page"`
	PerPage    int               `json:"per_page" doc:"Items per page"`
	TotalPages int               `json:"total_pages" doc:"Total pages"`
	HasNext    bool              `json:"has_next" doc:"Whether a next page exists"`
	HasPrev    bool              `json:"has_prev" doc:"Whether a previous page exists"`
}

// RepliesOutput wraps the replies listing for Huma.
type RepliesOutput struct {
	Body RepliesResponse
}

// DeleteCommentResponse reports how many comments a delete removed.
type DeleteCommentResponse struct {
	Deleted int `json:"deleted" doc:"Number of comments removed, including replies"`
}

// DeleteCommentOutput wraps the delete response for Huma.
type DeleteCommentOutput struct {
	Body DeleteCommentResponse
}

// === Handlers ===

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Create(ctx, user, input.ID, service.CreateCommentRequest{
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: toCommentResponse(comment)}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*CommentListOutput, error) {
	page, err := s.services.Comment.ListByBlog(ctx, input.ID, input.Page, input.PerPage)
	if err != nil {
		return nil, err
	}

	comments := make([]CommentResponse, len(page.Items))
	for i, c := range page.Items {
		comments[i] = toCommentResponse(c)
	}

	return &CommentListOutput{Body: CommentListResponse{
		Comments:   comments,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}}, nil
}

func (s *Server) handleGetComment(ctx context.Context, input *CommentIDInput) (*CommentOutput, error) {
	comment, err := s.services.Comment.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: toCommentResponse(comment)}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Update(ctx, user, input.ID, service.UpdateCommentRequest{
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: toCommentResponse(comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*DeleteCommentOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := s.services.Comment.Delete(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}

	return &DeleteCommentOutput{Body: DeleteCommentResponse{Deleted: deleted}}, nil
}

func (s *Server) handleCreateReply(ctx context.Context, input *CreateReplyInput) (*CommentOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := s.services.Comment.Reply(ctx, user, input.ID, service.CreateCommentRequest{
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: toCommentResponse(reply)}, nil
}

func (s *Server) handleListReplies(ctx context.Context, input *ListRepliesInput) (*RepliesOutput, error) {
	page, err := s.services.Comment.ListReplies(ctx, input.ID, input.Page, input.PerPage)
	if err != nil {
		return nil, err
	}

	resp := make([]CommentResponse, len(page.Items))
	for i, r := range page.Items {
		resp[i] = toCommentResponse(r)
	}

	return &RepliesOutput{Body: RepliesResponse{
		Replies:    resp,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}}, nil
}

// === Helpers ===

func toCommentResponse(c *domain.Comment) CommentResponse {
	var replies []CommentResponse
	if len(c.Replies) > 0 {
		replies = make([]CommentResponse, len(c.Replies))
		for i, r := range c.Replies {
			replies[i] = toCommentResponse(r)
		}
	}

	return CommentResponse{
		ID:        c.ID,
		BlogID:    c.BlogID,
		AuthorID:  c.AuthorID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		Edited:    c.Edited,
		LikeCount: c.LikeCount,
		Replies:   replies,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
