package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns tags, filtered and sorted, paginated",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPopularTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/popular",
		Summary:     "Get popular tags",
		Description: "Returns the most-used tags",
		Tags:        []string{"Tags"},
	}, s.handleGetPopularTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a new tag. Admin only.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Updates a tag. Admin only.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes an unused tag. Admin only. Tags still attached to posts cannot be deleted.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID          string    `json:"id" doc:"Tag ID"`
	Name        string    `json:"name" doc:"Tag name"`
	Slug        string    `json:"slug" doc:"URL-safe slug"`
	Description string    `json:"description,omitempty" doc:"Tag description"`
	Color       string    `json:"color,omitempty" doc:"Display color"`
	UsageCount  int       `json:"usage_count" doc:"Number of posts carrying this tag"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// TagOutput wraps a single tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Search  string `query:"search" validate:"omitempty,max=50" doc:"Substring match on tag name"`
	Sort    string `query:"sort" enum:"name,usage_count,created_at" doc:"Sort key (default name)"`
	Order   string `query:"order" enum:"asc,desc" doc:"Sort direction (default asc)"`
	Page    int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PerPage int    `query:"per_page" validate:"omitempty,gte=1,lte=100" doc:"Items per page (default 20)"`
}

// TagListResponse contains one page of tags.
type TagListResponse struct {
	Tags       []TagResponse `json:"tags" doc:"Tags on this page"`
	Total      int           `json:"total" doc:"Total matching tags"`
	Page       int           `json:"page" doc:"Current page"`
	PerPage    int           `json:"per_page" doc:"Items per page"`
	TotalPages int           `json:"total_pages" doc:"Total pages"`
	HasNext    bool          `json:"has_next" doc:"Whether a next page exists"`
	HasPrev    bool          `json:"has_prev" doc:"Whether a previous page exists"`
}

// TagListOutput wraps the tag listing for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// PopularTagsInput contains parameters for the popular tags listing.
type PopularTagsInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=50" doc:"Max tags to return (default 10)"`
}

// PopularTagsResponse contains the most-used tags.
type PopularTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"Most-used tags, descending by usage"`
}

// PopularTagsOutput wraps the popular tags response for Huma.
type PopularTagsOutput struct {
	Body PopularTagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50" doc:"Tag name"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500" doc:"Tag description"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor" doc:"Display color"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// UpdateTagRequest is the request body for updating a tag.
type UpdateTagRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=50" doc:"Tag name"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500" doc:"Tag description"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor" doc:"Display color"`
}

// UpdateTagInput wraps the update tag request for Huma.
type UpdateTagInput struct {
	ID   string `path:"id" doc:"Tag ID"`
	Body UpdateTagRequest
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*TagListOutput, error) {
	page, err := s.services.Tag.List(ctx, service.ListTagsRequest{
		Search:   input.Search,
		SortBy:   input.Sort,
		SortDesc: input.Order == "desc",
		Page:     input.Page,
		PerPage:  input.PerPage,
	})
	if err != nil {
		return nil, err
	}

	tags := make([]TagResponse, len(page.Items))
	for i, t := range page.Items {
		tags[i] = toTagResponse(t)
	}

	return &TagListOutput{Body: TagListResponse{
		Tags:       tags,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}}, nil
}

func (s *Server) handleGetPopularTags(ctx context.Context, input *PopularTagsInput) (*PopularTagsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	tags, err := s.services.Tag.ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = toTagResponse(t)
	}

	return &PopularTagsOutput{Body: PopularTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.Create(ctx, service.CreateTagRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Color:       input.Body.Color,
	})
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.Update(ctx, input.ID, service.UpdateTagRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Color:       input.Body.Color,
	})
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Tag.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

// === Helpers ===

func toTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Color:       t.Color,
		UsageCount:  t.UsageCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
