package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/service"
	"github.com/flashblog/flashblog-server/internal/store"
)

func (s *Server) registerBlogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBlog",
		Method:      http.MethodPost,
		Path:        "/api/v1/blogs",
		Summary:     "Create post",
		Description: "Creates a new post, as a draft unless publish is set",
		Tags:        []string{"Blogs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBlogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/blogs",
		Summary:     "List posts",
		Description: "Returns published posts, filtered and paginated. Authenticated authors also see their own drafts when filtering by their author ID.",
		Tags:        []string{"Blogs"},
	}, s.handleListBlogs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBlog",
		Method:      http.MethodGet,
		Path:        "/api/v1/blogs/{id}",
		Summary:     "Get post",
		Description: "Returns a post by ID. Drafts are visible only to their author and admins.",
		Tags:        []string{"Blogs"},
	}, s.handleGetBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBlogBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/blogs/slug/{slug}",
		Summary:     "Get post by slug",
		Description: "Returns a post by its URL slug",
		Tags:        []string{"Blogs"},
	}, s.handleGetBlogBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBlog",
		Method:      http.MethodPatch,
		Path:        "/api/v1/blogs/{id}",
		Summary:     "Update post",
		Description: "Updates a post. Only the author or an admin may edit.",
		Tags:        []string{"Blogs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBlog",
		Method:      http.MethodDelete,
		Path:        "/api/v1/blogs/{id}",
		Summary:     "Delete post",
		Description: "Deletes a post together with its comments and likes",
		Tags:        []string{"Blogs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishBlog",
		Method:      http.MethodPost,
		Path:        "/api/v1/blogs/{id}/publish",
		Summary:     "Publish post",
		Description: "Makes a draft publicly visible",
		Tags:        []string{"Blogs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishBlog)

	huma.Register(s.api, huma.Operation{
		OperationID: "unpublishBlog",
		Method:      http.MethodPost,
		Path:        "/api/v1/blogs/{id}/unpublish",
		Summary:     "Unpublish post",
		Description: "Takes a published post back to draft state",
		Tags:        []string{"Blogs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnpublishBlog)
}

// === DTOs ===

// BlogResponse contains post data in API responses.
type BlogResponse struct {
	ID           string        `json:"id" doc:"Post ID"`
	Title        string        `json:"title" doc:"Post title"`
	Content      string        `json:"content" doc:"Post body"`
	Slug         string        `json:"slug" doc:"URL-safe slug"`
	AuthorID     string        `json:"author_id" doc:"Author user ID"`
	Published    bool          `json:"published" doc:"Whether the post is publicly visible"`
	PublishedAt  *time.Time    `json:"published_at,omitempty" doc:"First publish timestamp"`
	ViewCount    int           `json:"view_count" doc:"Published read count"`
	LikeCount    int           `json:"like_count" doc:"Like count"`
	CommentCount int           `json:"comment_count" doc:"Comment count"`
	Tags         []TagResponse `json:"tags" doc:"Attached tags"`
	CreatedAt    time.Time     `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt    time.Time     `json:"updated_at" doc:"Last update timestamp"`
}

// BlogOutput wraps a single post response for Huma.
type BlogOutput struct {
	Body BlogResponse
}

// CreateBlogRequest is the request body for creating a post.
type CreateBlogRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200" doc:"Post title"`
	Content string   `json:"content" validate:"required" doc:"Post body"`
	Tags    []string `json:"tags,omitempty" doc:"Tag names to attach (must already exist)"`
	Publish bool     `json:"publish,omitempty" doc:"Publish immediately instead of saving a draft"`
}

// CreateBlogInput wraps the create request for Huma.
type CreateBlogInput struct {
	Body CreateBlogRequest
}

// ListBlogsInput contains listing filters.
type ListBlogsInput struct {
	AuthorID  string `query:"author_id" doc:"Filter by author ID"`
	Tag       string `query:"tag" doc:"Filter by tag slug"`
	Search    string `query:"search" validate:"omitempty,max=200" doc:"Substring match on title and content"`
	Published string `query:"published" enum:"true,false" doc:"Filter by publish state. false only matches your own drafts."`
	Page      int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PerPage   int    `query:"per_page" validate:"omitempty,gte=1,lte=100" doc:"Items per page (default 20)"`
}

// BlogListResponse contains one page of posts.
type BlogListResponse struct {
	Blogs      []BlogResponse `json:"blogs" doc:"Posts on this page"`
	Total      int            `json:"total" doc:"Total matching posts"`
	Page       int            `json:"page" doc:"Current page"`
	PerPage    int            `json:"per_page" doc:"Items per page"`
	TotalPages int            `json:"total_pages" doc:"Total pages"`
	HasNext    bool           `json:"has_next" doc:"Whether a next page exists"`
	HasPrev    bool           `json:"has_prev" doc:"Whether a previous page exists"`
}

// BlogListOutput wraps the post listing for Huma.
type BlogListOutput struct {
	Body BlogListResponse
}

// GetBlogInput contains parameters for fetching a post by ID.
type GetBlogInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// GetBlogBySlugInput contains parameters for fetching a post by slug.
type GetBlogBySlugInput struct {
	Slug string `path:"slug" doc:"Post slug"`
}

// UpdateBlogRequest is the request body for updating a post.
// Omitted fields are left unchanged; tags replace the whole set.
type UpdateBlogRequest struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200" doc:"Post title"`
	Content *string   `json:"content,omitempty" doc:"Post body"`
	Tags    *[]string `json:"tags,omitempty" doc:"Replacement tag names"`
}

// UpdateBlogInput wraps the update request for Huma.
type UpdateBlogInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body UpdateBlogRequest
}

// BlogIDInput contains a post ID path parameter.
type BlogIDInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// === Handlers ===

func (s *Server) handleCreateBlog(ctx context.Context, input *CreateBlogInput) (*BlogOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	blog, err := s.services.Blog.Create(ctx, user, service.CreateBlogRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Tags:    input.Body.Tags,
		Publish: input.Body.Publish,
	})
	if err != nil {
		return nil, err
	}

	return &BlogOutput{Body: toBlogResponse(blog)}, nil
}

func (s *Server) handleListBlogs(ctx context.Context, input *ListBlogsInput) (*BlogListOutput, error) {
	viewer := s.optionalUser(ctx)

	// The query param is a string enum; an empty value means no filter.
	var published *bool
	if input.Published != "" {
		val := input.Published == "true"
		published = &val
	}

	page, err := s.services.Blog.List(ctx, viewer, service.ListBlogsRequest{
		AuthorID:  input.AuthorID,
		TagSlug:   input.Tag,
		Search:    input.Search,
		Published: published,
		Page:      input.Page,
		PerPage:   input.PerPage,
	})
	if err != nil {
		return nil, err
	}

	return &BlogListOutput{Body: toBlogListResponse(page)}, nil
}

func (s *Server) handleGetBlog(ctx context.Context, input *GetBlogInput) (*BlogOutput, error) {
	viewer := s.optionalUser(ctx)

	blog, err := s.services.Blog.Get(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &BlogOutput{Body: toBlogResponse(blog)}, nil
}

func (s *Server) handleGetBlogBySlug(ctx context.Context, input *GetBlogBySlugInput) (*BlogOutput, error) {
	viewer := s.optionalUser(ctx)

	blog, err := s.services.Blog.GetBySlug(ctx, viewer, input.Slug)
	if err != nil {
		return nil, err
	}

	return &BlogOutput{Body: toBlogResponse(blog)}, nil
}

func (s *Server) handleUpdateBlog(ctx context.Context, input *UpdateBlogInput) (*BlogOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	blog, err := s.services.Blog.Update(ctx, user, input.ID, service.UpdateBlogRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Tags:    input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &BlogOutput{Body: toBlogResponse(blog)}, nil
}

func (s *Server) handleDeleteBlog(ctx context.Context, input *BlogIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Blog.Delete(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Post deleted"}}, nil
}

func (s *Server) handlePublishBlog(ctx context.Context, input *BlogIDInput) (*BlogOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	blog, err := s.services.Blog.Publish(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}

	return &BlogOutput{Body: toBlogResponse(blog)}, nil
}

func (s *Server) handleUnpublishBlog(ctx context.Context, input *BlogIDInput) (*BlogOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	blog, err := s.services.Blog.Unpublish(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}

	return &BlogOutput{Body: toBlogResponse(blog)}, nil
}

// === Helpers ===

func toBlogResponse(b *domain.Blog) BlogResponse {
	tags := make([]TagResponse, len(b.Tags))
	for i := range b.Tags {
		tags[i] = toTagResponse(&b.Tags[i])
	}

	return BlogResponse{
		ID:           b.ID,
		Title:        b.Title,
		Content:      b.Content,
		Slug:         b.Slug,
		AuthorID:     b.AuthorID,
		Published:    b.Published,
		PublishedAt:  b.PublishedAt,
		ViewCount:    b.ViewCount,
		LikeCount:    b.LikeCount,
		CommentCount: b.CommentCount,
		Tags:         tags,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toBlogListResponse(page *store.Page[*domain.Blog]) BlogListResponse {
	blogs := make([]BlogResponse, len(page.Items))
	for i, b := range page.Items {
		blogs[i] = toBlogResponse(b)
	}

	return BlogListResponse{
		Blogs:      blogs,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
}
