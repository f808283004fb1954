package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/flashblog/flashblog-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBlogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/blogs",
		Summary:     "Search posts",
		Description: "Full-text search over published posts with relevance ranking and highlights",
		Tags:        []string{"Search"},
	}, s.handleSearchBlogs)
}

// === DTOs ===

// SearchBlogsInput contains parameters for searching posts.
type SearchBlogsInput struct {
	Query    string `query:"q" validate:"omitempty,max=200" doc:"Search query. Empty matches everything."`
	Tags     string `query:"tags" validate:"omitempty,max=200" doc:"Comma-separated tag slugs; posts matching any are returned"`
	AuthorID string `query:"author_id" doc:"Filter by author ID"`
	Sort     string `query:"sort" enum:"relevance,recent" doc:"Sort order (default relevance)"`
	Limit    int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset   int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID          string              `json:"id" doc:"Post ID"`
	Score       float64             `json:"score" doc:"Search relevance score"`
	Title       string              `json:"title" doc:"Post title"`
	Slug        string              `json:"slug" doc:"Post slug"`
	AuthorName  string              `json:"author_name,omitempty" doc:"Author display name"`
	Tags        []string            `json:"tags,omitempty" doc:"Tag slugs"`
	PublishedAt int64               `json:"published_at,omitempty" doc:"Publish time in Unix milliseconds"`
	Highlights  map[string][]string `json:"highlights,omitempty" doc:"Highlighted match fragments per field"`
}

// SearchBlogsResponse contains search results.
type SearchBlogsResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchBlogsOutput wraps the search response for Huma.
type SearchBlogsOutput struct {
	Body SearchBlogsResponse
}

// === Handlers ===

func (s *Server) handleSearchBlogs(ctx context.Context, input *SearchBlogsInput) (*SearchBlogsOutput, error) {
	params := search.SearchParams{
		Query:    input.Query,
		AuthorID: input.AuthorID,
		SortBy:   input.Sort,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	if input.Tags != "" {
		for _, slug := range strings.Split(input.Tags, ",") {
			slug = strings.TrimSpace(slug)
			if slug != "" {
				params.TagSlugs = append(params.TagSlugs, slug)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResult{
			ID:          h.ID,
			Score:       h.Score,
			Title:       h.Title,
			Slug:        h.Slug,
			AuthorName:  h.AuthorName,
			Tags:        h.Tags,
			PublishedAt: h.PublishedAt,
			Highlights:  h.Highlights,
		}
	}

	return &SearchBlogsOutput{Body: SearchBlogsResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}}, nil
}
