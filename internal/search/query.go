package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams describes a post search.
type SearchParams struct {
	// Query is the free-text query string. Empty matches everything.
	Query string
	// TagSlugs filters results to posts carrying any of these tags.
	TagSlugs []string
	// AuthorID filters results to a single author.
	AuthorID string
	// SortBy is "relevance" (default) or "recent".
	SortBy string
	// Limit caps the number of hits returned. Defaults to 20, max 100.
	Limit int
	// Offset skips this many hits for pagination.
	Offset int
}

// SearchHit is a single search result.
type SearchHit struct {
	ID          string              `json:"id"`
	Score       float64             `json:"score"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	AuthorName  string              `json:"author_name,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	PublishedAt int64               `json:"published_at,omitempty"`
	Highlights  map[string][]string `json:"highlights,omitempty"`
}

// SearchResult is the full response for a search.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []*SearchHit `json:"hits"`
}

// Search runs a query against the index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.Fields = []string{"title", "slug", "author_name", "tags", "published_at"}
	searchRequest.Highlight = bleve.NewHighlightWithStyle("html")
	searchRequest.Highlight.Fields = []string{"title", "content"}
	addSorting(searchRequest, params.SortBy)

	result, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}

	hits := make([]*SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		sh := &SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if title, ok := hit.Fields["title"].(string); ok {
			sh.Title = title
		}
		if slug, ok := hit.Fields["slug"].(string); ok {
			sh.Slug = slug
		}
		if authorName, ok := hit.Fields["author_name"].(string); ok {
			sh.AuthorName = authorName
		}

		// Tags come back as a string for a single value, a slice otherwise.
		switch tags := hit.Fields["tags"].(type) {
		case string:
			sh.Tags = []string{tags}
		case []interface{}:
			for _, t := range tags {
				if tag, ok := t.(string); ok {
					sh.Tags = append(sh.Tags, tag)
				}
			}
		}

		// Bleve returns numeric fields as float64.
		if publishedAt, ok := hit.Fields["published_at"].(float64); ok {
			sh.PublishedAt = int64(publishedAt)
		}

		if len(hit.Fragments) > 0 {
			sh.Highlights = make(map[string][]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				sh.Highlights[field] = fragments
			}
		}

		hits = append(hits, sh)
	}

	return &SearchResult{
		Query:  params.Query,
		Total:  result.Total,
		TookMs: result.Took.Milliseconds(),
		Hits:   hits,
	}, nil
}

// buildSearchQuery combines the free-text query with tag and author filters.
func buildSearchQuery(params SearchParams) query.Query {
	var parts []query.Query

	text := strings.TrimSpace(params.Query)
	if text != "" {
		// Title matches weigh heaviest, then content, then fuzzy and
		// prefix fallbacks so partial words still find something.
		titleQuery := bleve.NewMatchQuery(text)
		titleQuery.SetField("title")
		titleQuery.SetBoost(3.0)

		contentQuery := bleve.NewMatchQuery(text)
		contentQuery.SetField("content")

		fuzzyQuery := bleve.NewFuzzyQuery(text)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetBoost(0.8)

		textParts := []query.Query{titleQuery, contentQuery, fuzzyQuery}

		if len(text) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(text))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textParts = append(textParts, prefixQuery)
		}

		parts = append(parts, bleve.NewDisjunctionQuery(textParts...))
	}

	if len(params.TagSlugs) > 0 {
		tagQueries := make([]query.Query, 0, len(params.TagSlugs))
		for _, slug := range params.TagSlugs {
			tq := bleve.NewTermQuery(slug)
			tq.SetField("tags")
			tagQueries = append(tagQueries, tq)
		}
		parts = append(parts, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if params.AuthorID != "" {
		aq := bleve.NewTermQuery(params.AuthorID)
		aq.SetField("author_id")
		parts = append(parts, aq)
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return parts[0]
	default:
		return bleve.NewConjunctionQuery(parts...)
	}
}

func addSorting(req *bleve.SearchRequest, sortBy string) {
	switch sortBy {
	case "recent":
		req.SortBy([]string{"-published_at", "-_score"})
	default:
		req.SortBy([]string{"-_score"})
	}
}
