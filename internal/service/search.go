package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/search"
	"github.com/flashblog/flashblog-server/internal/store"
)

// SearchService runs full-text queries and keeps the index fed.
// It is also the store's SearchIndexer, so every publish, update, and
// delete flows through here.
type SearchService struct {
	store  store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// Search runs a full-text query over published posts.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// IndexBlog adds or updates a published post in the index.
// Implements store.SearchIndexer.
func (s *SearchService) IndexBlog(ctx context.Context, blog *domain.Blog) error {
	doc := search.BlogToSearchDocument(blog, s.authorName(ctx, blog.AuthorID))
	return s.index.IndexDocument(ctx, doc)
}

// DeleteBlog removes a post from the index.
// Implements store.SearchIndexer.
func (s *SearchService) DeleteBlog(ctx context.Context, blogID string) error {
	return s.index.DeleteDocument(ctx, blogID)
}

// DocumentCount returns the number of indexed posts.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildIndex re-indexes every published post from the store.
// Used at startup when the index was discarded and as an admin repair.
func (s *SearchService) RebuildIndex(ctx context.Context) error {
	var docs []*search.SearchDocument

	params := store.PaginationParams{Page: 1, PerPage: 100}
	for {
		page, err := s.store.ListBlogs(ctx, store.BlogFilter{PublishedOnly: true}, params)
		if err != nil {
			return fmt.Errorf("list blogs for reindex: %w", err)
		}

		for _, blog := range page.Items {
			docs = append(docs, search.BlogToSearchDocument(blog, s.authorName(ctx, blog.AuthorID)))
		}

		if !page.HasNext {
			break
		}
		params.Page++
	}

	if err := s.index.Rebuild(ctx, docs); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// authorName resolves a display name for indexing. A missing author is
// indexed without a name rather than failing the write.
func (s *SearchService) authorName(ctx context.Context, authorID string) string {
	user, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		s.logger.Warn("could not resolve author for indexing", "author_id", authorID, "error", err)
		return ""
	}
	return user.DisplayName
}
