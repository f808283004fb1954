package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/flashblog/flashblog-server/internal/config"
	"github.com/flashblog/flashblog-server/internal/logger"
	"github.com/flashblog/flashblog-server/internal/search"
	"github.com/flashblog/flashblog-server/internal/service"
	"github.com/flashblog/flashblog-server/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(storeHandle.Store, indexHandle.SearchIndex, log.Logger)

	// Wire to store for automatic indexing
	storeHandle.SetSearchIndexer(svc)

	return svc, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index when it is empty but
// published posts exist, which happens after the index was discarded as
// stale or corrupt. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	page, err := storeHandle.ListBlogs(ctx,
		store.BlogFilter{PublishedOnly: true},
		store.PaginationParams{Page: 1, PerPage: 1},
	)
	if err != nil || page.Total == 0 {
		return
	}

	log.Info("Search index is empty but published posts exist, triggering initial reindex",
		"post_count", page.Total,
	)

	go func() {
		reindexCtx := context.Background()
		if err := searchService.RebuildIndex(reindexCtx); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := searchService.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
