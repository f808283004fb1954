// Package search provides full-text search over published posts using Bleve.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// mappingVersion is bumped whenever buildIndexMapping changes in a way that
// requires reindexing. On mismatch the index is rebuilt from scratch.
const mappingVersion = 1

const (
	indexDirName    = "search.bleve"
	versionFileName = "search.version"
	batchSize       = 500
)

// SearchIndex wraps a Bleve index over post documents.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	// DataPath is the directory where index files are stored.
	DataPath string
	// Logger for index operations. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewSearchIndex opens or creates the search index under opts.DataPath.
// A stale or corrupt index is discarded and recreated empty; callers are
// expected to trigger a rebuild from the store when that happens.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating search data dir: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, indexDirName)
	versionPath := filepath.Join(opts.DataPath, versionFileName)

	si := &SearchIndex{
		path:   indexPath,
		logger: opts.Logger,
	}

	if !versionMatches(versionPath) {
		opts.Logger.Info("search mapping version changed, discarding index",
			slog.Int("version", mappingVersion))
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("removing stale index: %w", err)
		}
	}

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating search index: %w", err)
		}
	} else if err != nil {
		// Corrupt index. Throw it away and start over.
		opts.Logger.Warn("search index failed to open, rebuilding",
			slog.String("error", err.Error()))
		if rmErr := os.RemoveAll(indexPath); rmErr != nil {
			return nil, fmt.Errorf("removing corrupt index: %w", rmErr)
		}
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("recreating search index: %w", err)
		}
	}

	if err := writeVersion(versionPath); err != nil {
		index.Close()
		return nil, err
	}

	si.index = index
	return si, nil
}

func versionMatches(versionPath string) bool {
	data, err := os.ReadFile(versionPath)
	if err != nil {
		return false
	}
	return string(data) == fmt.Sprintf("%d", mappingVersion)
}

func writeVersion(versionPath string) error {
	if err := os.WriteFile(versionPath, []byte(fmt.Sprintf("%d", mappingVersion)), 0o644); err != nil {
		return fmt.Errorf("writing search version file: %w", err)
	}
	return nil
}

// Close releases the underlying index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or updates a single document in the index.
func (s *SearchIndex) IndexDocument(ctx context.Context, doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.index.Index(doc.ID, doc.ToMap()); err != nil {
		return fmt.Errorf("indexing post %s: %w", doc.ID, err)
	}
	return nil
}

// IndexDocuments adds or updates documents in batches.
func (s *SearchIndex) IndexDocuments(ctx context.Context, docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batching post %s: %w", doc.ID, err)
		}

		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("executing batch at %d: %w", i, err)
			}
			batch = s.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("executing final batch: %w", err)
		}
	}

	return nil
}

// DeleteDocument removes a document from the index. Deleting an absent
// document is not an error.
func (s *SearchIndex) DeleteDocument(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.index.Delete(id); err != nil {
		return fmt.Errorf("deleting post %s from index: %w", id, err)
	}
	return nil
}

// DeleteDocuments removes documents in a single batch.
func (s *SearchIndex) DeleteDocuments(ctx context.Context, ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("deleting %d posts from index: %w", len(ids), err)
	}
	return nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the entire index contents with the given documents.
// It holds the write lock for the duration, so searches block while a
// rebuild runs.
func (s *SearchIndex) Rebuild(ctx context.Context, docs []*SearchDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("rebuilding search index", slog.Int("documents", len(docs)))

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("closing index for rebuild: %w", err)
	}

	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("removing index for rebuild: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("recreating index for rebuild: %w", err)
	}
	s.index = index

	batch := s.index.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batching post %s: %w", doc.ID, err)
		}

		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("executing rebuild batch at %d: %w", i, err)
			}
			batch = s.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("executing final rebuild batch: %w", err)
		}
	}

	s.logger.Info("search index rebuilt", slog.Int("documents", len(docs)))
	return nil
}
