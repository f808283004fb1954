package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for post documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on titles with English stemming
//  2. Content searchable but not stored (posts can be large)
//  3. Exact keyword matching for tag filters
//  4. Term vectors on title for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Title - primary search target, boosted at query time
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Content - searchable but not stored (too large)
	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = false
	contentFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	// Author display name - searchable with simple analyzer (no stemming)
	authorNameFieldMapping := bleve.NewTextFieldMapping()
	authorNameFieldMapping.Analyzer = simple.Name
	authorNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("author_name", authorNameFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Slug - for result URLs
	slugFieldMapping := bleve.NewTextFieldMapping()
	slugFieldMapping.Analyzer = keyword.Name
	slugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("slug", slugFieldMapping)

	// Author ID - for filtering by author
	authorIDFieldMapping := bleve.NewTextFieldMapping()
	authorIDFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("author_id", authorIDFieldMapping)

	// Tags - keyword analyzer keeps compound slugs intact (e.g., "slow-burn")
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	publishedAtFieldMapping := bleve.NewNumericFieldMapping()
	publishedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("published_at", publishedAtFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
