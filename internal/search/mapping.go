package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for item documents.
//
// Text fields use English stemming; board id, sale status, and the
// vocabulary slugs use the keyword analyzer for exact-match filtering;
// prices and timestamps are numeric for range queries and sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Description - searchable but not stored (can be long)
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = en.AnalyzerName
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	labelFieldMapping := bleve.NewTextFieldMapping()
	labelFieldMapping.Analyzer = en.AnalyzerName
	labelFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("label", labelFieldMapping)

	customerFieldMapping := bleve.NewTextFieldMapping()
	customerFieldMapping.Analyzer = en.AnalyzerName
	customerFieldMapping.Store = true
	customerFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("customer_name", customerFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	boardFieldMapping := bleve.NewTextFieldMapping()
	boardFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("board_id", boardFieldMapping)

	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("sale_status", statusFieldMapping)

	categorySlugFieldMapping := bleve.NewTextFieldMapping()
	categorySlugFieldMapping.Analyzer = keyword.Name
	categorySlugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category_slug", categorySlugFieldMapping)

	labelSlugFieldMapping := bleve.NewTextFieldMapping()
	labelSlugFieldMapping.Analyzer = keyword.Name
	labelSlugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("label_slug", labelSlugFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	listedPriceFieldMapping := bleve.NewNumericFieldMapping()
	listedPriceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("listed_price", listedPriceFieldMapping)

	soldAtFieldMapping := bleve.NewNumericFieldMapping()
	soldAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("sold_at", soldAtFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
