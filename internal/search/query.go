package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query. BoardID is required; everything
// else narrows or orders the result.
type Params struct {
	BoardID string
	Query   string

	// Filters
	SaleStatuses  []string // Exact sale status values
	CategorySlugs []string // Exact category slugs (see Slugify)
	LabelSlugs    []string // Exact label slugs
	MinPrice      int64    // Minimum listed price in cents
	MaxPrice      int64    // Maximum listed price in cents

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "price", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	Highlight     bool
}

// DefaultParams returns sensible defaults for a board.
func DefaultParams(boardID string) Params {
	return Params{
		BoardID:       boardID,
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitempty"`
}

// Hit is a single matching item.
type Hit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Title        string            `json:"title"`
	Category     string            `json:"category,omitempty"`
	Label        string            `json:"label,omitempty"`
	CustomerName string            `json:"customer_name,omitempty"`
	SaleStatus   string            `json:"sale_status,omitempty"`
	ListedPrice  int64             `json:"listed_price,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts for filter UIs.
type Facets struct {
	SaleStatuses []FacetCount `json:"sale_statuses,omitempty"`
	Categories   []FacetCount `json:"categories,omitempty"`
	Labels       []FacetCount `json:"labels,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query scoped to params.BoardID.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		for _, field := range []string{"sale_status", "category_slug", "label_slug"} {
			searchRequest.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("customer_name")
	}

	searchRequest.Fields = []string{
		"id", "title", "category", "label", "customer_name",
		"sale_status", "listed_price",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if c, ok := hit.Fields["category"].(string); ok {
			h.Category = c
		}
		if l, ok := hit.Fields["label"].(string); ok {
			h.Label = l
		}
		if n, ok := hit.Fields["customer_name"].(string); ok {
			h.CustomerName = n
		}
		if st, ok := hit.Fields["sale_status"].(string); ok {
			h.SaleStatus = st
		}
		if p, ok := hit.Fields["listed_price"].(float64); ok {
			h.ListedPrice = int64(p)
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params. Every query
// is conjoined with the board term so results never leak across boards.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	boardQuery := bleve.NewTermQuery(params.BoardID)
	boardQuery.SetField("board_id")
	queries = append(queries, boardQuery)

	if params.Query != "" {
		textQueries := []query.Query{}

		// Title match with highest boost
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		customerMatch := bleve.NewMatchQuery(params.Query)
		customerMatch.SetField("customer_name")
		customerMatch.SetBoost(1.5)
		textQueries = append(textQueries, customerMatch)

		// Fuzzy matching for typo tolerance on title
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.SaleStatuses) > 0 {
		statusQueries := make([]query.Query, len(params.SaleStatuses))
		for i, status := range params.SaleStatuses {
			sq := bleve.NewTermQuery(status)
			sq.SetField("sale_status")
			statusQueries[i] = sq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(statusQueries...))
	}

	if len(params.CategorySlugs) > 0 {
		categoryQueries := make([]query.Query, len(params.CategorySlugs))
		for i, slug := range params.CategorySlugs {
			cq := bleve.NewTermQuery(slug)
			cq.SetField("category_slug")
			categoryQueries[i] = cq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(categoryQueries...))
	}

	if len(params.LabelSlugs) > 0 {
		labelQueries := make([]query.Query, len(params.LabelSlugs))
		for i, slug := range params.LabelSlugs {
			lq := bleve.NewTermQuery(slug)
			lq.SetField("label_slug")
			labelQueries[i] = lq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(labelQueries...))
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		minPrice := float64(params.MinPrice)
		maxPrice := float64(params.MaxPrice)
		if params.MaxPrice == 0 {
			maxPrice = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&minPrice, &maxPrice)
		rangeQuery.SetField("listed_price")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "price":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"listed_price"})
		} else {
			req.SortBy([]string{"-listed_price"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is default
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if statusFacet, ok := result.Facets["sale_status"]; ok {
		for _, term := range statusFacet.Terms.Terms() {
			facets.SaleStatuses = append(facets.SaleStatuses, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if categoryFacet, ok := result.Facets["category_slug"]; ok {
		for _, term := range categoryFacet.Terms.Terms() {
			facets.Categories = append(facets.Categories, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if labelFacet, ok := result.Facets["label_slug"]; ok {
		for _, term := range labelFacet.Terms.Terms() {
			facets.Labels = append(facets.Labels, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
