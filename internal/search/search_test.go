package search

import (
	"testing"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = index.Close()
	})
	return index
}

func testItem(id, boardID, title string) *domain.InventoryItem {
	item := &domain.InventoryItem{
		BoardID: boardID,
		Title:   title,
	}
	item.ID = id
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	return item
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexItem(t *testing.T) {
	index := setupTestIndex(t)

	err := index.IndexItem(t.Context(), testItem("item_1", "brd_1", "Velvet armchair"))
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexItems_Batch(t *testing.T) {
	index := setupTestIndex(t)

	items := []*domain.InventoryItem{
		testItem("item_1", "brd_1", "Armchair"),
		testItem("item_2", "brd_1", "Coffee table"),
		testItem("item_3", "brd_1", "Rug"),
	}

	require.NoError(t, index.IndexItems(items))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeleteItem(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(t.Context(), testItem("item_1", "brd_1", "Armchair")))
	require.NoError(t, index.DeleteItem(t.Context(), "item_1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_TitleMatch(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{
		testItem("item_1", "brd_1", "Velvet armchair"),
		testItem("item_2", "brd_1", "Walnut coffee table"),
	}))

	params := DefaultParams("brd_1")
	params.Query = "armchair"

	result, err := index.Search(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "item_1", result.Hits[0].ID)
	assert.Equal(t, "Velvet armchair", result.Hits[0].Title)
}

func TestSearch_BoardScoped(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{
		testItem("item_1", "brd_1", "Armchair"),
		testItem("item_2", "brd_2", "Armchair"),
	}))

	params := DefaultParams("brd_1")
	params.Query = "armchair"

	result, err := index.Search(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "item_1", result.Hits[0].ID)
}

func TestSearch_CustomerName(t *testing.T) {
	index := setupTestIndex(t)

	sold := testItem("item_1", "brd_1", "Blue rug")
	sold.SaleStatus = domain.SaleStatusSold
	sold.Customer = domain.Customer{Name: "Priya Sharma"}

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{
		sold,
		testItem("item_2", "brd_1", "Red rug"),
	}))

	params := DefaultParams("brd_1")
	params.Query = "priya"

	result, err := index.Search(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "item_1", result.Hits[0].ID)
	assert.Equal(t, "Priya Sharma", result.Hits[0].CustomerName)
}

func TestSearch_SaleStatusFilter(t *testing.T) {
	index := setupTestIndex(t)

	sold := testItem("item_1", "brd_1", "Armchair")
	sold.SaleStatus = domain.SaleStatusSold
	available := testItem("item_2", "brd_1", "Armchair")
	available.SaleStatus = domain.SaleStatusAvailable

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{sold, available}))

	params := DefaultParams("brd_1")
	params.SaleStatuses = []string{"sold"}

	result, err := index.Search(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "item_1", result.Hits[0].ID)
}

func TestSearch_CategorySlugFilter(t *testing.T) {
	index := setupTestIndex(t)

	decor := testItem("item_1", "brd_1", "Ceramic vase")
	decor.Category = "Home Décor"
	seating := testItem("item_2", "brd_1", "Stool")
	seating.Category = "Seating"

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{decor, seating}))

	params := DefaultParams("brd_1")
	params.CategorySlugs = []string{"home-decor"}

	result, err := index.Search(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "item_1", result.Hits[0].ID)
}

func TestSearch_PriceRange(t *testing.T) {
	index := setupTestIndex(t)

	cheap := testItem("item_1", "brd_1", "Stool")
	cheap.ListedPrice = 2000
	pricey := testItem("item_2", "brd_1", "Sofa")
	pricey.ListedPrice = 90000

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{cheap, pricey}))

	params := DefaultParams("brd_1")
	params.MinPrice = 50000

	result, err := index.Search(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "item_2", result.Hits[0].ID)
}

func TestSearch_Facets(t *testing.T) {
	index := setupTestIndex(t)

	a := testItem("item_1", "brd_1", "Armchair")
	a.SaleStatus = domain.SaleStatusSold
	b := testItem("item_2", "brd_1", "Table")
	b.SaleStatus = domain.SaleStatusSold
	c := testItem("item_3", "brd_1", "Rug")
	c.SaleStatus = domain.SaleStatusAvailable

	require.NoError(t, index.IndexItems([]*domain.InventoryItem{a, b, c}))

	result, err := index.Search(t.Context(), DefaultParams("brd_1"))
	require.NoError(t, err)
	require.NotEmpty(t, result.Facets.SaleStatuses)

	counts := map[string]int{}
	for _, f := range result.Facets.SaleStatuses {
		counts[f.Value] = f.Count
	}
	assert.Equal(t, 2, counts["sold"])
	assert.Equal(t, 1, counts["available"])
}

func TestIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(t.Context(), testItem("item_1", "brd_1", "Armchair")))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Index usable after rebuild.
	require.NoError(t, index.IndexItem(t.Context(), testItem("item_2", "brd_1", "Table")))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Home Décor", "home-decor"},
		{"Sofas & Chairs", "sofas-chairs"},
		{"  Rugs  ", "rugs"},
		{"UPPER", "upper"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
