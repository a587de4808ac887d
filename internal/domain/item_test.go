package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfit_Sold(t *testing.T) {
	item := &InventoryItem{
		PurchasePrice:   300,
		DeliveryCharges: 50,
		SoldAt:          500,
	}
	assert.Equal(t, int64(150), item.Profit())
}

func TestProfit_NotSold(t *testing.T) {
	// SoldAt == 0 means not yet sold: profit is zero regardless of
	// the other money fields.
	item := &InventoryItem{
		PurchasePrice:   300,
		ListedPrice:     900,
		DeliveryCharges: 50,
	}
	assert.Equal(t, int64(0), item.Profit())
}

func TestProfit_Negative(t *testing.T) {
	item := &InventoryItem{
		PurchasePrice:   300,
		DeliveryCharges: 50,
		SoldAt:          200,
	}
	assert.Equal(t, int64(-150), item.Profit())
}

func TestThumbnailID(t *testing.T) {
	item := &InventoryItem{}
	assert.Empty(t, item.ThumbnailID())

	item.ImageIDs = []string{"ast-1", "ast-2"}
	assert.Equal(t, "ast-1", item.ThumbnailID())
}

func TestAppendImages_PreservesOrder(t *testing.T) {
	item := &InventoryItem{ImageIDs: []string{"ast-1", "ast-2"}}
	item.AppendImages("ast-3")
	assert.Equal(t, []string{"ast-1", "ast-2", "ast-3"}, item.ImageIDs)
}

func TestItemPatch_Apply(t *testing.T) {
	item := &InventoryItem{
		BoardID:     "brd-1",
		Title:       "Chair",
		Description: "Oak chair",
		ListedPrice: 900,
	}

	title := "Armchair"
	sold := int64(850)
	status := SaleStatusSold
	patch := &ItemPatch{
		Title:      &title,
		SoldAt:     &sold,
		SaleStatus: &status,
	}
	patch.Apply(item)

	assert.Equal(t, "Armchair", item.Title)
	assert.Equal(t, int64(850), item.SoldAt)
	assert.Equal(t, SaleStatusSold, item.SaleStatus)
	// Unspecified fields untouched.
	assert.Equal(t, "Oak chair", item.Description)
	assert.Equal(t, int64(900), item.ListedPrice)
}

func TestItemPatch_Apply_EmptyStringOverwrites(t *testing.T) {
	// A present-but-empty field is an explicit clear, distinct from a
	// nil (absent) field.
	item := &InventoryItem{Description: "something"}
	empty := ""
	(&ItemPatch{Description: &empty}).Apply(item)
	assert.Empty(t, item.Description)
}

func TestStamped_InitAndTouch(t *testing.T) {
	var s Stamped
	s.InitTimestamps()
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	time.Sleep(time.Millisecond)
	s.Touch()
	assert.True(t, s.UpdatedAt.After(s.CreatedAt))
}

func TestSaleStatus_Valid(t *testing.T) {
	assert.True(t, SaleStatusAvailable.Valid())
	assert.True(t, SaleStatusPending.Valid())
	assert.True(t, SaleStatusSold.Valid())
	assert.False(t, SaleStatus("returned").Valid())
}

func TestSaleType_Valid(t *testing.T) {
	assert.True(t, SaleTypeOnline.Valid())
	assert.True(t, SaleTypeOffline.Valid())
	assert.False(t, SaleType("consignment").Valid())
}
