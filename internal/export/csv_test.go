package export

import (
	"bytes"
	"encoding/csv"
	"iter"
	"testing"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemSeq(items ...*domain.InventoryItem) iter.Seq2[*domain.InventoryItem, error] {
	return func(yield func(*domain.InventoryItem, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func soldChair() *domain.InventoryItem {
	item := &domain.InventoryItem{
		BoardID:         "brd_1",
		Title:           "Chair, vintage",
		Category:        "Seating",
		PurchasePrice:   30000,
		DeliveryCharges: 5000,
		SoldAt:          50000,
		SaleStatus:      domain.SaleStatusSold,
		SaleType:        domain.SaleTypeOnline,
		Customer: domain.Customer{
			Name:    "Priya Sharma",
			Email:   "priya@example.com",
			Address: "14 MG Road, Pune",
		},
	}
	item.ID = "item_1"
	item.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item.UpdatedAt = item.CreatedAt
	return item
}

func TestCSVExporter_Write(t *testing.T) {
	var buf bytes.Buffer
	count, err := NewCSVExporter().Write(&buf, itemSeq(soldChair()))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header, row := records[0], records[1]
	assert.Equal(t, csvHeader, header)

	byName := map[string]string{}
	for i, name := range header {
		byName[name] = row[i]
	}

	assert.Equal(t, "item_1", byName["id"])
	// The embedded comma survives quoting round-trip.
	assert.Equal(t, "Chair, vintage", byName["title"])
	assert.Equal(t, "300.00", byName["purchase_price"])
	assert.Equal(t, "500.00", byName["sold_at"])
	// 500 - 300 - 50
	assert.Equal(t, "150.00", byName["profit"])
	assert.Equal(t, "sold", byName["sale_status"])
	assert.Equal(t, "Priya Sharma", byName["customer_name"])
	assert.Equal(t, "14 MG Road, Pune", byName["customer_address"])
	assert.Equal(t, "2026-03-01T12:00:00Z", byName["created_at"])
}

func TestCSVExporter_UnsoldMoneyBlank(t *testing.T) {
	item := soldChair()
	item.SoldAt = 0
	item.SaleStatus = domain.SaleStatusAvailable

	var buf bytes.Buffer
	_, err := NewCSVExporter().Write(&buf, itemSeq(item))
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	row := records[1]

	byName := map[string]string{}
	for i, name := range records[0] {
		byName[name] = row[i]
	}
	assert.Empty(t, byName["sold_at"])
	assert.Empty(t, byName["profit"])
}

func TestCSVExporter_SequenceError(t *testing.T) {
	failing := func(yield func(*domain.InventoryItem, error) bool) {
		if !yield(soldChair(), nil) {
			return
		}
		yield(nil, errors.Storage("iteration failed"))
	}

	var buf bytes.Buffer
	count, err := NewCSVExporter().Write(&buf, failing)
	require.Error(t, err)
	assert.Equal(t, 1, count)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "", money(0))
	assert.Equal(t, "0.05", money(5))
	assert.Equal(t, "1.50", money(150))
	assert.Equal(t, "-0.05", money(-5))
	assert.Equal(t, "-12.34", money(-1234))
}
