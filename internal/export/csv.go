// Package export renders resolved inventory item sequences into
// presentation formats. Field order and quoting are owned here, not by
// the stores.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
)

// csvHeader is the presentation contract for spreadsheet imports.
// Column order is stable; append-only.
var csvHeader = []string{
	"id",
	"product_id",
	"title",
	"description",
	"category",
	"label",
	"purchase_price",
	"listed_price",
	"sold_at",
	"delivery_charges",
	"profit",
	"sale_status",
	"sale_type",
	"paid_to",
	"customer_name",
	"customer_email",
	"customer_phone",
	"customer_address",
	"created_at",
	"updated_at",
}

// CSVExporter writes inventory items as CSV.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write consumes the item sequence and writes one CSV row per item,
// header first. Monetary columns are rendered in major units with two
// decimals ("150.00"); stored values are cents.
func (e *CSVExporter) Write(w io.Writer, items iter.Seq2[*domain.InventoryItem, error]) (int, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	count := 0
	for item, err := range items {
		if err != nil {
			return count, fmt.Errorf("resolve item: %w", err)
		}
		if err := cw.Write(itemRow(item)); err != nil {
			return count, fmt.Errorf("write row %s: %w", item.ID, err)
		}
		count++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("flush: %w", err)
	}
	return count, nil
}

func itemRow(item *domain.InventoryItem) []string {
	return []string{
		item.ID,
		item.ProductID,
		item.Title,
		item.Description,
		item.Category,
		item.Label,
		money(item.PurchasePrice),
		money(item.ListedPrice),
		money(item.SoldAt),
		money(item.DeliveryCharges),
		money(item.Profit()),
		string(item.SaleStatus),
		string(item.SaleType),
		item.PaidTo,
		item.Customer.Name,
		item.Customer.Email,
		item.Customer.Phone,
		item.Customer.Address,
		item.CreatedAt.UTC().Format(time.RFC3339),
		item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// money renders cents as a major-unit decimal string. Zero renders
// empty so unsold items don't show a misleading "0.00" sale amount.
func money(cents int64) string {
	if cents == 0 {
		return ""
	}
	whole := cents / 100
	frac := cents % 100
	if frac < 0 {
		frac = -frac
	}
	if cents < 0 && whole == 0 {
		return "-0." + pad2(frac)
	}
	return strconv.FormatInt(whole, 10) + "." + pad2(frac)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
