// Package search provides full-text search over inventory items using
// Bleve. Items are indexed per board with exact-match filters for sale
// status, category, and label alongside the analyzed text fields.
package search

import (
	"github.com/stockroomapp/stockroom-server/internal/domain"
)

// ItemDocument is the Bleve document for one inventory item.
//
// Category and label are denormalized twice: the raw value feeds the
// full-text fields, the slug feeds exact-match filtering. Customer name
// is denormalized in so "who bought the blue rug" style queries work
// from a single index.
type ItemDocument struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`

	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	Label        string `json:"label,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`

	CategorySlug string `json:"category_slug,omitempty"`
	LabelSlug    string `json:"label_slug,omitempty"`
	SaleStatus   string `json:"sale_status,omitempty"`

	ListedPrice int64 `json:"listed_price,omitempty"`
	SoldAt      int64 `json:"sold_at,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names (capitalized) by default, but the
// mapping uses lowercase names, so we convert explicitly.
func (d *ItemDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"board_id":   d.BoardID,
		"title":      d.Title,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.Label != "" {
		m["label"] = d.Label
	}
	if d.CustomerName != "" {
		m["customer_name"] = d.CustomerName
	}
	if d.CategorySlug != "" {
		m["category_slug"] = d.CategorySlug
	}
	if d.LabelSlug != "" {
		m["label_slug"] = d.LabelSlug
	}
	if d.SaleStatus != "" {
		m["sale_status"] = d.SaleStatus
	}
	if d.ListedPrice > 0 {
		m["listed_price"] = d.ListedPrice
	}
	if d.SoldAt > 0 {
		m["sold_at"] = d.SoldAt
	}

	return m
}

// ItemToDocument converts an inventory item to its index document.
func ItemToDocument(item *domain.InventoryItem) *ItemDocument {
	return &ItemDocument{
		ID:           item.ID,
		BoardID:      item.BoardID,
		Title:        item.Title,
		Description:  item.Description,
		Category:     item.Category,
		Label:        item.Label,
		CustomerName: item.Customer.Name,
		CategorySlug: Slugify(item.Category),
		LabelSlug:    Slugify(item.Label),
		SaleStatus:   string(item.SaleStatus),
		ListedPrice:  item.ListedPrice,
		SoldAt:       item.SoldAt,
		CreatedAt:    item.CreatedAt.UnixMilli(),
		UpdatedAt:    item.UpdatedAt.UnixMilli(),
	}
}
