// Package domain contains the core business entities and domain logic for the Stockroom inventory.
package domain

// SaleStatus describes where an item sits in its sales lifecycle.
type SaleStatus string

// Sale statuses.
const (
	SaleStatusAvailable SaleStatus = "available"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusSold      SaleStatus = "sold"
)

// Valid reports whether the status is one of the known values.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusAvailable, SaleStatusPending, SaleStatusSold:
		return true
	}
	return false
}

// SaleType describes how a sale was (or will be) made.
type SaleType string

// Sale types.
const (
	SaleTypeOnline  SaleType = "online"
	SaleTypeOffline SaleType = "offline"
)

// Valid reports whether the type is one of the known values.
func (t SaleType) Valid() bool {
	return t == SaleTypeOnline || t == SaleTypeOffline
}

// Customer holds optional buyer contact details on an item.
type Customer struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// InventoryItem represents a product record on a board.
//
// ImageIDs is an ordered weak-reference list into the board's asset
// store: every id must resolve to an asset with the same BoardID, and
// the first id is the item's thumbnail. The item does not own the
// asset bytes.
type InventoryItem struct {
	Stamped
	BoardID string `json:"board_id"`

	ProductID   string `json:"product_id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Label       string `json:"label,omitempty"`

	// Money fields are in minor currency units (cents).
	// SoldAt is the sale amount; 0 means not yet sold.
	PurchasePrice   int64 `json:"purchase_price"`
	ListedPrice     int64 `json:"listed_price"`
	SoldAt          int64 `json:"sold_at"`
	DeliveryCharges int64 `json:"delivery_charges"`

	SaleStatus SaleStatus `json:"sale_status,omitempty" validate:"omitempty,oneof=available pending sold"`
	SaleType   SaleType   `json:"sale_type,omitempty" validate:"omitempty,oneof=online offline"`
	PaidTo     string     `json:"paid_to,omitempty"`

	Customer Customer `json:"customer"`

	ImageIDs []string `json:"image_ids,omitempty"`
}

// Profit returns the realized profit for a sold item.
// Defined only once the item is sold (SoldAt > 0); zero otherwise.
func (i *InventoryItem) Profit() int64 {
	if i.SoldAt <= 0 {
		return 0
	}
	return i.SoldAt - i.PurchasePrice - i.DeliveryCharges
}

// ThumbnailID returns the id of the item's thumbnail asset, or "" if
// the item has no media.
func (i *InventoryItem) ThumbnailID() string {
	if len(i.ImageIDs) == 0 {
		return ""
	}
	return i.ImageIDs[0]
}

// AppendImages appends asset ids to the item's media list, preserving
// the existing ids and their order.
func (i *InventoryItem) AppendImages(assetIDs ...string) {
	i.ImageIDs = append(i.ImageIDs, assetIDs...)
}

// ItemPatch is a partial update to an inventory item. Nil fields are
// left untouched by the merge.
type ItemPatch struct {
	ProductID   *string `json:"product_id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Label       *string `json:"label,omitempty"`

	PurchasePrice   *int64 `json:"purchase_price,omitempty"`
	ListedPrice     *int64 `json:"listed_price,omitempty"`
	SoldAt          *int64 `json:"sold_at,omitempty"`
	DeliveryCharges *int64 `json:"delivery_charges,omitempty"`

	SaleStatus *SaleStatus `json:"sale_status,omitempty"`
	SaleType   *SaleType   `json:"sale_type,omitempty"`
	PaidTo     *string     `json:"paid_to,omitempty"`

	Customer *Customer `json:"customer,omitempty"`

	ImageIDs *[]string `json:"image_ids,omitempty"`
}

// Apply merges the patch into the item. Timestamps are not touched
// here; the store refreshes UpdatedAt on commit.
func (p *ItemPatch) Apply(item *InventoryItem) {
	if p.ProductID != nil {
		item.ProductID = *p.ProductID
	}
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Label != nil {
		item.Label = *p.Label
	}
	if p.PurchasePrice != nil {
		item.PurchasePrice = *p.PurchasePrice
	}
	if p.ListedPrice != nil {
		item.ListedPrice = *p.ListedPrice
	}
	if p.SoldAt != nil {
		item.SoldAt = *p.SoldAt
	}
	if p.DeliveryCharges != nil {
		item.DeliveryCharges = *p.DeliveryCharges
	}
	if p.SaleStatus != nil {
		item.SaleStatus = *p.SaleStatus
	}
	if p.SaleType != nil {
		item.SaleType = *p.SaleType
	}
	if p.PaidTo != nil {
		item.PaidTo = *p.PaidTo
	}
	if p.Customer != nil {
		item.Customer = *p.Customer
	}
	if p.ImageIDs != nil {
		item.ImageIDs = *p.ImageIDs
	}
}
