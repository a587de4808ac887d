// Package view holds the in-memory per-board collections the UI
// renders from. The state is explicit and injected, with a clear
// lifecycle: Open populates it from the stores when a board is
// entered, Close tears it down when the board is left.
package view

import (
	"context"
	"iter"
	"sort"
	"sync"

	"github.com/stockroomapp/stockroom-server/internal/domain"
)

// BoardView is the reconciled in-memory state for one open board.
//
// Only the sync controller mutates it, and only after a store
// operation has resolved (single-writer-per-resolution). The mutex
// exists so UI readers can snapshot concurrently with that writer.
type BoardView struct {
	boardID string

	mu     sync.RWMutex
	items  map[string]*domain.InventoryItem
	assets map[string]*domain.Asset
	opened bool
}

// NewBoardView creates an empty, unopened view for a board.
func NewBoardView(boardID string) *BoardView {
	return &BoardView{
		boardID: boardID,
		items:   make(map[string]*domain.InventoryItem),
		assets:  make(map[string]*domain.Asset),
	}
}

// BoardID returns the board this view renders.
func (v *BoardView) BoardID() string {
	return v.boardID
}

// Open populates the view from the given store sequences.
func (v *BoardView) Open(ctx context.Context, items iter.Seq2[*domain.InventoryItem, error], assets iter.Seq2[*domain.Asset, error]) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	clear(v.items)
	clear(v.assets)

	for item, err := range items {
		if err != nil {
			return err
		}
		v.items[item.ID] = item
	}
	for asset, err := range assets {
		if err != nil {
			return err
		}
		v.assets[asset.ID] = asset
	}

	v.opened = true
	return nil
}

// Close discards the view state.
func (v *BoardView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	clear(v.items)
	clear(v.assets)
	v.opened = false
}

// Opened reports whether the view currently holds board state.
func (v *BoardView) Opened() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.opened
}

// PutItem inserts or replaces an item in the view.
func (v *BoardView) PutItem(item *domain.InventoryItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items[item.ID] = item
}

// RemoveItem drops an item from the view.
func (v *BoardView) RemoveItem(itemID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.items, itemID)
}

// PutAsset inserts an asset into the view.
func (v *BoardView) PutAsset(asset *domain.Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.assets[asset.ID] = asset
}

// Item returns an item by id.
func (v *BoardView) Item(itemID string) (*domain.InventoryItem, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	item, ok := v.items[itemID]
	return item, ok
}

// Asset returns an asset by id.
func (v *BoardView) Asset(assetID string) (*domain.Asset, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	asset, ok := v.assets[assetID]
	return asset, ok
}

// Items returns a snapshot of the view's items, newest first.
func (v *BoardView) Items() []*domain.InventoryItem {
	v.mu.RLock()
	defer v.mu.RUnlock()

	items := make([]*domain.InventoryItem, 0, len(v.items))
	for _, item := range v.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// Assets returns a snapshot of the view's assets.
func (v *BoardView) Assets() []*domain.Asset {
	v.mu.RLock()
	defer v.mu.RUnlock()

	assets := make([]*domain.Asset, 0, len(v.assets))
	for _, asset := range v.assets {
		assets = append(assets, asset)
	}
	return assets
}

// Len returns the number of items in the view.
func (v *BoardView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}
