package assets

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
)

// DefaultSweepGrace is how long an unreferenced asset survives before
// a sweep may collect it. A submit uploads its batch before the item
// commit, so freshly uploaded assets are briefly unreferenced; the
// grace window keeps a sweep that overlaps that gap from deleting
// them out from under the commit.
const DefaultSweepGrace = 30 * time.Minute

// ItemLister is the slice of the item store the janitor needs: the
// ability to walk a board's items and read their image references.
type ItemLister interface {
	ListItems(ctx context.Context, boardID string) iter.Seq2[*domain.InventoryItem, error]
}

// Janitor garbage-collects orphaned assets: assets no item on the
// board references. Orphans appear when an upload batch partially
// succeeds before a failed submit, or when an item is deleted (the
// item store never cascade-deletes media).
//
// Sweeps run on demand, never automatically mid-operation, and skip
// assets younger than the grace window.
type Janitor struct {
	assets *Store
	items  ItemLister
	grace  time.Duration
	logger *slog.Logger
}

// NewJanitor creates a janitor over the given stores. Unreferenced
// assets created within the grace window are left alone.
func NewJanitor(assets *Store, items ItemLister, grace time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		assets: assets,
		items:  items,
		grace:  grace,
		logger: logger,
	}
}

// Sweep removes every asset on the board that no item references and
// that is older than the grace window. Returns the number of assets
// removed. Mark-and-sweep: first gather all referenced ids, then walk
// the asset sequence and delete the unreferenced remainder.
func (j *Janitor) Sweep(ctx context.Context, boardID string) (int, error) {
	cutoff := time.Now().Add(-j.grace)
	referenced := make(map[string]bool)
	for item, err := range j.items.ListItems(ctx, boardID) {
		if err != nil {
			return 0, err
		}
		for _, assetID := range item.ImageIDs {
			referenced[assetID] = true
		}
	}

	var orphans []*domain.Asset
	for asset, err := range j.assets.Assets(ctx, boardID) {
		if err != nil {
			return 0, err
		}
		if !referenced[asset.ID] && asset.CreatedAt.Before(cutoff) {
			orphans = append(orphans, asset)
		}
	}

	removed := 0
	for _, asset := range orphans {
		if err := j.assets.removeAsset(ctx, asset); err != nil {
			if j.logger != nil {
				j.logger.Warn("failed to remove orphaned asset",
					"asset_id", asset.ID,
					"board_id", boardID,
					"error", err,
				)
			}
			continue
		}
		removed++
	}

	if j.logger != nil && removed > 0 {
		j.logger.Info("swept orphaned assets",
			"board_id", boardID,
			"removed", removed,
		)
	}

	return removed, nil
}
