// Package integrity verifies the weak references between item records
// and stored assets: image ids are checked at read time, and the asset
// directory is watched for blobs disappearing out from under the store.
package integrity

import (
	"context"
	"log/slog"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
)

// AssetResolver resolves asset ids to metadata. *assets.Store
// satisfies it.
type AssetResolver interface {
	GetAsset(ctx context.Context, assetID string) (*domain.Asset, error)
}

// Report is the outcome of checking one item's image references.
type Report struct {
	ItemID string

	// Resolved holds the assets for the ids that checked out, in the
	// item's reference order.
	Resolved []*domain.Asset

	// Missing lists image ids with no backing asset. References are
	// weak: readers render the item without these, they are never an
	// error.
	Missing []string

	// ForeignBoard lists image ids that resolve to an asset belonging
	// to a different board. This should not happen and indicates a
	// store-level bug or hand-edited data.
	ForeignBoard []string
}

// Clean reports whether every reference resolved to an asset of the
// item's own board.
func (r *Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.ForeignBoard) == 0
}

// Checker verifies item image references against the asset store.
type Checker struct {
	assets AssetResolver
	logger *slog.Logger
}

// NewChecker creates a checker.
func NewChecker(assets AssetResolver, logger *slog.Logger) *Checker {
	return &Checker{assets: assets, logger: logger}
}

// CheckItem resolves every image id on the item and classifies the
// failures. Only storage-level errors abort the check; a missing asset
// is part of the report.
func (c *Checker) CheckItem(ctx context.Context, item *domain.InventoryItem) (*Report, error) {
	report := &Report{ItemID: item.ID}

	for _, assetID := range item.ImageIDs {
		asset, err := c.assets.GetAsset(ctx, assetID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				report.Missing = append(report.Missing, assetID)
				continue
			}
			return nil, err
		}
		if asset.BoardID != item.BoardID {
			report.ForeignBoard = append(report.ForeignBoard, assetID)
			continue
		}
		report.Resolved = append(report.Resolved, asset)
	}

	if !report.Clean() && c.logger != nil {
		c.logger.Warn("item has unresolvable image references",
			"item_id", item.ID,
			"missing", len(report.Missing),
			"foreign_board", len(report.ForeignBoard),
		)
	}

	return report, nil
}

// ResolveImages returns the item's renderable assets in reference
// order, silently skipping dangling ids. This is the read-path helper:
// weak references degrade, they don't fail.
func (c *Checker) ResolveImages(ctx context.Context, item *domain.InventoryItem) ([]*domain.Asset, error) {
	report, err := c.CheckItem(ctx, item)
	if err != nil {
		return nil, err
	}
	return report.Resolved, nil
}
