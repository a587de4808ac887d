// Package service provides the business logic layer that keeps item
// records and their media referentially consistent.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stockroomapp/stockroom-server/internal/media/assets"
	"github.com/stockroomapp/stockroom-server/internal/staging"
	"github.com/stockroomapp/stockroom-server/internal/store"
	"github.com/stockroomapp/stockroom-server/internal/validation"
	"github.com/stockroomapp/stockroom-server/internal/view"
)

// ItemStore is the slice of the item store the sync service commits
// records through. *store.Store satisfies it.
type ItemStore interface {
	CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	GetItem(ctx context.Context, itemID string) (*domain.InventoryItem, error)
	UpdateItem(ctx context.Context, itemID string, patch *domain.ItemPatch) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, itemID string) error
}

// AssetStore is the slice of the asset store the sync service uploads
// through. *assets.Store satisfies it.
type AssetStore interface {
	AddAsset(ctx context.Context, boardID string, upload assets.Upload) (*domain.Asset, error)
}

// Interface satisfaction checks.
var (
	_ ItemStore  = (*store.Store)(nil)
	_ AssetStore = (*assets.Store)(nil)
)

// SyncService orchestrates item create/edit/delete against the two
// stores and reconciles the in-memory board view afterwards.
//
// Per operation: validate locally, fan the eligible file uploads out
// to the asset store, merge the new asset ids into the record's
// reference list, commit the record, then update the view. A single
// failed upload fails the whole operation before anything is
// committed; assets already uploaded in the same batch are not rolled
// back and are left for the janitor.
type SyncService struct {
	items     ItemStore
	assets    AssetStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(items ItemStore, assets AssetStore, validator *validation.Validator, logger *slog.Logger) *SyncService {
	return &SyncService{
		items:     items,
		assets:    assets,
		validator: validator,
		logger:    logger,
	}
}

// SubmitInput carries one create or edit operation.
type SubmitInput struct {
	BoardID string

	// ItemID selects the operation: empty means create, non-empty
	// means edit of that item.
	ItemID string

	// Fields is the full field data for a create.
	Fields domain.InventoryItem

	// Patch is the partial update for an edit.
	Patch *domain.ItemPatch

	// Session supplies the finalized staged file set. Only loaded
	// files are uploaded; duplicates the user kept upload as separate
	// assets. The session is closed on success.
	Session *staging.Session

	// View, when set, is reconciled on success and left untouched on
	// failure.
	View *view.BoardView

	// Callbacks for UI-facing result reporting. All optional.
	OnCreated func(*domain.InventoryItem)
	OnUpdated func(*domain.InventoryItem)
	OnFailed  func(error)
}

// Submit runs one create or edit operation to a terminal state. On
// success the committed item is returned, the view updated, and the
// staging session closed. On failure nothing is committed to the view
// and the error is surfaced for user-visible retry.
func (s *SyncService) Submit(ctx context.Context, input SubmitInput) (*domain.InventoryItem, error) {
	item, err := s.submit(ctx, input)
	if err != nil {
		if input.OnFailed != nil {
			input.OnFailed(err)
		}
		return nil, err
	}
	return item, nil
}

func (s *SyncService) submit(ctx context.Context, input SubmitInput) (*domain.InventoryItem, error) {
	isCreate := input.ItemID == ""

	var eligible []*staging.StagedFile
	if input.Session != nil {
		// Let in-flight materializations settle so the eligible set is
		// final.
		input.Session.Wait()
		eligible = input.Session.Eligible()
	}

	// Local validation, before any store call. The title is trimmed
	// first so a whitespace-only title fails here rather than at the
	// store, after uploads have already run.
	if isCreate {
		if len(eligible) == 0 {
			return nil, errors.Validation("an item cannot be created without media")
		}
		input.Fields.Title = strings.TrimSpace(input.Fields.Title)
		if err := s.validator.Validate(&input.Fields); err != nil {
			return nil, err
		}
	} else if input.Patch == nil {
		return nil, errors.Validation("edit submit requires a patch")
	}

	// Upload phase: fan out, then wait for the whole batch.
	uploaded, err := s.uploadAll(ctx, input.BoardID, eligible)
	if err != nil {
		return nil, err
	}

	newIDs := make([]string, len(uploaded))
	for i, asset := range uploaded {
		newIDs[i] = asset.ID
	}

	// Commit phase.
	var item *domain.InventoryItem
	if isCreate {
		fields := input.Fields
		fields.BoardID = input.BoardID
		fields.ImageIDs = newIDs
		item, err = s.items.CreateItem(ctx, &fields)
	} else {
		item, err = s.commitEdit(ctx, input.ItemID, input.Patch, newIDs)
	}
	if err != nil {
		// Uploaded assets from this batch stay behind as orphans; the
		// janitor collects them on its next sweep.
		if s.logger != nil && len(newIDs) > 0 {
			s.logger.Warn("commit failed after uploads, leaving orphaned assets",
				"board_id", input.BoardID,
				"asset_count", len(newIDs),
				"error", err,
			)
		}
		return nil, err
	}

	// View reconciliation, only after the store resolved.
	if input.View != nil {
		for _, asset := range uploaded {
			input.View.PutAsset(asset)
		}
		input.View.PutItem(item)
	}
	if input.Session != nil {
		input.Session.Close()
	}

	if s.logger != nil {
		s.logger.Info("item submitted",
			"item_id", item.ID,
			"board_id", item.BoardID,
			"created", isCreate,
			"new_assets", len(newIDs),
		)
	}

	if isCreate {
		if input.OnCreated != nil {
			input.OnCreated(item)
		}
	} else if input.OnUpdated != nil {
		input.OnUpdated(item)
	}

	return item, nil
}

// uploadAll persists every eligible file concurrently and waits for
// the full batch (fan-out/fan-in, not a pipeline). Results keep the
// staged selection order. Any single failure fails the batch.
func (s *SyncService) uploadAll(ctx context.Context, boardID string, eligible []*staging.StagedFile) ([]*domain.Asset, error) {
	if len(eligible) == 0 {
		return nil, nil
	}

	uploaded := make([]*domain.Asset, len(eligible))
	var mu sync.Mutex
	var uploadErrs []error
	var wg sync.WaitGroup

	for i, f := range eligible {
		wg.Go(func() {
			asset, err := s.assets.AddAsset(ctx, boardID, assets.Upload{
				Filename: f.Name,
				Data:     f.Data(),
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				uploadErrs = append(uploadErrs, err)
				return
			}
			uploaded[i] = asset
		})
	}
	wg.Wait()

	if len(uploadErrs) > 0 {
		return nil, errors.Wrap(errors.Join(uploadErrs...), errors.CodeStorage, "asset upload failed")
	}
	return uploaded, nil
}

// commitEdit merges the patch plus the freshly uploaded asset ids into
// the existing record. Existing image ids keep their order; new ids
// are appended last. The merge happens on a copy: the caller's patch
// stays untouched so a retried submit after a transient failure merges
// from the same inputs, not on top of the failed attempt.
func (s *SyncService) commitEdit(ctx context.Context, itemID string, patch *domain.ItemPatch, newIDs []string) (*domain.InventoryItem, error) {
	if len(newIDs) == 0 {
		return s.items.UpdateItem(ctx, itemID, patch)
	}

	existing, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	base := existing.ImageIDs
	if patch.ImageIDs != nil {
		// The patch may itself reorder or drop references; new
		// uploads still append after it.
		base = *patch.ImageIDs
	}
	merged := make([]string, 0, len(base)+len(newIDs))
	merged = append(merged, base...)
	merged = append(merged, newIDs...)

	p := *patch
	p.ImageIDs = &merged
	return s.items.UpdateItem(ctx, itemID, &p)
}

// Delete removes an item record and reconciles the view. Referenced
// assets are left in place for the janitor (no cascade delete).
func (s *SyncService) Delete(ctx context.Context, itemID string, boardView *view.BoardView) error {
	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	if boardView != nil {
		boardView.RemoveItem(itemID)
	}

	if s.logger != nil {
		s.logger.Info("item deleted", "item_id", itemID)
	}
	return nil
}
