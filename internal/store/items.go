package store

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stockroomapp/stockroom-server/internal/id"
)

// CreateItem persists a new inventory item. The store assigns the id
// and both timestamps (created_at == updated_at at creation).
// Returns a validation error if the title is empty, and NotFound if
// the owning board does not exist.
func (s *Store) CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, errors.Validation("title is required")
	}

	boardExists, err := s.Boards.Exists(ctx, item.BoardID)
	if err != nil {
		return nil, storageErr(err, "check board")
	}
	if !boardExists {
		return nil, errors.NotFoundf("board %s not found", item.BoardID)
	}

	item.ID = id.MustGenerate("item")
	item.InitTimestamps()
	if item.SaleStatus == "" {
		item.SaleStatus = domain.SaleStatusAvailable
	}

	if err := s.Items.Create(ctx, item.ID, item); err != nil {
		return nil, storageErr(err, "create item")
	}

	s.indexItemAsync(item)
	return item, nil
}

// GetItem retrieves an item by id.
func (s *Store) GetItem(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	item, err := s.Items.Get(ctx, itemID)
	if errors.Is(err, ErrNotFound) {
		return nil, errors.NotFoundf("item %s not found", itemID)
	}
	if err != nil {
		return nil, storageErr(err, "get item")
	}
	return item, nil
}

// ListItems returns all items for a board. Insertion order is not
// meaningful; the consuming view applies its own ordering.
func (s *Store) ListItems(ctx context.Context, boardID string) iter.Seq2[*domain.InventoryItem, error] {
	return s.Items.ListByIndex(ctx, "board", boardID)
}

// UpdateItem merges the patch into an existing item and refreshes
// updated_at. Unspecified fields are left untouched.
// Returns NotFound if the id does not exist.
func (s *Store) UpdateItem(ctx context.Context, itemID string, patch *domain.ItemPatch) (*domain.InventoryItem, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	patch.Apply(item)

	if strings.TrimSpace(item.Title) == "" {
		return nil, errors.Validation("title is required")
	}

	// updated_at must strictly increase across updates, even when two
	// writes land within clock resolution.
	prev := item.UpdatedAt
	item.Touch()
	if !item.UpdatedAt.After(prev) {
		item.UpdatedAt = prev.Add(time.Nanosecond)
	}

	if err := s.Items.Update(ctx, itemID, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errors.NotFoundf("item %s not found", itemID)
		}
		return nil, storageErr(err, "update item")
	}

	s.indexItemAsync(item)
	return item, nil
}

// DeleteItem removes an item record. Returns NotFound if the id does
// not exist. Referenced assets are NOT cascade-deleted; orphan cleanup
// is the asset janitor's job.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	exists, err := s.Items.Exists(ctx, itemID)
	if err != nil {
		return storageErr(err, "check item")
	}
	if !exists {
		return errors.NotFoundf("item %s not found", itemID)
	}

	if err := s.Items.Delete(ctx, itemID); err != nil {
		return storageErr(err, "delete item")
	}

	s.deindexItemAsync(itemID)
	return nil
}

// indexItemAsync updates the search index in the background so store
// operations never block on indexing.
func (s *Store) indexItemAsync(item *domain.InventoryItem) {
	indexer := s.searchIndexer
	go func() {
		if err := indexer.IndexItem(context.Background(), item); err != nil && s.logger != nil {
			s.logger.Warn("failed to index item", "item_id", item.ID, "error", err)
		}
	}()
}

// deindexItemAsync removes an item from the search index in the background.
func (s *Store) deindexItemAsync(itemID string) {
	indexer := s.searchIndexer
	go func() {
		if err := indexer.DeleteItem(context.Background(), itemID); err != nil && s.logger != nil {
			s.logger.Warn("failed to deindex item", "item_id", itemID, "error", err)
		}
	}()
}
