// Package store provides badger-backed persistence for boards and
// inventory items.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/stockroomapp/stockroom-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexItem(ctx context.Context, item *domain.InventoryItem) error
	DeleteItem(ctx context.Context, itemID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexItem is a no-op.
func (NoopSearchIndexer) IndexItem(context.Context, *domain.InventoryItem) error { return nil }

// DeleteItem is a no-op.
func (NoopSearchIndexer) DeleteItem(context.Context, string) error { return nil }

// Store wraps a Badger database instance.
//
// The badger instance is shared: the item store owns the "item:" and
// "board:" prefixes, and the asset store registers its own entity on
// the "asset:" prefix (see media/assets).
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Items  *Entity[domain.InventoryItem]
	Boards *Entity[domain.Board]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}

	store.initItems()
	store.initBoards()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// DB exposes the underlying badger instance so sibling stores (asset
// metadata) can register entities against the same database.
func (s *Store) DB() *badger.DB {
	return s.db
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// initItems initializes the Items entity, indexed by owning board.
func (s *Store) initItems() {
	s.Items = NewEntity[domain.InventoryItem](s, "item:").
		WithIndex("board", func(i *domain.InventoryItem) []string {
			return []string{i.BoardID}
		})
}

// initBoards initializes the Boards entity.
func (s *Store) initBoards() {
	s.Boards = NewEntity[domain.Board](s, "board:")
}
