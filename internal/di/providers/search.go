package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/stockroomapp/stockroom-server/internal/config"
	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/logger"
	"github.com/stockroomapp/stockroom-server/internal/search"
	"github.com/stockroomapp/stockroom-server/internal/store"
)

// Index satisfies the store's indexer contract.
var _ store.SearchIndexer = (*search.Index)(nil)

// SearchIndexHandle wraps the search index with shutdown capability.
// When search is disabled by config the handle carries a nil index.
type SearchIndexHandle struct {
	*search.Index
}

// Enabled reports whether the index exists.
func (h *SearchIndexHandle) Enabled() bool {
	return h.Index != nil
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index and wires it to
// the store for automatic indexing on item writes.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search index disabled by config")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	storeHandle := do.MustInvoke[*StoreHandle](i)
	storeHandle.SetSearchIndexer(index)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerSearchReindexIfNeeded backfills the index when it is empty
// but the store has items (fresh index, mapping version bump, or a
// recovered database). Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	if !indexHandle.Enabled() {
		return
	}
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	var items []*domain.InventoryItem
	for item, err := range storeHandle.Items.List(ctx) {
		if err != nil {
			log.Warn("skipping unreadable item during reindex check", "error", err)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return
	}

	log.Info("Search index is empty but items exist, triggering initial reindex",
		"item_count", len(items),
	)

	go func() {
		if err := indexHandle.IndexItems(items); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := indexHandle.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
