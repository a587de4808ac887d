// Package di provides dependency injection configuration for the Stockroom server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/stockroomapp/stockroom-server/internal/config"
	"github.com/stockroomapp/stockroom-server/internal/di/providers"
	"github.com/stockroomapp/stockroom-server/internal/export"
	"github.com/stockroomapp/stockroom-server/internal/integrity"
	"github.com/stockroomapp/stockroom-server/internal/logger"
	"github.com/stockroomapp/stockroom-server/internal/media/assets"
	"github.com/stockroomapp/stockroom-server/internal/service"
	"github.com/stockroomapp/stockroom-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideBlobStorage)
	do.Provide(injector, providers.ProvideAssetStore)
	do.Provide(injector, providers.ProvideJanitor)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideIntegrityChecker)
	do.Provide(injector, providers.ProvideCSVExporter)

	// Workers
	do.Provide(injector, providers.ProvideIntegrityWatcher)

	return injector
}

// Bootstrap initializes all services and returns the container for
// lifecycle management. This triggers lazy initialization of all core
// services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*assets.BlobStorage](injector)
	_ = do.MustInvoke[*assets.Store](injector)
	_ = do.MustInvoke[*assets.Janitor](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.SyncService](injector)
	_ = do.MustInvoke[*integrity.Checker](injector)
	_ = do.MustInvoke[*export.CSVExporter](injector)
	_ = do.MustInvoke[*providers.IntegrityWatcherHandle](injector)

	// Backfill the index when empty but the store has items.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
