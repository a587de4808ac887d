package providers

import (
	"github.com/samber/do/v2"

	"github.com/stockroomapp/stockroom-server/internal/export"
	"github.com/stockroomapp/stockroom-server/internal/integrity"
	"github.com/stockroomapp/stockroom-server/internal/logger"
	"github.com/stockroomapp/stockroom-server/internal/media/assets"
	"github.com/stockroomapp/stockroom-server/internal/service"
	"github.com/stockroomapp/stockroom-server/internal/validation"
)

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSyncService provides the item/asset sync service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	assetStore := do.MustInvoke[*assets.Store](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(storeHandle.Store, assetStore, validator, log.Logger), nil
}

// ProvideIntegrityChecker provides the image reference checker.
func ProvideIntegrityChecker(i do.Injector) (*integrity.Checker, error) {
	assetStore := do.MustInvoke[*assets.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return integrity.NewChecker(assetStore, log.Logger), nil
}

// ProvideCSVExporter provides the CSV exporter.
func ProvideCSVExporter(i do.Injector) (*export.CSVExporter, error) {
	return export.NewCSVExporter(), nil
}
