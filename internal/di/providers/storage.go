package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/stockroomapp/stockroom-server/internal/config"
	"github.com/stockroomapp/stockroom-server/internal/logger"
	"github.com/stockroomapp/stockroom-server/internal/media/assets"
)

// ProvideBlobStorage provides the on-disk asset blob storage.
func ProvideBlobStorage(i do.Injector) (*assets.BlobStorage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	blobs, err := assets.NewBlobStorage(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("blob storage: %w", err)
	}

	log.Info("Asset blob storage initialized", "path", blobs.BasePath())

	return blobs, nil
}

// ProvideAssetStore provides the asset store (metadata + blobs).
func ProvideAssetStore(i do.Injector) (*assets.Store, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*assets.BlobStorage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return assets.NewStore(storeHandle.Store, blobs, log.Logger), nil
}

// ProvideJanitor provides the orphaned-asset janitor.
func ProvideJanitor(i do.Injector) (*assets.Janitor, error) {
	assetStore := do.MustInvoke[*assets.Store](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return assets.NewJanitor(assetStore, storeHandle.Store, assets.DefaultSweepGrace, log.Logger), nil
}
