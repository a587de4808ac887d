package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/stockroomapp/stockroom-server/internal/config"
	"github.com/stockroomapp/stockroom-server/internal/integrity"
	"github.com/stockroomapp/stockroom-server/internal/logger"
	"github.com/stockroomapp/stockroom-server/internal/media/assets"
)

// IntegrityWatcherHandle wraps the asset directory watcher with its
// lifecycle. When watching is disabled by config the handle carries a
// nil watcher.
type IntegrityWatcherHandle struct {
	*integrity.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *IntegrityWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideIntegrityWatcher provides the running asset directory watcher.
// Reported events are logged by the watcher itself; readers fall back
// to the reference checker regardless.
func ProvideIntegrityWatcher(i do.Injector) (*IntegrityWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Assets.WatchIntegrity {
		log.Info("Asset integrity watcher disabled by config")
		return &IntegrityWatcherHandle{}, nil
	}

	blobs := do.MustInvoke[*assets.BlobStorage](i)

	watcher, err := integrity.NewWatcher(blobs.BasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = watcher.Start(ctx)
	}()

	// Drain events; the watcher logs each removal as it happens.
	go func() {
		for range watcher.Events() {
		}
	}()

	log.Info("Asset integrity watcher started", "path", blobs.BasePath())

	return &IntegrityWatcherHandle{
		Watcher: watcher,
		cancel:  cancel,
	}, nil
}
