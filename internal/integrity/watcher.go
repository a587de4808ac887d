package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// BlobEvent reports an asset blob that disappeared from disk while its
// metadata record may still exist.
type BlobEvent struct {
	// Path is the removed file's path under the asset root.
	Path string

	// AssetID is the id recovered from the filename
	// ({assetID}{ext} inside a board directory).
	AssetID string

	// BoardID is the name of the board directory the blob lived in.
	BoardID string
}

// Watcher monitors the asset directory for blobs removed behind the
// store's back. Asset blobs are written once and never modified, so
// only removals and renames are interesting.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	root    string

	events   chan BlobEvent
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the asset root directory
// (the blob storage's base path). Board subdirectories are watched as
// they appear.
func NewWatcher(root string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		logger:  logger,
		root:    filepath.Clean(root),
		events:  make(chan BlobEvent, 100),
	}

	if err := w.watchTree(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// watchTree adds the root and every existing board directory.
func (w *Watcher) watchTree(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if w.logger != nil {
				w.logger.Warn("failed to access path", "path", p, "error", err)
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			if w.logger != nil {
				w.logger.Error("failed to add watch", "path", p, "error", err)
			}
		}
		return nil
	})
}

// Events returns the channel for removed-blob events.
func (w *Watcher) Events() <-chan BlobEvent {
	return w.events
}

// Start processes filesystem events until the context is cancelled.
// It blocks; run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.loop(ctx)

	<-ctx.Done()
	return nil
}

// Stop stops the watcher and releases resources. Safe to call more
// than once; later calls are no-ops.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Error("watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// New board directory: start watching it.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil && w.logger != nil {
				w.logger.Warn("failed to watch new board directory",
					"path", event.Name, "error", err)
			}
		}
		return
	}

	if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	assetID, boardID, ok := w.parseBlobPath(event.Name)
	if !ok {
		return
	}

	if w.logger != nil {
		w.logger.Warn("asset blob removed from disk",
			"asset_id", assetID,
			"board_id", boardID,
			"path", event.Name,
		)
	}

	select {
	case w.events <- BlobEvent{Path: event.Name, AssetID: assetID, BoardID: boardID}:
	default:
		// Channel full: drop rather than block the event loop. The
		// next integrity check will catch the reference anyway.
	}
}

// parseBlobPath recovers asset and board ids from
// {root}/{boardID}/{assetID}{ext}.
func (w *Watcher) parseBlobPath(path string) (assetID, boardID string, ok bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", "", false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 {
		return "", "", false
	}

	boardID = parts[0]
	name := parts[1]
	assetID = strings.TrimSuffix(name, filepath.Ext(name))
	if assetID == "" {
		return "", "", false
	}
	return assetID, boardID, true
}
