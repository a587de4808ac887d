// Package assets provides the content-addressed media store: binary
// blobs on the filesystem plus metadata records in badger, scoped per
// board.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// BlobStorage manages asset filesystem operations.
// Thread-safe for concurrent operations.
type BlobStorage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewBlobStorage creates a BlobStorage rooted at {basePath}/assets/.
func NewBlobStorage(basePath string) (*BlobStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "assets")
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	return &BlobStorage{basePath: storagePath}, nil
}

// BasePath returns the storage root. The integrity watcher observes it.
func (s *BlobStorage) BasePath() string {
	return s.basePath
}

// Save stores asset bytes for a board.
// Layout: {base}/{boardID}/{assetID}{ext}.
func (s *BlobStorage) Save(boardID, assetID, ext string, data []byte) error {
	if boardID == "" || assetID == "" {
		return fmt.Errorf("board and asset IDs cannot be empty")
	}
	if len(data) == 0 {
		return fmt.Errorf("asset data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, boardID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}

	if err := os.WriteFile(s.path(boardID, assetID, ext), data, 0644); err != nil {
		return fmt.Errorf("failed to write asset file: %w", err)
	}

	return nil
}

// Get retrieves asset bytes.
func (s *BlobStorage) Get(boardID, assetID, ext string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(boardID, assetID, ext))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("asset not found for %s: %w", assetID, err)
		}
		return nil, fmt.Errorf("failed to read asset file: %w", err)
	}

	return data, nil
}

// Exists checks if an asset blob exists.
func (s *BlobStorage) Exists(boardID, assetID, ext string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(boardID, assetID, ext))
	return err == nil
}

// Delete removes an asset blob. Already deleted is not an error.
func (s *BlobStorage) Delete(boardID, assetID, ext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(boardID, assetID, ext)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete asset file: %w", err)
	}

	return nil
}

// Locator returns the URL-like handle clients use to display the asset.
func (s *BlobStorage) Locator(boardID, assetID, ext string) string {
	return "file://" + filepath.ToSlash(s.path(boardID, assetID, ext))
}

// path returns the full filesystem path for an asset blob.
func (s *BlobStorage) path(boardID, assetID, ext string) string {
	return filepath.Join(s.basePath, boardID, assetID+ext)
}
