package assets

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stockroomapp/stockroom-server/internal/id"
	"github.com/stockroomapp/stockroom-server/internal/store"
)

// Upload is a finalized file handed to the asset store for persistence.
type Upload struct {
	Filename string
	Data     []byte
}

// Store is the board-scoped asset store. It owns blob persistence and
// the asset metadata records; item records hold weak references into
// it via their image_ids.
//
// Asset metadata lives in the shared badger instance under the
// "asset:" prefix, indexed by owning board.
type Store struct {
	blobs  *BlobStorage
	meta   *store.Entity[domain.Asset]
	logger *slog.Logger
}

// NewStore creates an asset store on top of the shared persistence
// layer and the given blob storage root.
func NewStore(s *store.Store, blobs *BlobStorage, logger *slog.Logger) *Store {
	meta := store.NewEntity[domain.Asset](s, "asset:").
		WithIndex("board", func(a *domain.Asset) []string {
			return []string{a.BoardID}
		})

	return &Store{
		blobs:  blobs,
		meta:   meta,
		logger: logger,
	}
}

// Blobs exposes the underlying blob storage (for the integrity watcher).
func (s *Store) Blobs() *BlobStorage {
	return s.blobs
}

// AddAsset persists the upload's bytes and returns a fresh Asset with
// a retrievable locator. Fails with a validation error for unsupported
// media types and a storage error if the underlying medium rejects
// the write. Assets are never mutated after creation.
func (s *Store) AddAsset(ctx context.Context, boardID string, upload Upload) (*domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, ok := KindForFilename(upload.Filename)
	if !ok {
		return nil, errors.Validationf("unsupported media type: %s", upload.Filename)
	}

	assetID := id.MustGenerate("ast")
	ext := normalizedExt(upload.Filename)

	if err := s.blobs.Save(boardID, assetID, ext, upload.Data); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "persist asset bytes")
	}

	asset := &domain.Asset{
		ID:        assetID,
		BoardID:   boardID,
		Locator:   s.blobs.Locator(boardID, assetID, ext),
		Kind:      kind,
		Filename:  upload.Filename,
		Size:      int64(len(upload.Data)),
		CreatedAt: time.Now(),
	}

	// BlurHash is a nice-to-have placeholder; an undecodable image
	// still becomes a valid asset.
	if kind == domain.AssetKindImage {
		hash, err := ComputeBlurHash(upload.Data)
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("no blurhash for asset",
					"asset_id", assetID,
					"filename", upload.Filename,
					"error", err,
				)
			}
		} else {
			asset.BlurHash = hash
		}
	}

	if err := s.meta.Create(ctx, assetID, asset); err != nil {
		// Metadata write failed: remove the blob so the store doesn't
		// accumulate bytes it has no record of.
		_ = s.blobs.Delete(boardID, assetID, ext)
		return nil, errors.Wrap(err, errors.CodeStorage, "persist asset record")
	}

	if s.logger != nil {
		s.logger.Debug("asset persisted",
			"asset_id", assetID,
			"board_id", boardID,
			"kind", kind,
			"size", asset.Size,
		)
	}

	return asset, nil
}

// GetAsset retrieves asset metadata by id.
func (s *Store) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	asset, err := s.meta.Get(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFoundf("asset %s not found", assetID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "get asset")
	}
	return asset, nil
}

// Assets returns a restartable sequence of all assets for a board,
// used to resolve image_ids to locators.
func (s *Store) Assets(ctx context.Context, boardID string) iter.Seq2[*domain.Asset, error] {
	return s.meta.ListByIndex(ctx, "board", boardID)
}

// removeAsset deletes an asset's metadata record and blob. Only the
// janitor calls this; the core contract has no delete operation.
func (s *Store) removeAsset(ctx context.Context, asset *domain.Asset) error {
	if err := s.meta.Delete(ctx, asset.ID); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "delete asset record")
	}
	if err := s.blobs.Delete(asset.BoardID, asset.ID, normalizedExt(asset.Filename)); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "delete asset bytes")
	}
	return nil
}
