package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stockroomapp/stockroom-server/internal/store"
)

// setupAssetStore creates an asset store sharing a temp badger instance.
func setupAssetStore(t *testing.T) (*Store, *store.Store) {
	t.Helper()

	base, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, base.Close())
	})

	blobs, err := NewBlobStorage(t.TempDir())
	require.NoError(t, err)

	return NewStore(base, blobs, nil), base
}

// pngBytes encodes a small solid-color PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAddAsset_Image(t *testing.T) {
	s, _ := setupAssetStore(t)
	ctx := context.Background()

	asset, err := s.AddAsset(ctx, "brd-1", Upload{Filename: "chair.png", Data: pngBytes(t)})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.ID, "ast-"))
	assert.Equal(t, "brd-1", asset.BoardID)
	assert.Equal(t, domain.AssetKindImage, asset.Kind)
	assert.True(t, strings.HasPrefix(asset.Locator, "file://"))
	assert.NotEmpty(t, asset.BlurHash)
	assert.Positive(t, asset.Size)

	// Bytes retrievable via the locator's backing storage.
	data, err := s.Blobs().Get("brd-1", asset.ID, ".png")
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)
}

func TestAddAsset_Video(t *testing.T) {
	s, _ := setupAssetStore(t)

	asset, err := s.AddAsset(context.Background(), "brd-1", Upload{
		Filename: "spin.mp4",
		Data:     []byte{0x00, 0x00, 0x00, 0x18},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetKindVideo, asset.Kind)
	assert.Empty(t, asset.BlurHash)
}

func TestAddAsset_UnsupportedType(t *testing.T) {
	s, _ := setupAssetStore(t)

	_, err := s.AddAsset(context.Background(), "brd-1", Upload{
		Filename: "notes.txt",
		Data:     []byte("hello"),
	})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestAddAsset_UndecodableImageStillPersists(t *testing.T) {
	s, _ := setupAssetStore(t)

	// Garbage bytes with an image extension persist without a blurhash.
	asset, err := s.AddAsset(context.Background(), "brd-1", Upload{
		Filename: "broken.jpg",
		Data:     []byte("not an image"),
	})
	require.NoError(t, err)
	assert.Empty(t, asset.BlurHash)
}

func TestGetAsset_NotFound(t *testing.T) {
	s, _ := setupAssetStore(t)

	_, err := s.GetAsset(context.Background(), "ast-nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestAssets_ScopedToBoard(t *testing.T) {
	s, _ := setupAssetStore(t)
	ctx := context.Background()
	img := pngBytes(t)

	for range 2 {
		_, err := s.AddAsset(ctx, "brd-1", Upload{Filename: "a.png", Data: img})
		require.NoError(t, err)
	}
	_, err := s.AddAsset(ctx, "brd-2", Upload{Filename: "b.png", Data: img})
	require.NoError(t, err)

	count := 0
	for asset, err := range s.Assets(ctx, "brd-1") {
		require.NoError(t, err)
		assert.Equal(t, "brd-1", asset.BoardID)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestJanitor_Sweep(t *testing.T) {
	s, base := setupAssetStore(t)
	ctx := context.Background()
	img := pngBytes(t)

	board, err := base.CreateBoard(ctx, &domain.Board{Name: "Shop"})
	require.NoError(t, err)

	kept, err := s.AddAsset(ctx, board.ID, Upload{Filename: "kept.png", Data: img})
	require.NoError(t, err)
	orphan, err := s.AddAsset(ctx, board.ID, Upload{Filename: "orphan.png", Data: img})
	require.NoError(t, err)

	_, err = base.CreateItem(ctx, &domain.InventoryItem{
		BoardID:  board.ID,
		Title:    "Chair",
		ImageIDs: []string{kept.ID},
	})
	require.NoError(t, err)

	janitor := NewJanitor(s, base, 0, nil)
	removed, err := janitor.Sweep(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.GetAsset(ctx, kept.ID)
	assert.NoError(t, err)
	_, err = s.GetAsset(ctx, orphan.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.False(t, s.Blobs().Exists(board.ID, orphan.ID, ".png"))
}

func TestJanitor_SweepSparesAssetsWithinGrace(t *testing.T) {
	s, base := setupAssetStore(t)
	ctx := context.Background()
	img := pngBytes(t)

	board, err := base.CreateBoard(ctx, &domain.Board{Name: "Shop"})
	require.NoError(t, err)

	// Unreferenced but freshly uploaded: a submit between its upload
	// and item commit looks exactly like this.
	fresh, err := s.AddAsset(ctx, board.ID, Upload{Filename: "fresh.png", Data: img})
	require.NoError(t, err)

	janitor := NewJanitor(s, base, time.Hour, nil)
	removed, err := janitor.Sweep(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, err = s.GetAsset(ctx, fresh.ID)
	assert.NoError(t, err)
	assert.True(t, s.Blobs().Exists(board.ID, fresh.ID, ".png"))
}

func TestKindForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     domain.AssetKind
		ok       bool
	}{
		{"photo.JPG", domain.AssetKindImage, true},
		{"photo.webp", domain.AssetKindImage, true},
		{"clip.mp4", domain.AssetKindVideo, true},
		{"clip.MOV", domain.AssetKindVideo, true},
		{"doc.pdf", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		kind, ok := KindForFilename(tt.filename)
		assert.Equal(t, tt.ok, ok, tt.filename)
		assert.Equal(t, tt.want, kind, tt.filename)
	}
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(pngBytes(t))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = ComputeBlurHash([]byte("garbage"))
	assert.Error(t, err)
}
