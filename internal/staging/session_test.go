package staging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
)

var testModTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// pngBytes encodes a small solid-color PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 60, G: 120, B: 180, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// rawFile builds a RawFile selection backed by in-memory bytes.
func rawFile(name string, modTime time.Time, data []byte) RawFile {
	return RawFile{
		Name:    name,
		Size:    int64(len(data)),
		ModTime: modTime,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// unreadableFile builds a RawFile whose open always fails.
func unreadableFile(name string) RawFile {
	return RawFile{
		Name:    name,
		Size:    42,
		ModTime: testModTime,
		Open: func() (io.ReadCloser, error) {
			return nil, fmt.Errorf("permission denied")
		},
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("chair.png", 100, testModTime)
	b := Fingerprint("chair.png", 100, testModTime)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, Fingerprint("chair.png", 101, testModTime))
	assert.NotEqual(t, a, Fingerprint("table.png", 100, testModTime))
	assert.NotEqual(t, a, Fingerprint("chair.png", 100, testModTime.Add(time.Second)))
}

func TestAddFiles_Materializes(t *testing.T) {
	s := NewSession(nil)
	img := pngBytes(t)

	staged, err := s.AddFiles(rawFile("chair.png", testModTime, img))
	require.NoError(t, err)
	require.Len(t, staged, 1)

	s.Wait()

	f := staged[0]
	assert.Equal(t, StateLoaded, f.State)
	assert.Equal(t, domain.AssetKindImage, f.Kind)
	assert.NotEmpty(t, f.Preview)
	assert.Equal(t, img, f.Data())
	assert.False(t, f.Duplicate)
}

func TestAddFiles_DuplicatesBothFlagged(t *testing.T) {
	s := NewSession(nil)
	img := pngBytes(t)

	// Identical (name, size, mtime) in one batch: both copies flagged.
	staged, err := s.AddFiles(
		rawFile("chair.png", testModTime, img),
		rawFile("chair.png", testModTime, img),
		rawFile("table.png", testModTime, img),
	)
	require.NoError(t, err)
	s.Wait()

	assert.True(t, staged[0].Duplicate)
	assert.True(t, staged[1].Duplicate)
	assert.False(t, staged[2].Duplicate)
}

func TestAddFiles_ErrorIsolatedPerFile(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(
		unreadableFile("broken.png"),
		rawFile("good.png", testModTime, pngBytes(t)),
	)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, StateErrored, staged[0].State)
	assert.ErrorIs(t, staged[0].Err, errors.ErrMaterialization)
	assert.Equal(t, StateLoaded, staged[1].State)
}

func TestAddFiles_UnsupportedTypeErrors(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(rawFile("notes.txt", testModTime, []byte("text")))
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, StateErrored, staged[0].State)
}

func TestAddFiles_UndecodableImageErrors(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(rawFile("fake.png", testModTime, []byte("not a png")))
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, StateErrored, staged[0].State)
	assert.ErrorIs(t, staged[0].Err, errors.ErrMaterialization)
}

func TestAddFiles_VideoLoadsWithoutPreview(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(rawFile("spin.mp4", testModTime, []byte{0x00, 0x01}))
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, StateLoaded, staged[0].State)
	assert.Equal(t, domain.AssetKindVideo, staged[0].Kind)
	assert.Empty(t, staged[0].Preview)
}

func TestEligible_OnlyLoadedFreshFiles(t *testing.T) {
	s := NewSession(nil)
	img := pngBytes(t)

	_, err := s.AddFiles(
		rawFile("good.png", testModTime, img),
		unreadableFile("broken.png"),
	)
	require.NoError(t, err)
	s.Preload(&domain.Asset{ID: "ast-1", Filename: "existing.jpg", Size: 10, Kind: domain.AssetKindImage})
	s.Wait()

	eligible := s.Eligible()
	require.Len(t, eligible, 1)
	assert.Equal(t, "good.png", eligible[0].Name)
}

func TestRemoveDuplicates_RemovesAllFlagged(t *testing.T) {
	s := NewSession(nil)
	img := pngBytes(t)

	// Fingerprint A twice, fingerprint B once.
	_, err := s.AddFiles(
		rawFile("a.png", testModTime, img),
		rawFile("a.png", testModTime, img),
		rawFile("b.png", testModTime, img),
	)
	require.NoError(t, err)
	s.Wait()

	removed := s.RemoveDuplicates()
	assert.Equal(t, 2, removed, "batch removal clears every flagged file, including the retained copy")

	files := s.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "b.png", files[0].Name)
}

func TestIndividualRemoval_RequiresConfirmation(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(rawFile("a.png", testModTime, pngBytes(t)))
	require.NoError(t, err)
	s.Wait()
	fileID := staged[0].ID

	// Confirm without a request is rejected.
	err = s.ConfirmRemoval(fileID)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Len(t, s.Files(), 1)

	require.NoError(t, s.RequestRemoval(fileID))
	require.NoError(t, s.ConfirmRemoval(fileID))
	assert.Empty(t, s.Files())
	assert.Nil(t, staged[0].Data(), "removal releases the preview resource")
}

func TestIndividualRemoval_Cancel(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(rawFile("a.png", testModTime, pngBytes(t)))
	require.NoError(t, err)
	s.Wait()

	require.NoError(t, s.RequestRemoval(staged[0].ID))
	s.CancelRemoval(staged[0].ID)

	err = s.ConfirmRemoval(staged[0].ID)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Len(t, s.Files(), 1)
}

func TestRemoval_ReflagsRemainingDuplicates(t *testing.T) {
	s := NewSession(nil)
	img := pngBytes(t)

	staged, err := s.AddFiles(
		rawFile("a.png", testModTime, img),
		rawFile("a.png", testModTime, img),
	)
	require.NoError(t, err)
	s.Wait()

	require.NoError(t, s.RequestRemoval(staged[0].ID))
	require.NoError(t, s.ConfirmRemoval(staged[0].ID))

	files := s.Files()
	require.Len(t, files, 1)
	assert.False(t, files[0].Duplicate, "sole survivor is no longer a duplicate")
}

func TestClose_ReleasesOnlyUnpersistedResources(t *testing.T) {
	s := NewSession(nil)

	staged, err := s.AddFiles(rawFile("fresh.png", testModTime, pngBytes(t)))
	require.NoError(t, err)
	pre := s.Preload(&domain.Asset{
		ID:       "ast-1",
		Filename: "existing.jpg",
		Size:     10,
		Kind:     domain.AssetKindImage,
		BlurHash: "LKO2?U%2Tw=w]~RBVZRi};RPxuwH",
	})
	s.Wait()

	s.Close()

	assert.Nil(t, staged[0].Data())
	assert.Empty(t, staged[0].Preview)
	// Persisted preload's preview is owned by the asset store.
	assert.NotEmpty(t, pre.Preview)

	// Session refuses new work once closed.
	_, err = s.AddFiles(rawFile("late.png", testModTime, pngBytes(t)))
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestClose_Idempotent(t *testing.T) {
	s := NewSession(nil)
	s.Close()
	s.Close()
}

func TestFilesSnapshot_PartialProgress(t *testing.T) {
	s := NewSession(nil)

	// A file whose open blocks until released keeps the batch partially
	// pending while the other file loads.
	release := make(chan struct{})
	blocked := RawFile{
		Name:    "slow.png",
		Size:    1,
		ModTime: testModTime,
		Open: func() (io.ReadCloser, error) {
			<-release
			return nil, fmt.Errorf("gone")
		},
	}

	staged, err := s.AddFiles(blocked, rawFile("fast.mp4", testModTime, []byte{1}))
	require.NoError(t, err)

	// Wait until the fast file settles.
	require.Eventually(t, func() bool {
		state, _ := s.StateOf(staged[1].ID)
		return state == StateLoaded
	}, time.Second, 5*time.Millisecond)

	state, ok := s.StateOf(staged[0].ID)
	require.True(t, ok)
	assert.Equal(t, StatePending, state, "completion order is independent per file")

	close(release)
	s.Wait()
}
