// Package staging implements the pre-persistence upload pipeline: it
// turns a batch of raw file selections into a reviewable, deduplicated
// set before anything touches the stores.
package staging

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stockroomapp/stockroom-server/internal/media/assets"
)

// FileState is the lifecycle state of a staged file.
type FileState string

// Staged file lifecycle states. Each file transitions
// pending → loaded or pending → errored, independently per file.
const (
	StatePending FileState = "pending"
	StateLoaded  FileState = "loaded"
	StateErrored FileState = "errored"
)

// RawFile is a raw file selection handed to the session. Open is
// called once, during materialization, on the session's behalf.
type RawFile struct {
	Name    string
	Size    int64
	ModTime time.Time
	Open    func() (io.ReadCloser, error)
}

// StagedFile is ephemeral session state for one selected file. It is
// never persisted; the session discards it (releasing its preview
// resource) on submit, cancel, or teardown.
type StagedFile struct {
	ID          string
	Name        string
	Size        int64
	ModTime     time.Time
	Fingerprint string
	Kind        domain.AssetKind
	Duplicate   bool
	State       FileState
	Err         error

	// Preview is the blurhash placeholder for image files, available
	// once the file reaches the loaded state.
	Preview string

	// Persisted marks an edit-mode preload backed by an already
	// persisted asset. Its underlying resource is owned by the asset
	// store, never by the session.
	Persisted   bool
	PersistedID string

	data []byte
}

// Data returns the materialized bytes, or nil before the file is
// loaded or after its resources are released.
func (f *StagedFile) Data() []byte {
	return f.data
}

// Session is one modal-scoped staging pipeline instance.
//
// Materialization runs concurrently per file, but every mutation of
// session state happens under the session mutex, so readers always
// observe a consistent snapshot (partial progress included).
type Session struct {
	ID     string
	logger *slog.Logger

	mu      sync.Mutex
	files   []*StagedFile
	byID    *SyncMap[string, *StagedFile]
	removal map[string]bool // ids with a pending removal confirmation
	closed  bool

	wg sync.WaitGroup
}

// NewSession creates an empty staging session.
func NewSession(logger *slog.Logger) *Session {
	return &Session{
		ID:      uuid.NewString(),
		logger:  logger,
		byID:    NewSyncMap[string, *StagedFile](),
		removal: make(map[string]bool),
	}
}

// AddFiles stages a batch of raw selections. Each file gets a
// fingerprint and a duplicate flag immediately; materialization
// (preview generation) starts in the background and completes in no
// guaranteed order. Returns the staged entries in selection order.
func (s *Session) AddFiles(raws ...RawFile) ([]*StagedFile, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.Validation("staging session is closed")
	}

	staged := make([]*StagedFile, 0, len(raws))
	for _, raw := range raws {
		f := &StagedFile{
			ID:          uuid.NewString(),
			Name:        raw.Name,
			Size:        raw.Size,
			ModTime:     raw.ModTime,
			Fingerprint: Fingerprint(raw.Name, raw.Size, raw.ModTime),
			State:       StatePending,
		}
		s.files = append(s.files, f)
		s.byID.Store(f.ID, f)
		staged = append(staged, f)
	}
	s.reflagDuplicates()
	s.mu.Unlock()

	for i, raw := range raws {
		f := staged[i]
		open := raw.Open
		s.wg.Go(func() {
			s.materialize(f, open)
		})
	}

	return staged, nil
}

// Preload registers an already-persisted asset as a loaded staged
// entry (edit mode). The session renders it alongside fresh
// selections but never uploads or releases it.
func (s *Session) Preload(asset *domain.Asset) *StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &StagedFile{
		ID:          uuid.NewString(),
		Name:        asset.Filename,
		Size:        asset.Size,
		Fingerprint: Fingerprint(asset.Filename, asset.Size, time.Time{}),
		Kind:        asset.Kind,
		State:       StateLoaded,
		Preview:     asset.BlurHash,
		Persisted:   true,
		PersistedID: asset.ID,
	}
	s.files = append(s.files, f)
	s.byID.Store(f.ID, f)
	s.reflagDuplicates()
	return f
}

// materialize reads and decodes one raw file, transitioning it to
// loaded or errored. Failures are isolated to the file.
func (s *Session) materialize(f *StagedFile, open func() (io.ReadCloser, error)) {
	fail := func(err error) {
		s.mu.Lock()
		f.State = StateErrored
		f.Err = errors.Wrap(err, errors.CodeMaterialization, "materialize "+f.Name)
		s.mu.Unlock()

		if s.logger != nil {
			s.logger.Debug("staged file errored", "session_id", s.ID, "name", f.Name, "error", err)
		}
	}

	kind, ok := assets.KindForFilename(f.Name)
	if !ok {
		fail(errors.Validationf("unsupported media type: %s", f.Name))
		return
	}

	r, err := open()
	if err != nil {
		fail(err)
		return
	}
	data, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		fail(err)
		return
	}

	// Images need a decodable preview to count as loaded.
	var preview string
	if kind == domain.AssetKindImage {
		preview, err = assets.ComputeBlurHash(data)
		if err != nil {
			fail(err)
			return
		}
	}

	s.mu.Lock()
	f.Kind = kind
	f.Preview = preview
	f.data = data
	f.State = StateLoaded
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("staged file loaded", "session_id", s.ID, "name", f.Name, "size", len(data))
	}
}

// Wait blocks until every in-flight materialization has settled.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Files returns a snapshot of the staged files in selection order.
func (s *Session) Files() []*StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]*StagedFile, len(s.files))
	copy(snapshot, s.files)
	return snapshot
}

// File returns a staged file by id.
func (s *Session) File(fileID string) (*StagedFile, bool) {
	return s.byID.Load(fileID)
}

// StateOf reports the current lifecycle state of a staged file. Safe
// to poll while materializations are in flight.
func (s *Session) StateOf(fileID string) (FileState, bool) {
	f, ok := s.byID.Load(fileID)
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.State, true
}

// Eligible returns the files that would be uploaded on submit: loaded,
// not removed, and not already persisted. Duplicates the user kept are
// still eligible and upload as separate assets.
func (s *Session) Eligible() []*StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	var eligible []*StagedFile
	for _, f := range s.files {
		if f.State == StateLoaded && !f.Persisted {
			eligible = append(eligible, f)
		}
	}
	return eligible
}

// RemoveDuplicates removes every file whose duplicate flag is set, in
// one step. Note this removes ALL flagged copies, not just the extras:
// two files sharing a fingerprint are both flagged, so both go.
// Returns the number of files removed.
func (s *Session) RemoveDuplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	kept := s.files[:0]
	for _, f := range s.files {
		if f.Duplicate {
			s.discard(f)
			removed++
			continue
		}
		kept = append(kept, f)
	}
	s.files = kept
	s.reflagDuplicates()

	if s.logger != nil && removed > 0 {
		s.logger.Debug("removed duplicate staged files", "session_id", s.ID, "count", removed)
	}
	return removed
}

// RequestRemoval marks a staged file for removal. Individual removal
// is destructive, so it only takes effect after ConfirmRemoval.
func (s *Session) RequestRemoval(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID.Load(fileID); !ok {
		return errors.NotFoundf("staged file %s not found", fileID)
	}
	s.removal[fileID] = true
	return nil
}

// CancelRemoval drops a pending removal request.
func (s *Session) CancelRemoval(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.removal, fileID)
}

// ConfirmRemoval removes a staged file previously marked via
// RequestRemoval, releasing its preview resource.
func (s *Session) ConfirmRemoval(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removal[fileID] {
		return errors.Validationf("removal of %s was not requested", fileID)
	}
	delete(s.removal, fileID)

	for i, f := range s.files {
		if f.ID == fileID {
			s.files = append(s.files[:i], s.files[i+1:]...)
			s.discard(f)
			s.reflagDuplicates()
			return nil
		}
	}
	return errors.NotFoundf("staged file %s not found", fileID)
}

// Close tears the session down: it waits for in-flight
// materializations, then releases preview resources of every file not
// backed by a persisted asset. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// Outside the lock: materialize goroutines need it to settle.
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if !f.Persisted {
			f.data = nil
			f.Preview = ""
		}
	}
}

// discard releases one staged file's resources and drops it from the
// id index. Resources of persisted preloads are owned by the asset
// store and left alone. Caller holds the session mutex.
func (s *Session) discard(f *StagedFile) {
	s.byID.Delete(f.ID)
	delete(s.removal, f.ID)
	if !f.Persisted {
		f.data = nil
		f.Preview = ""
	}
}

// reflagDuplicates recomputes every duplicate flag: a file is flagged
// when its fingerprint matches any other file currently staged.
// Caller holds the session mutex.
func (s *Session) reflagDuplicates() {
	counts := make(map[string]int, len(s.files))
	for _, f := range s.files {
		counts[f.Fingerprint]++
	}
	for _, f := range s.files {
		f.Duplicate = counts[f.Fingerprint] > 1
	}
}
