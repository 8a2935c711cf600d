package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dimitrije/folio-api/internal/models"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	ArtworksFile = "artworks.json"
	SiteInfoFile = "site-info.json"
)

type writeFunc func(ctx context.Context, path string, data []byte) error

// FileStore keeps the collection as a JSON array in a single file.
//
// While Watch is running, reads are served from an in-memory snapshot that is
// refreshed after every successful write and dropped when the file changes
// underneath us. Without a watcher every read goes to disk. Mutations always
// start from the file on disk.
type FileStore struct {
	path      string
	opts      options
	writeFile writeFunc

	mu       sync.Mutex
	snapshot atomic.Pointer[[]models.Artwork]
	watching atomic.Bool
}

func NewFileStore(dataDir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, storageError("create data dir", err)
	}
	return &FileStore{
		path:      filepath.Join(dataDir, ArtworksFile),
		opts:      buildOptions(opts),
		writeFile: writeFileAtomic,
	}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) List(ctx context.Context) ([]models.Artwork, error) {
	if s.watching.Load() {
		if snap := s.snapshot.Load(); snap != nil {
			return cloneArtworks(*snap), nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	artworks, err := s.loadLocked(ctx)
	if err != nil {
		s.opts.logger.Error("failed to read artworks", zap.String("path", s.path), zap.Error(err))
		return nil, err
	}
	s.snapshot.Store(&artworks)

	s.opts.logger.Debug("artworks loaded from file", zap.Int("count", len(artworks)))
	return cloneArtworks(artworks), nil
}

func (s *FileStore) Create(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	artwork := newArtwork(in, s.opts.now())
	next := make([]models.Artwork, 0, len(current)+1)
	next = append(next, artwork)
	next = append(next, current...)

	if err := s.persistLocked(ctx, next); err != nil {
		s.opts.logger.Error("failed to persist new artwork", zap.String("title", in.Title), zap.Error(err))
		return nil, err
	}

	s.opts.logger.Info("artwork created",
		zap.String("id", artwork.ID),
		zap.String("title", artwork.Title),
		zap.Int("count", len(next)),
	)
	return &artwork, nil
}

func (s *FileStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	next := make([]models.Artwork, 0, len(current))
	for _, a := range current {
		if a.ID != id {
			next = append(next, a)
		}
	}
	if len(next) == len(current) {
		return ErrNotFound
	}

	if err := s.persistLocked(ctx, next); err != nil {
		s.opts.logger.Error("failed to persist artwork deletion", zap.String("id", id), zap.Error(err))
		return err
	}

	s.opts.logger.Info("artwork deleted", zap.String("id", id), zap.Int("count", len(next)))
	return nil
}

// Watch drops the read snapshot whenever the artworks file is replaced or
// edited by someone else. It blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic replacement swaps the file's inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	// Anything read before the watcher was registered may already be stale.
	s.invalidate()
	s.watching.Store(true)
	defer s.watching.Store(false)

	name := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.invalidate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.opts.logger.Warn("artworks watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) invalidate() {
	s.mu.Lock()
	s.snapshot.Store(nil)
	s.mu.Unlock()
}

// loadLocked reads the collection from disk, writing the seed collection
// first if the file has never existed. Caller holds s.mu.
func (s *FileStore) loadLocked(ctx context.Context) ([]models.Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	artworks, err := readJSONFile[[]models.Artwork](s.path)
	if errors.Is(err, fs.ErrNotExist) {
		seed := seedAt(s.opts.seed, s.opts.now())
		if err := s.persistLocked(ctx, seed); err != nil {
			return nil, err
		}
		s.opts.logger.Info("initialized artworks file with seed collection",
			zap.String("path", s.path), zap.Int("count", len(seed)))
		return seed, nil
	}
	if err != nil {
		return nil, storageError("read artworks", err)
	}
	if artworks == nil {
		artworks = []models.Artwork{}
	}
	return artworks, nil
}

// persistLocked replaces the file and refreshes the snapshot. On failure the
// file and the snapshot are left untouched.
func (s *FileStore) persistLocked(ctx context.Context, artworks []models.Artwork) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	data, err := json.MarshalIndent(artworks, "", "  ")
	if err != nil {
		return storageError("encode artworks", err)
	}
	if err := s.writeFile(ctx, s.path, data); err != nil {
		return storageError("write artworks", err)
	}
	s.snapshot.Store(&artworks)
	return nil
}

func readJSONFile[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it over path, so readers see either the old or the new
// content. The rename is skipped once ctx is done; the write and fsync
// themselves are not interruptible.
func writeFileAtomic(ctx context.Context, path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}

	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
