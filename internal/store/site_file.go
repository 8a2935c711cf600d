package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/dimitrije/folio-api/internal/models"
	"go.uber.org/zap"
)

// FileSiteInfoStore keeps the about/contact document in a JSON file next to
// the artworks file. Until the first update it serves the default document.
type FileSiteInfoStore struct {
	path      string
	opts      options
	writeFile writeFunc

	mu sync.Mutex
}

func NewFileSiteInfoStore(dataDir string, opts ...Option) *FileSiteInfoStore {
	return &FileSiteInfoStore{
		path:      filepath.Join(dataDir, SiteInfoFile),
		opts:      buildOptions(opts),
		writeFile: writeFileAtomic,
	}
}

func (s *FileSiteInfoStore) Get(ctx context.Context) (*models.SiteInfo, error) {
	info, err := s.read()
	if err != nil {
		s.opts.logger.Error("failed to read site info", zap.String("path", s.path), zap.Error(err))
		return nil, err
	}
	return &info, nil
}

func (s *FileSiteInfoStore) Update(ctx context.Context, patch models.SiteInfoPatch) (*models.SiteInfo, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return nil, err
	}
	next := applyPatch(current, patch)

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return nil, storageError("encode site info", err)
	}
	if err := s.writeFile(ctx, s.path, data); err != nil {
		s.opts.logger.Error("failed to persist site info", zap.Error(err))
		return nil, storageError("write site info", err)
	}

	s.opts.logger.Info("site info updated",
		zap.Bool("about", patch.About != nil),
		zap.Bool("contact", patch.Contact != nil),
	)
	return &next, nil
}

func (s *FileSiteInfoStore) read() (models.SiteInfo, error) {
	info, err := readJSONFile[models.SiteInfo](s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.DefaultSiteInfo(), nil
	}
	if err != nil {
		return models.SiteInfo{}, storageError("read site info", err)
	}
	return normalizeSiteInfo(info), nil
}
