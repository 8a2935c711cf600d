package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dimitrije/folio-api/internal/database"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresStore keeps the collection in the artworks table. Tables are
// created by database.Migrate.
type PostgresStore struct {
	db     *database.DB
	opts   options
	mu     sync.Mutex
	seeded atomic.Bool
}

func NewPostgresStore(db *database.DB, opts ...Option) *PostgresStore {
	return &PostgresStore{db: db, opts: buildOptions(opts)}
}

// SiteInfo returns a site info store sharing this pool.
func (s *PostgresStore) SiteInfo() *PostgresSiteInfoStore {
	return &PostgresSiteInfoStore{db: s.db, opts: s.opts}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, title, category, description, image, created_at
		FROM artworks
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, storageError("list artworks", err)
	}
	defer rows.Close()

	artworks := []models.Artwork{}
	for rows.Next() {
		var a models.Artwork
		if err := rows.Scan(&a.ID, &a.Title, &a.Category, &a.Description, &a.Image, &a.CreatedAt); err != nil {
			return nil, storageError("scan artwork", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list artworks", err)
	}
	return artworks, nil
}

func (s *PostgresStore) Create(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	artwork := newArtwork(in, s.opts.now())
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO artworks (id, title, category, description, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, artwork.ID, artwork.Title, artwork.Category, artwork.Description, artwork.Image, artwork.CreatedAt)
	if err != nil {
		s.opts.logger.Error("failed to insert artwork", zap.String("title", in.Title), zap.Error(err))
		return nil, storageError("insert artwork", err)
	}

	s.opts.logger.Info("artwork created", zap.String("id", artwork.ID), zap.String("title", artwork.Title))
	return &artwork, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM artworks WHERE id = $1`, id)
	if err != nil {
		s.opts.logger.Error("failed to delete artwork", zap.String("id", id), zap.Error(err))
		return storageError("delete artwork", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.opts.logger.Info("artwork deleted", zap.String("id", id))
	return nil
}

func (s *PostgresStore) ensureSeeded(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded.Load() {
		return nil
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return storageError("begin seed", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The primary key on store_state lets exactly one instance win the seed.
	tag, err := tx.Exec(ctx, `
		INSERT INTO store_state (key) VALUES ($1)
		ON CONFLICT (key) DO NOTHING
	`, artworksSeedKey)
	if err != nil {
		return storageError("mark seed", err)
	}

	seeding := tag.RowsAffected() == 1
	if seeding {
		seed := seedAt(s.opts.seed, s.opts.now())
		for i := len(seed) - 1; i >= 0; i-- {
			a := seed[i]
			if _, err := tx.Exec(ctx, `
				INSERT INTO artworks (id, title, category, description, image, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, a.ID, a.Title, a.Category, a.Description, a.Image, a.CreatedAt); err != nil {
				return storageError("insert seed", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit seed", err)
	}
	if seeding {
		s.opts.logger.Info("initialized postgres store with seed collection", zap.Int("count", len(s.opts.seed)))
	}
	s.seeded.Store(true)
	return nil
}

// PostgresSiteInfoStore keeps the site info document in site_documents.
type PostgresSiteInfoStore struct {
	db   *database.DB
	opts options
	mu   sync.Mutex
}

func (s *PostgresSiteInfoStore) Get(ctx context.Context) (*models.SiteInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	var data []byte
	err := s.db.Pool.QueryRow(ctx, `SELECT data FROM site_documents WHERE key = $1`, siteInfoDocKey).Scan(&data)
	info, err := decodeSiteInfo(data, err)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *PostgresSiteInfoStore) Update(ctx context.Context, patch models.SiteInfoPatch) (*models.SiteInfo, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin site info update", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data []byte
	err = tx.QueryRow(ctx, `SELECT data FROM site_documents WHERE key = $1 FOR UPDATE`, siteInfoDocKey).Scan(&data)
	current, err := decodeSiteInfo(data, err)
	if err != nil {
		return nil, err
	}
	next := applyPatch(current, patch)

	encoded, err := json.Marshal(next)
	if err != nil {
		return nil, storageError("encode site info", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO site_documents (key, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, siteInfoDocKey, json.RawMessage(encoded)); err != nil {
		return nil, storageError("write site info", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit site info", err)
	}

	s.opts.logger.Info("site info updated",
		zap.Bool("about", patch.About != nil),
		zap.Bool("contact", patch.Contact != nil),
	)
	return &next, nil
}

func decodeSiteInfo(data []byte, err error) (models.SiteInfo, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSiteInfo(), nil
	}
	if err != nil {
		return models.SiteInfo{}, storageError("read site info", err)
	}

	var info models.SiteInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return models.SiteInfo{}, storageError("decode site info", err)
	}
	return normalizeSiteInfo(info), nil
}
