package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dimitrije/folio-api/internal/models"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	artworksSeedKey = "artworks_seeded"
	siteInfoDocKey  = "site_info"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS artworks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		image TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_state (
		key TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS site_documents (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

// SQLiteStore keeps the collection in an embedded SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	opts   options
	mu     sync.Mutex
	seeded atomic.Bool
}

func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageError("create data dir", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageError("open sqlite", err)
	}

	for i, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, storageError("migrate sqlite", fmt.Errorf("statement %d: %w", i+1, err))
		}
	}

	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SiteInfo returns a site info store sharing this database.
func (s *SQLiteStore) SiteInfo() *SQLiteSiteInfoStore {
	return &SQLiteSiteInfoStore{db: s.db, opts: s.opts}
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
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
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Title, &a.Category, &a.Description, &a.Image, &createdAt); err != nil {
			return nil, storageError("scan artwork", err)
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, storageError("parse created_at", err)
		}
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list artworks", err)
	}
	return artworks, nil
}

func (s *SQLiteStore) Create(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artworks (id, title, category, description, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, artwork.ID, artwork.Title, artwork.Category, artwork.Description, artwork.Image,
		artwork.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		s.opts.logger.Error("failed to insert artwork", zap.String("title", in.Title), zap.Error(err))
		return nil, storageError("insert artwork", err)
	}

	s.opts.logger.Info("artwork created", zap.String("id", artwork.ID), zap.String("title", artwork.Title))
	return &artwork, nil
}

func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM artworks WHERE id = ?`, id)
	if err != nil {
		s.opts.logger.Error("failed to delete artwork", zap.String("id", id), zap.Error(err))
		return storageError("delete artwork", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("delete artwork", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.opts.logger.Info("artwork deleted", zap.String("id", id))
	return nil
}

// ensureSeeded inserts the seed collection the first time this database is
// used. The store_state marker keeps an emptied collection from being seeded
// again.
func (s *SQLiteStore) ensureSeeded(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded.Load() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin seed", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.opts.now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO store_state (key, created_at) VALUES (?, ?)`,
		artworksSeedKey, now.Format(time.RFC3339Nano))
	if err != nil {
		return storageError("mark seed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("mark seed", err)
	}

	if n == 1 {
		seed := seedAt(s.opts.seed, now)
		// Inserted back to front so the first seed entry lists first.
		for i := len(seed) - 1; i >= 0; i-- {
			a := seed[i]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO artworks (id, title, category, description, image, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, a.ID, a.Title, a.Category, a.Description, a.Image, a.CreatedAt.Format(time.RFC3339Nano)); err != nil {
				return storageError("insert seed", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("commit seed", err)
	}
	if n == 1 {
		s.opts.logger.Info("initialized sqlite store with seed collection", zap.Int("count", len(s.opts.seed)))
	}
	s.seeded.Store(true)
	return nil
}

// SQLiteSiteInfoStore keeps the site info document in the site_documents table.
type SQLiteSiteInfoStore struct {
	db   *sql.DB
	opts options
	mu   sync.Mutex
}

func (s *SQLiteSiteInfoStore) Get(ctx context.Context) (*models.SiteInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	info, err := s.read(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *SQLiteSiteInfoStore) Update(ctx context.Context, patch models.SiteInfoPatch) (*models.SiteInfo, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin site info update", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.read(ctx, tx)
	if err != nil {
		return nil, err
	}
	next := applyPatch(current, patch)

	data, err := json.Marshal(next)
	if err != nil {
		return nil, storageError("encode site info", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO site_documents (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, siteInfoDocKey, string(data), s.opts.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, storageError("write site info", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageError("commit site info", err)
	}

	s.opts.logger.Info("site info updated",
		zap.Bool("about", patch.About != nil),
		zap.Bool("contact", patch.Contact != nil),
	)
	return &next, nil
}

type sqlQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteSiteInfoStore) read(ctx context.Context, q sqlQueryer) (models.SiteInfo, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM site_documents WHERE key = ?`, siteInfoDocKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSiteInfo(), nil
	}
	if err != nil {
		return models.SiteInfo{}, storageError("read site info", err)
	}

	var info models.SiteInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return models.SiteInfo{}, storageError("decode site info", err)
	}
	return normalizeSiteInfo(info), nil
}
