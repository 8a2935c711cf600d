package main

import (
	"context"
	"fmt"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/config"
	"github.com/dimitrije/folio-api/internal/database"
	"github.com/dimitrije/folio-api/internal/handlers"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/dimitrije/folio-api/internal/store"
	"go.uber.org/zap"
)

// backend is the storage selected by STORE_DRIVER together with the admin
// directory that goes with it.
type backend struct {
	artworks  handlers.ArtworkStoreInterface
	siteInfo  handlers.SiteInfoStoreInterface
	directory auth.AdminDirectory
	admins    *services.AdminService
	watch     func(ctx context.Context) error
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	opts := []store.Option{
		store.WithLogger(logger.Named("store")),
		store.WithTimeout(cfg.Store.Timeout),
	}
	static := auth.NewStaticDirectory(cfg.Admin.Email, cfg.Admin.PasswordHash)

	switch cfg.Store.Driver {
	case config.DriverFile:
		artworks, err := store.NewFileStore(cfg.Store.DataDir, opts...)
		if err != nil {
			return nil, err
		}
		b := &backend{
			artworks:  artworks,
			siteInfo:  store.NewFileSiteInfoStore(cfg.Store.DataDir, opts...),
			directory: static,
			close:     func() {},
		}
		if cfg.Store.Watch {
			b.watch = artworks.Watch
		}
		return b, nil

	case config.DriverSQLite:
		artworks, err := store.NewSQLiteStore(ctx, cfg.Store.SQLitePath, opts...)
		if err != nil {
			return nil, err
		}
		return &backend{
			artworks:  artworks,
			siteInfo:  artworks.SiteInfo(),
			directory: static,
			close: func() {
				if err := artworks.Close(); err != nil {
					logger.Warn("failed to close sqlite store", zap.Error(err))
				}
			},
		}, nil

	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		artworks := store.NewPostgresStore(db, opts...)
		admins := services.NewAdminService(db)
		return &backend{
			artworks:  artworks,
			siteInfo:  artworks.SiteInfo(),
			directory: auth.ChainDirectory{static, admins},
			admins:    admins,
			close:     db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
