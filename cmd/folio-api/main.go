package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/config"
	"github.com/dimitrije/folio-api/internal/handlers"
	"github.com/dimitrije/folio-api/internal/logging"
	"github.com/dimitrije/folio-api/internal/media"
	authmw "github.com/dimitrije/folio-api/internal/middleware"
	"github.com/dimitrije/folio-api/internal/oauth"
	"github.com/dimitrije/folio-api/internal/ratelimit"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/dimitrije/folio-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	hub := sse.NewHub(logger.Named("sse"))
	limiter := ratelimit.New(cfg.RateLimit.Max, cfg.RateLimit.Window)

	host, err := media.NewLocalHost(cfg.Upload.Dir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	authProvider := &auth.Mux{Password: auth.NewPasswordProvider(backend.directory)}
	var consent handlers.ConsentProviderInterface
	if providers := oauthProviders(cfg); len(providers) > 0 {
		oauthProvider := auth.NewOAuthProvider(backend.directory, providers...)
		authProvider.OAuth = oauthProvider
		consent = oauthProvider
		for _, p := range providers {
			logger.Info("oauth provider enabled", zap.String("provider", p.Name()))
		}
	}
	if cfg.Admin.Email == "" && backend.admins == nil {
		logger.Warn("no admin configured, set ADMIN_EMAIL or use the postgres driver with create-admin")
	}

	artworkHandler := handlers.NewArtworkHandler(backend.artworks, hub, logger.Named("artworks"))
	siteInfoHandler := handlers.NewSiteInfoHandler(backend.siteInfo, hub, logger.Named("site"))
	authHandler := handlers.NewAuthHandler(authProvider, consent, jwtService, logger.Named("auth"))
	eventsHandler := handlers.NewEventsHandler(hub, logger.Named("events"))
	uploadHandler := handlers.NewUploadHandler(host, cfg.Upload.MaxBytes, logger.Named("upload"))

	mode := drift.DebugMode
	if cfg.IsProduction() {
		mode = drift.ReleaseMode
	}
	cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	})

	app := drift.New()
	app.SetMode(mode)
	app.Use(middleware.Recovery())
	app.Use(cors)
	app.Use(middleware.BodyParser())

	api := app.Group("/api")
	api.Use(authmw.NoStore())

	api.Get("/artworks", artworkHandler.List)
	api.Get("/site-info", siteInfoHandler.Get)
	api.Get("/events", eventsHandler.Stream)
	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	authGroup.Get("/:provider/consent", authHandler.GetConsentURL)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	login := authGroup.Group("")
	login.Use(authmw.RateLimit(limiter))
	login.Post("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))
	protected.Get("/auth/me", authHandler.Me)

	admin := protected.Group("")
	admin.Use(authmw.RequireRole(auth.RoleAdmin))
	admin.Post("/artworks", artworkHandler.Create)
	admin.Delete("/artworks", artworkHandler.Delete)
	admin.Put("/site-info", siteInfoHandler.Update)

	// Multipart bodies must reach the handler unread, so uploads get their
	// own app without the body parser.
	uploadApp := drift.New()
	uploadApp.SetMode(mode)
	uploadApp.Use(middleware.Recovery())
	uploadApp.Use(cors)
	uploadApp.Use(authmw.NoStore())
	uploadApp.Use(authmw.Auth(jwtService))
	uploadApp.Use(authmw.RequireRole(auth.RoleAdmin))
	uploadApp.Post("/api/upload", uploadHandler.Upload)

	mux := http.NewServeMux()
	mux.Handle("/api/upload", uploadApp)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", uploadsFileServer(host.Dir())))
	mux.Handle("/", app)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		limiter.Run(sweepInterval, gctx.Done())
		return nil
	})

	if backend.watch != nil {
		g.Go(func() error {
			return backend.watch(gctx)
		})
	}

	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func oauthProviders(cfg *config.Config) []oauth.Provider {
	var providers []oauth.Provider
	if cfg.GitHub.ClientID != "" {
		providers = append(providers, oauth.NewGitHubProvider(cfg.GitHub))
	}
	if cfg.Google.ClientID != "" {
		providers = append(providers, oauth.NewGoogleProvider(cfg.Google))
	}
	return providers
}

// uploadsFileServer serves uploaded files read-only without directory
// listings.
func uploadsFileServer(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
