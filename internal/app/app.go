package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/postbridge/internal/config"
	httpcontroller "github.com/vadim/postbridge/internal/controller/http"
	"github.com/vadim/postbridge/internal/database"
	"github.com/vadim/postbridge/internal/domain/post/dao"
	"github.com/vadim/postbridge/internal/domain/post/policy"
	"github.com/vadim/postbridge/internal/domain/post/scheduler"
	"github.com/vadim/postbridge/internal/domain/post/service"
	"github.com/vadim/postbridge/internal/httpx/upstream/publer"
	"github.com/vadim/postbridge/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	pg *pgxpool.Pool

	publerClient *publer.Client
	postPolicy   *policy.Policy

	// Scheduler for handing due posts to the provider
	scheduler *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	// Publishing blocks on provider-side media processing, which can
	// take the whole polling budget.
	r.Use(middleware.Timeout(2 * time.Minute))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	app.registerRoutes()

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(app.postPolicy, cfg.Scheduler.Interval, logger)
	}

	return app, nil
}

// initInfrastructure initializes infrastructure components
func (a *App) initInfrastructure(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database.PostgresDSN, a.cfg.Database.MaxConns, a.cfg.Database.MinConns)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pg = pool

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(ctx context.Context) error {
	a.publerClient = publer.New(
		a.cfg.Publer.APIKey,
		publer.WithBaseURL(a.cfg.Publer.BaseURL),
		publer.WithPollInterval(a.cfg.Publer.PollInterval),
		publer.WithPollAttempts(a.cfg.Publer.PollAttempts),
	)
	publisher := publer.NewPublisher(a.publerClient)

	postsRepo := dao.NewPostPostgres(a.pg)
	postService := service.New(postsRepo)

	a.postPolicy = policy.New(postService, &publerPublisherAdapter{publisher})

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("Postbridge API", httpcontroller.OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		postHandler := httpcontroller.NewPostHandler(a.postPolicy)
		postHandler.RegisterRoutes(r)

		accountHandler := httpcontroller.NewAccountHandler(a.publerClient)
		accountHandler.RegisterRoutes(r)

		mediaHandler := httpcontroller.NewMediaHandler(&s3UploaderAdapter{storage.NewS3Storage(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
		})})
		mediaHandler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.pg.Ping(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"database unreachable"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.pg != nil {
		a.pg.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}

// publerPublisherAdapter adapts publer.Publisher to policy.ProviderPublisher
type publerPublisherAdapter struct {
	publisher *publer.Publisher
}

func (a *publerPublisherAdapter) Publish(ctx context.Context, in policy.PublishInput) (*policy.PublishOutput, error) {
	out, err := a.publisher.Publish(ctx, publer.PublishInput{
		AccountIDs:  in.AccountIDs,
		Text:        in.Text,
		MediaURLs:   in.MediaURLs,
		ScheduledAt: in.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}
	return &policy.PublishOutput{Raw: out.Raw}, nil
}

// s3UploaderAdapter adapts storage.S3Storage to httpcontroller.MediaUploader
type s3UploaderAdapter struct {
	storage *storage.S3Storage
}

func (a *s3UploaderAdapter) Upload(ctx context.Context, in httpcontroller.MediaUploadInput) (*httpcontroller.MediaUploadOutput, error) {
	out, err := a.storage.Upload(ctx, storage.UploadInput{
		Reader:      in.Reader,
		ContentType: in.ContentType,
		Size:        in.Size,
		Filename:    in.Filename,
	})
	if err != nil {
		return nil, err
	}
	return &httpcontroller.MediaUploadOutput{URL: out.URL, Key: out.Key}, nil
}
