package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/lenta-assistant/internal/assistant"
	"github.com/Sternrassler/lenta-assistant/internal/config"
	"github.com/Sternrassler/lenta-assistant/internal/httpapi"
	"github.com/Sternrassler/lenta-assistant/internal/notify"
	"github.com/Sternrassler/lenta-assistant/internal/storage"
	"github.com/Sternrassler/lenta-assistant/pkg/cache"
	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
	"github.com/Sternrassler/lenta-assistant/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(cfg.LoggingConfig())
	logger.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start")
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Shutdown complete")
}

// app holds the long-lived components of the service.
type app struct {
	cfg       *config.Config
	backend   cache.Backend
	lenta     *lenta.Client
	db        *storage.Database
	server    *http.Server
	scheduler *notify.Scheduler
}

func newApp(cfg *config.Config) (*app, error) {
	backend, err := cache.New(cfg.CacheBackendConfig())
	if err != nil {
		return nil, err
	}

	lentaClient, err := lenta.NewWithConfig(cfg.ClientConfig(backend))
	if err != nil {
		closeBackend(backend)
		return nil, err
	}

	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		closeBackend(backend)
		return nil, err
	}
	repo := storage.NewRepository(db.DB)

	svc := assistant.New(lentaClient, repo)
	router := httpapi.NewRouter(httpapi.NewHandler(svc, db))

	a := &app{
		cfg:     cfg,
		backend: backend,
		lenta:   lentaClient,
		db:      db,
		server: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      router,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}

	if cfg.Notify.Enabled {
		sender := notify.NewWebhookSender(cfg.Notify.WebhookURL, nil)
		job := notify.NewJob(repo, lentaClient, sender, cfg.Notify.MaxConcurrency)
		a.scheduler = notify.NewScheduler(job, cfg.Notify.Interval)
	}

	return a, nil
}

// Run serves HTTP and runs the scheduler until ctx is canceled, then shuts
// the server down gracefully.
func (a *app) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", a.server.Addr).Msg("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.scheduler != nil {
		g.Go(func() error {
			a.scheduler.Start(ctx)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the client, cache and database.
func (a *app) Close() {
	_ = a.lenta.API().Close()
	closeBackend(a.backend)
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}
}

func closeBackend(backend cache.Backend) {
	if backend == nil {
		return
	}
	if err := backend.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close cache backend")
	}
}
