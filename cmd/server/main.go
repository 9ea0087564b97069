package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"acordex/internal/artifact"
	"acordex/internal/cache"
	"acordex/internal/catalog"
	"acordex/internal/config"
	"acordex/internal/handler"
	"acordex/internal/logger"
	"acordex/internal/organizer"
	"acordex/internal/organizer/claude"
	"acordex/internal/organizer/gemini"
	"acordex/internal/organizer/openai"
	"acordex/internal/port"
	"acordex/internal/repository/sqlstore"
	"acordex/internal/router"
	"acordex/internal/service"
	s3storage "acordex/internal/storage/s3"
	"acordex/internal/workspace"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	// Rule store
	if err := sqlstore.Migrate(&cfg.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	db, err := sqlstore.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	ruleRepo := sqlstore.NewValidationRuleRepo(db)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load field catalog: %w", err)
	}
	zl.Info("field catalog loaded",
		zap.String("name", cat.Name()),
		zap.String("form_code", cat.FormCode()),
		zap.Int("rules", cat.Len()),
	)

	healthH := handler.NewHealthHandler(ruleRepo)

	// Organizer and its decorators
	registerOrganizers()
	org, err := organizer.New(&cfg.Organizer)
	if err != nil {
		return fmt.Errorf("failed to create organizer: %w", err)
	}
	org = organizer.NewBreaker(org, cfg.Organizer.Provider, zl)
	if cfg.Organizer.RatePerSec > 0 {
		org = organizer.NewRateLimited(org, cfg.Organizer.RatePerSec)
	}
	if cfg.Cache.Enabled {
		rc := cache.NewRedisCache(&cfg.Cache)
		defer func() { _ = rc.Close() }()
		org = organizer.NewCached(org, rc, cfg.Organizer.Provider+":"+cfg.Organizer.Model, zl)
		healthH.WithCheck("cache", rc)
	}

	// Extraction artifacts
	var (
		artifacts port.ArtifactStore
		ws        port.Workspace
	)
	if cfg.Artifacts.Enabled {
		storage, err := s3storage.NewS3Client(ctx, &cfg.Artifacts)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		store := artifact.NewStore(storage, cfg.Artifacts.Bucket, cfg.Artifacts.Prefix)
		artifacts = store
		healthH.WithCheck("artifacts", store)

		w, err := workspace.New(cfg.Workspace.BaseDir)
		if err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}
		ws = w
	}

	// Initialize services
	ruleSvc := service.NewRuleService(ruleRepo, zl)
	extractionSvc := service.NewExtractionService(cat, org, ws, artifacts, service.ExtractionOptions{
		OrganizerProvider: cfg.Organizer.Provider,
		OrganizerTimeout:  cfg.Organizer.Timeout(),
	}, zl)
	validationSvc := service.NewValidationService(extractionSvc, ruleSvc, zl)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	validationH := handler.NewValidationHandler(validationSvc, ruleSvc)
	ruleH := handler.NewRuleHandler(ruleSvc)

	r := router.Setup(zl, cfg.CORS.AllowedOrigins, extractionH, validationH, ruleH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func registerOrganizers() {
	organizer.RegisterProvider("openai", func(cfg *config.OrganizerConfig) (port.Organizer, error) {
		return openai.NewOrganizer(cfg), nil
	})
	organizer.RegisterProvider("claude", func(cfg *config.OrganizerConfig) (port.Organizer, error) {
		return claude.NewOrganizer(cfg), nil
	})
	organizer.RegisterProvider("gemini", func(cfg *config.OrganizerConfig) (port.Organizer, error) {
		return gemini.NewOrganizer(cfg), nil
	})
}
