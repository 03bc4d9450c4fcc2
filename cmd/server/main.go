package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/config"
	"github.com/mamadbah2/stockwise/internal/repository/filestore"
	"github.com/mamadbah2/stockwise/internal/repository/images"
	"github.com/mamadbah2/stockwise/internal/repository/memory"
	"github.com/mamadbah2/stockwise/internal/repository/mongodb"
	"github.com/mamadbah2/stockwise/internal/repository/postgres"
	"github.com/mamadbah2/stockwise/internal/repository/sheets"
	"github.com/mamadbah2/stockwise/internal/repository/sqlite"
	"github.com/mamadbah2/stockwise/internal/scheduler"
	"github.com/mamadbah2/stockwise/internal/server/handlers"
	"github.com/mamadbah2/stockwise/internal/server/metrics"
	"github.com/mamadbah2/stockwise/internal/server/router"
	advisorsvc "github.com/mamadbah2/stockwise/internal/service/advisor"
	exportsvc "github.com/mamadbah2/stockwise/internal/service/export"
	"github.com/mamadbah2/stockwise/internal/service/farm"
	reportingsvc "github.com/mamadbah2/stockwise/internal/service/reporting"
	"github.com/mamadbah2/stockwise/pkg/clients/anthropic"
	"github.com/mamadbah2/stockwise/pkg/clients/openai"
	whatsappclient "github.com/mamadbah2/stockwise/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockwise/pkg/logger"
)

// slotStore is a farm.SlotStore that holds a connection or lock.
type slotStore interface {
	farm.SlotStore
	Close(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, baseLogger.Named("repo.store"))
	if err != nil {
		baseLogger.Fatal("failed to open slot store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close slot store", zap.Error(err))
		}
	}()

	farmSvc, err := farm.NewService(ctx, store, baseLogger.Named("svc.farm"))
	if err != nil {
		baseLogger.Fatal("failed to load farm data", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(farmSvc, baseLogger.Named("svc.reporting"))
	advisorSvc := advisorsvc.NewService(newProvider(cfg.AI, baseLogger), baseLogger.Named("svc.advisor"))

	var exporter handlers.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = exportsvc.NewService(farmSvc, sheetsRepo, baseLogger.Named("svc.export"))
		baseLogger.Info("google sheets export enabled")
	}

	imageStore, imageRoot, err := openImageStore(ctx, cfg.Images, baseLogger.Named("repo.images"))
	if err != nil {
		baseLogger.Fatal("failed to init image store", zap.Error(err))
	}

	engine := router.New(router.Handlers{
		Livestock: handlers.NewLivestockHandler(farmSvc, imageStore, baseLogger.Named("handlers.livestock")),
		Pens:      handlers.NewPenHandler(farmSvc, baseLogger.Named("handlers.pens")),
		Insights:  handlers.NewInsightsHandler(reportingSvc, advisorSvc, exporter, baseLogger.Named("handlers.insights")),
		Metrics:   metrics.New(farmSvc),
		ImageRoot: imageRoot,
	}, baseLogger.Named("router"))

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		notifier = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp reminders enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, reminder digests will only be logged")
	}

	sched, err := scheduler.NewScheduler(cfg.Reminders, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (slotStore, error) {
	switch cfg.Store.Driver {
	case config.StoreFile:
		return filestore.New(cfg.Store.Path, log)
	case config.StoreSQLite:
		return sqlite.NewStore(ctx, cfg.Store.Path, log)
	case config.StorePostgres:
		return postgres.NewStore(ctx, cfg.Store.PostgresDSN, log)
	case config.StoreMongoDB:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	case config.StoreMemory:
		log.Warn("memory store selected, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// openImageStore returns a nil store when uploads are disabled. imageRoot is
// set only for the filesystem driver, whose files the router serves.
func openImageStore(ctx context.Context, cfg config.ImageConfig, log *zap.Logger) (images.Store, string, error) {
	switch cfg.Driver {
	case config.ImagesFS:
		store, err := images.NewFileStore(cfg.Path, cfg.PublicBaseURL, log)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	case config.ImagesS3:
		store, err := images.NewS3Store(ctx, s3Config(cfg), log)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		log.Info("image uploads disabled")
		return nil, "", nil
	}
}

// s3Config maps the image settings onto the S3 store. The filesystem default
// public path is ignored so object URLs derive from the bucket.
func s3Config(cfg config.ImageConfig) images.S3Config {
	out := images.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
	}
	if cfg.PublicBaseURL != config.DefaultImagePublicBaseURL {
		out.PublicBaseURL = cfg.PublicBaseURL
	}
	return out
}

func newProvider(cfg config.AIConfig, log *zap.Logger) advisorsvc.Provider {
	if !cfg.Enabled() {
		log.Warn("ai api key missing, care strategy suggestions disabled", zap.String("provider", cfg.Provider))
		return nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			log.Error("failed to init openai client", zap.Error(err))
			return nil
		}
		log.Info("openai care advisor enabled")
		return client
	default:
		log.Info("anthropic care advisor enabled")
		return anthropic.NewClient(cfg.AnthropicKey, cfg.Model, cfg.BaseURL)
	}
}
