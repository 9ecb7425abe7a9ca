package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/dataset"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/qoe"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/firestore"
	apirouter "github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/http"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/logging"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/spreadsheet"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config load")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	gin.SetMode(cfg.GinMode)

	var (
		store   dataset.Store
		uploads dataset.UploadLog
	)
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		firestoreClient, credsSource, err := firestoreclient.New(ctx, cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("firestore init")
		}
		defer firestoreClient.Close()

		if err := firestoreclient.Ping(ctx, firestoreClient); err != nil {
			logging.Fatal().Err(err).Msg("firestore ping")
		}
		logging.Info().
			Str("project", cfg.FirebaseProjectID).
			Str("credentials", credsSource).
			Msg("connected to Firestore")

		store = repository.NewDatasetRepository(firestoreClient)
		uploads = repository.NewUploadRepository(firestoreClient)
	default:
		store = repository.NewMemoryDatasetStore()
		uploads = repository.NewMemoryUploadLog()
	}

	sectorMatch, err := qoe.SectorMatcherFor(cfg.SectorMatch)
	if err != nil {
		logging.Fatal().Err(err).Msg("sector matcher")
	}

	datasets := dataset.NewService(store, uploads, spreadsheet.NewSourceOpener(), spreadsheet.Parse, cfg.DatasetSource)
	loadInitialDataset(ctx, datasets, cfg)

	router := apirouter.NewRouter(datasets, apirouter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SectorMatch:    sectorMatch,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		HistoryLimit:   cfg.UploadHistoryLimit,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()
	logging.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("server listening")

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}
	logging.Info().Msg("server exited")
}

// loadInitialDataset restores the persisted table and, when asked to, falls
// back to reading the configured source. Failures leave the server running
// without a dataset.
func loadInitialDataset(ctx context.Context, datasets *dataset.Service, cfg config.Config) {
	_, err := datasets.Restore(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, dataset.ErrNoDataset) {
		logging.Warn().Err(err).Msg("restore active dataset")
	}

	if !cfg.LoadOnStart {
		return
	}
	if _, err := datasets.Reload(ctx); err != nil {
		logging.Warn().Err(err).Str("source", cfg.DatasetSource).Msg("initial dataset load")
	}
}
