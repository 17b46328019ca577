package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/time/rate"

	"github.com/privacypulse/pulse-server/internal/api"
	"github.com/privacypulse/pulse-server/internal/config"
	"github.com/privacypulse/pulse-server/internal/feed"
	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/redis"
	"github.com/privacypulse/pulse-server/internal/repository/postgres"
	"github.com/privacypulse/pulse-server/internal/security"
	"github.com/privacypulse/pulse-server/internal/service"
	"github.com/privacypulse/pulse-server/internal/session"
	storage "github.com/privacypulse/pulse-server/internal/storage/minio"
	"github.com/privacypulse/pulse-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	cache, err := redis.New(cfg.Redis.DSN)
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	defer cache.Close()

	profileRepo := postgres.NewProfileRepository(db)
	eventRepo := postgres.NewViewEventRepository(db)
	eraseRepo := postgres.NewEraseRepository(db)

	distributor := feed.NewDistributor()
	listener := feed.NewListener(db, distributor, logger)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	revoker := session.NewRevoker(cache)

	minioClient, err := minio.New(cfg.Export.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Export.AccessKey, cfg.Export.SecretKey, ""),
		Secure: cfg.Export.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Export.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	directoryService := service.NewDirectory(profileRepo, logger)
	viewService := service.NewView(eventRepo, profileRepo, distributor, logger)
	erasureService := service.NewErasure(eraseRepo, eventRepo, revoker, logger)
	exportService := service.NewExport(eventRepo, profileRepo, storageClient, logger)

	searchLimits := security.NewLimiterStore(rate.Limit(cfg.Search.RatePerSecond), cfg.Search.Burst, 10*time.Minute)

	server := api.NewServer(
		logger,
		directoryService,
		viewService,
		erasureService,
		exportService,
		distributor,
		tokenManager,
		revoker,
		db,
		cache,
		searchLimits,
		fmt.Sprintf(":%s", cfg.HTTP.Port),
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feed listener stopped", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", server.Address())
		if err := server.Run(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", server.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
