package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pubhub/config"
	"pubhub/database"
	"pubhub/providers/fakenames"
	"pubhub/routes"
	"pubhub/services"
	"pubhub/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logging, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup Database Connection
	db, err := database.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Setup Services
	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	names := fakenames.NewGenerator(cfg.NameSeed)
	ingestService := services.NewIngestService(db, names, logging, metrics)
	reader := services.NewAggregationReader(db)

	// Setup Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(routes.RequestID())
	router.Use(routes.AccessLog(logging))
	router.Use(routes.CORS(cfg.AllowedOrigins()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	routes.SetupHealthRoutes(router, db)
	routes.SetupPublicationRoutes(router, ingestService, reader, logging)

	// Setup Cron
	if cfg.SnapshotEnabled {
		s3Client, err := storage.NewS3Client(ctx, cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		snapshots := services.NewSnapshotService(cfg, reader, s3Client, logging, metrics)

		cronScheduler := cron.New()
		if _, err := cronScheduler.AddFunc(cfg.SnapshotCron, func() {
			logging.Info("Running scheduled snapshot export...")
			link, err := snapshots.Export(ctx)
			if err != nil {
				logging.Error("Snapshot export failed", zap.Error(err))
				return
			}
			logging.Info("Snapshot export completed", zap.String("link", link))
		}); err != nil {
			logging.Fatal("Invalid SNAPSHOT_CRON", zap.String("schedule", cfg.SnapshotCron), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", zap.Error(err))
	}
}
