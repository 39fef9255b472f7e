package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/adapter/geocoding/mapbox"
	grpcAdapter "github.com/Abdurahmanit/wanderlust/internal/adapter/grpc"
	natsAdapter "github.com/Abdurahmanit/wanderlust/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/wanderlust/internal/adapter/repository/cache"
	mongoRepo "github.com/Abdurahmanit/wanderlust/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/wanderlust/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/wanderlust/internal/config"
	"github.com/Abdurahmanit/wanderlust/internal/handler"
	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/listing/usecase"
	"github.com/Abdurahmanit/wanderlust/internal/mailer"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/wanderlust/internal/platform/metrics"
	"github.com/Abdurahmanit/wanderlust/internal/platform/tracer"
	"github.com/Abdurahmanit/wanderlust/internal/router"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const (
	dependencyCheckInterval = 10 * time.Second
	shutdownTimeout         = 15 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	serviceName := cfg.ServiceName
	appLogger.Info("Application starting...",
		zap.String("service_name", serviceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.Bool("mongo_uri_set", cfg.MongoURI != ""),
		zap.Bool("smtp_enabled", cfg.SMTPEnabled()),
	)

	tp := tracer.InitTracer(serviceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		cancelPing()
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	cancelPing()
	appLogger.Info("Successfully connected and pinged MongoDB.")
	db := mongoClient.Database(cfg.MongoDatabase)

	listingRepo := mongoRepo.NewListingRepository(db, appLogger)
	reviewRepo := mongoRepo.NewReviewRepository(db, appLogger)
	userRepo := mongoRepo.NewUserRepository(db, appLogger)

	metricsManager := metrics.NewMetricsManager(serviceName)
	opts := []usecase.Option{usecase.WithMetrics(metricsManager)}

	var flashStore domain.FlashStore
	redisClient, err := cache.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, running without listing cache and notices", zap.Error(err))
	} else {
		defer redisClient.Close()
		opts = append(opts, usecase.WithCache(cache.NewListingCache(redisClient, cfg.CacheTTL, appLogger)))
		flashStore = cache.NewFlashStore(redisClient, cfg.FlashTTL, appLogger)
	}

	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, serviceName)
	if err != nil {
		appLogger.Warn("NATS unavailable, listing events will not be published", zap.Error(err))
	} else {
		defer natsPublisher.Close()
		opts = append(opts, usecase.WithPublisher(natsPublisher))
	}

	if cfg.SMTPEnabled() {
		opts = append(opts, usecase.WithNotifier(mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, appLogger)))
	} else {
		appLogger.Info("SMTP not configured, creation e-mails are disabled.")
	}

	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 10*time.Second)
	imageStore, err := s3.NewS3Storage(storageCtx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	cancelStorage()
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	geocoder := mapbox.NewClient(cfg.MapToken, cfg.GeocodingBaseURL, cfg.GeocodingTimeout, cfg.GeocodingMaxRetries, appLogger)

	listingUsecase := usecase.NewListingUsecase(listingRepo, reviewRepo, userRepo, geocoder, appLogger, opts...)

	responder := handler.NewResponder(flashStore, appLogger)
	httpRouter := router.New(router.Deps{
		Listings:  handler.NewListingHandler(listingUsecase, imageStore, responder, cfg.MapToken, appLogger),
		Health:    handler.NewHealthHandler(listingRepo, appLogger),
		Responder: responder,
		Owners:    listingUsecase,
		Metrics:   metricsManager,
		JWTSecret: cfg.JWTSecret,
		Logger:    appLogger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcServer := grpcAdapter.NewServer(serviceName, appLogger)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("gRPC server Serve error", zap.Error(err))
		}
	}()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go grpcServer.WatchDependency(watchCtx, listingRepo, dependencyCheckInterval)

	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	stopWatch()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
}
