package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	grpcAdapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/grpc"
	natsAdapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/moderation"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/cache"
	mongoRepo "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/rest"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	bootLogger := logger.NewLogger(logger.DefaultConfig())
	cfg, err := config.LoadConfig(bootLogger)
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	appLogger := logger.NewLogger(&logger.LoggerConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputFile: cfg.LogOutputFile})
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = mongoClient.Ping(pingCtx, readpref.Primary())
	cancelPing()
	if err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")

	listingRepo, err := mongoRepo.NewListingRepository(mongoClient.Database(cfg.MongoDatabase), cfg.MongoCollection, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ListingRepository", zap.Error(err))
	}

	checks := map[string]rest.HealthChecker{
		"mongo": rest.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) }),
	}

	deps := usecase.Deps{
		Repo:   listingRepo,
		Claims: usecase.NewClaimExtractor(cfg.JWTSecret),
		Policy: usecase.NewAuthorizationPolicy(cfg.AdminEmail),
	}

	// Redis cache is optional.
	if cfg.RedisAddress != "" {
		listingCache, err := cache.NewListingCache(context.Background(), cache.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, serving without listing cache", zap.Error(err))
		} else {
			defer listingCache.Close() //nolint:errcheck
			deps.Cache = listingCache
			checks["redis"] = listingCache
		}
	}

	// NATS events are best effort.
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Warn("NATS unavailable, listing events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}

	store, err := s3.NewS3Storage(context.Background(), s3.Options{
		Endpoint:     cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Region:       cfg.S3Region,
		UseSSL:       cfg.S3UseSSL,
		Bucket:       cfg.S3Bucket,
		CreateBucket: cfg.S3CreateBucket,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	var oracle domain.ModerationOracle
	if cfg.ModerationURL != "" {
		oracle = moderation.NewHTTPOracle(cfg.ModerationURL, cfg.ModerationAPIKey, cfg.ModerationModel, cfg.ModerationTimeout, appLogger)
	} else {
		oracle = moderation.NewBlocklistOracle(cfg.ModerationBlockedTerms)
	}
	deps.Gate = usecase.NewModerationGate(oracle, appLogger)
	deps.Uploader = usecase.NewUploadCoordinator(store, deps.Gate, usecase.UploadConfig{
		Bucket:        cfg.S3Bucket,
		PublicHost:    cfg.S3PublicHost,
		PresignExpiry: cfg.PresignExpiry,
	}, appLogger)

	if cfg.SMTPHost != "" {
		relay, err := mailer.NewSMTPRelay(mailer.Config{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			Encryption: cfg.SMTPEncryption,
			From:       cfg.MailFrom,
		}, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize SMTP relay", zap.Error(err))
		}
		deps.Mailer = relay
	} else {
		appLogger.Warn("SMTP_HOST is not set, contact-seller requests will fail")
	}

	listingUsecase := usecase.NewListingUsecase(deps, appLogger)

	metricsManager := metrics.NewMetricsManager(strings.ReplaceAll(cfg.ServiceName, "-", "_"))

	// HTTP
	handler := rest.NewListingHandler(listingUsecase, metricsManager, cfg.MaxImageBytes, appLogger)
	router := rest.NewRouter(rest.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ContactRateLimit:   cfg.ContactRateLimit,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		IsDevelopment:      cfg.LogLevel == "debug",
	}, handler, checks, appLogger, metricsManager)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// gRPC health and reflection
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcSrv, healthServer := grpcAdapter.NewGRPCServer(appLogger)
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("gRPC server Serve error", zap.Error(err))
		}
	}()

	var metricsSrv *http.Server
	if cfg.PrometheusMetricsPort != "" {
		metricsSrv = metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
		go func() {
			if err := metrics.StartMetricsServer(metricsSrv, appLogger); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	healthServer.SetServingStatus(grpcAdapter.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	grpcSrv.GracefulStop()
	appLogger.Info("Application shutting down...")
}
