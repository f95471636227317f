package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/platform/observability"
)

const serviceName = "product-api"

func main() {
	cfg, err := config.Load(config.CatalogDefaults)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	instruments, shutdownTelemetry, err := observability.Init(ctx, serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	logger := instruments.Logger
	gin.SetMode(gin.ReleaseMode)

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 50,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", slog.String("addr", cfg.RedisAddr()), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to redis", slog.String("addr", cfg.RedisAddr()))

	store := storage.NewRedisAdapter(rdb, cfg.EventStream, cfg.EventMaxLen)
	catalog := service.NewCatalogService(store, service.WithLogger(logger))

	// gRPC health
	grpcServer := grpc.NewServer()
	health := handler.NewGRPCHealth(serviceName, store, logger)
	health.Register(grpcServer)
	go health.Watch(ctx, cfg.HealthInterval)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", slog.String("addr", cfg.GRPCAddr), slog.String("error", err.Error()))
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", slog.String("error", err.Error()))
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewCatalogRouter(catalog, store, logger),
	}
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", slog.String("error", err.Error()))
	}
	logger.Info("HTTP server stopped")

	health.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	cancel()
	if err := rdb.Close(); err != nil {
		logger.Error("close redis", slog.String("error", err.Error()))
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("flush telemetry", slog.String("error", err.Error()))
	}
	logger.Info("connections closed")
}
