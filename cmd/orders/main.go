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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/catalog"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/platform/observability"
)

const (
	serviceName         = "payment"
	instrumentationName = "github.com/rl1809/storefront/cmd/orders"
)

func main() {
	cfg, err := config.Load(config.OrderDefaults)
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
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", slog.String("addr", cfg.RedisAddr()), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to redis", slog.String("addr", cfg.RedisAddr()))

	// Initialize adapters
	store := storage.NewRedisAdapter(rdb, cfg.EventStream, cfg.EventMaxLen)
	catalogClient, err := catalog.NewHTTPClient(cfg.CatalogURL, &http.Client{
		Timeout:   cfg.CatalogTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		logger.Error("invalid catalog client", slog.String("url", cfg.CatalogURL), slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithTracer(instruments.Tracer(instrumentationName)),
		service.WithMeter(instruments.Meter(instrumentationName)),
	}

	// Start completion workers
	queue := service.NewCompletionQueue(store, cfg.WorkerCount, cfg.QueueSize, opts...)
	queue.OnResult(func(res service.CompletionResult) {
		if res.Err != nil {
			logger.Warn("order completion did not settle",
				slog.String("order.id", res.OrderID), slog.String("error", res.Err.Error()))
		}
	})
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		queue.Run(queueCtx)
	}()

	orders := service.NewOrderService(store, catalogClient, queue, cfg.CompletionDelay, opts...)
	resumed, err := orders.ResumePending(ctx)
	if err != nil {
		logger.Error("failed to resume pending orders", slog.String("error", err.Error()))
	} else if resumed > 0 {
		logger.Info("resumed pending orders", slog.Int("count", resumed))
	}

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
		Handler: handler.NewOrderRouter(orders, store, logger),
	}
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr), slog.String("catalog", cfg.CatalogURL))
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

	// Close completion queue and wait for workers; whatever is not due by the
	// deadline stays pending for the next start.
	queue.Close()
	select {
	case <-queueDone:
	case <-shutdownCtx.Done():
		stopQueue()
		<-queueDone
	}
	logger.Info("workers stopped")

	cancel()
	if err := rdb.Close(); err != nil {
		logger.Error("close redis", slog.String("error", err.Error()))
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer flushCancel()
	if err := shutdownTelemetry(flushCtx); err != nil {
		logger.Error("flush telemetry", slog.String("error", err.Error()))
	}
	logger.Info("connections closed")
}
