// Package config reads process settings from the environment once at start.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries environment-driven settings shared by both services.
type Config struct {
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	HTTPAddr string
	GRPCAddr string

	CatalogURL     string
	CatalogTimeout time.Duration

	LogLevel slog.Level

	CompletionDelay time.Duration
	WorkerCount     int
	QueueSize       int
	EventStream     string
	EventMaxLen     int64

	HealthInterval  time.Duration
	ShutdownTimeout time.Duration
}

// Defaults holds per-service fallbacks for the listen addresses.
type Defaults struct {
	HTTPAddr string
	GRPCAddr string
}

var (
	CatalogDefaults = Defaults{HTTPAddr: ":8000", GRPCAddr: ":50051"}
	OrderDefaults   = Defaults{HTTPAddr: ":8001", GRPCAddr: ":50052"}
)

// Load reads environment variables, applies defaults, and validates them.
func Load(d Defaults) (Config, error) {
	var errs []string
	intEnv := func(key string, fallback int, min int) int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < min {
			errs = append(errs, fmt.Sprintf("%s must be an integer >= %d", key, min))
			return fallback
		}
		return n
	}
	durEnv := func(key string, fallback time.Duration) time.Duration {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return fallback
		}
		dur, err := parseDuration(raw)
		if err != nil || dur < 0 {
			errs = append(errs, fmt.Sprintf("%s must be a non-negative duration", key))
			return fallback
		}
		return dur
	}

	cfg := Config{
		RedisHost:       envDefault("REDIS_HOST", "localhost"),
		RedisPort:       intEnv("REDIS_PORT", 6379, 1),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         intEnv("REDIS_DB", 0, 0),
		HTTPAddr:        envDefault("HTTP_ADDR", d.HTTPAddr),
		GRPCAddr:        envDefault("GRPC_ADDR", d.GRPCAddr),
		CatalogURL:      strings.TrimRight(envDefault("CATALOG_URL", "http://localhost:8000"), "/"),
		CatalogTimeout:  durEnv("CATALOG_TIMEOUT", 10*time.Second),
		CompletionDelay: durEnv("ORDER_COMPLETION_DELAY", 5*time.Second),
		WorkerCount:     intEnv("WORKER_COUNT", 4, 1),
		QueueSize:       intEnv("QUEUE_SIZE", 1024, 1),
		EventStream:     envDefault("ORDER_EVENT_STREAM", "order-events"),
		EventMaxLen:     int64(intEnv("ORDER_EVENT_MAXLEN", 0, 0)),
		HealthInterval:  durEnv("HEALTH_INTERVAL", 10*time.Second),
		ShutdownTimeout: durEnv("SHUTDOWN_TIMEOUT", 5*time.Second),
	}

	level, err := parseLevel(envDefault("LOG_LEVEL", "INFO"))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.LogLevel = level

	if cfg.HealthInterval == 0 {
		errs = append(errs, "HEALTH_INTERVAL must be positive")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// RedisAddr joins host and port for redis.Options.
func (c Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// parseDuration accepts Go durations ("5s") and bare seconds ("5").
func parseDuration(raw string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARNING, ERROR", raw)
	}
}
