package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Money is written as a bare JSON number carrying every stored digit.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Pinger reports whether the shared store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Service string `json:"service"`
}

// HealthHandler answers GET / for one service.
type HealthHandler struct {
	service string
	message string
	store   Pinger
	logger  *slog.Logger
}

func NewHealthHandler(service, message string, store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{service: service, message: message, store: store, logger: logger}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed", slog.String("error", err.Error()))
		respondProblem(c, ErrUnavailableProblem.WithDetail("Service unhealthy - Redis connection failed"))
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: true, Message: h.message, Service: h.service})
}

// newRouter builds the gin engine shared by both services: recovery, CORS for
// any origin, tracing and one structured log line per request.
func newRouter(serviceName string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(requestLogger(logger))
	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
		}
		level := slog.LevelInfo
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}
