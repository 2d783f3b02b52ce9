package handler

import (
	"context"
	"net/http"
	"time"

	"inventario/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 5 * time.Second

type HealthCheckHandler struct {
	db          *gorm.DB
	redisClient *redis.Client // nil, если кеш отключен
	serviceName string
}

func NewHealthCheckHandler(db *gorm.DB, redisClient *redis.Client, serviceName string) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:          db,
		redisClient: redisClient,
		serviceName: serviceName,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Database  string            `json:"database"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthCheck обрабатывает GET /api/health
func (h *HealthCheckHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	status := http.StatusOK
	response := HealthResponse{
		Status:    "ok",
		Database:  "conectado",
		Timestamp: time.Now(),
	}

	if err := h.checkDatabase(ctx); err != nil {
		response.Status = "error"
		response.Database = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.redisClient != nil {
		// Кеш категорий необязателен, ошибка Redis не делает сервис нездоровым
		if err := h.checkRedis(ctx); err != nil {
			checks["redis"] = "warning: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	}
	if len(checks) > 0 {
		response.Checks = checks
	}

	c.JSON(status, response)
}

// Readiness обрабатывает GET /health/readiness
func (h *HealthCheckHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.checkDatabase(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "database not ready")
		return
	}

	if h.redisClient != nil {
		if err := h.checkRedis(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "redis not ready")
			return
		}
	}

	c.String(http.StatusOK, "ready")
}

// Liveness обрабатывает GET /health/liveness
func (h *HealthCheckHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}

func (h *HealthCheckHandler) checkDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}

	metrics.RecordDbPoolStats(h.serviceName, sqlDB.Stats())
	return sqlDB.PingContext(ctx)
}

func (h *HealthCheckHandler) checkRedis(ctx context.Context) error {
	return h.redisClient.Ping(ctx).Err()
}

func (h *HealthCheckHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/health", h.HealthCheck)
	router.GET("/health/readiness", h.Readiness)
	router.GET("/health/liveness", h.Liveness)
}
