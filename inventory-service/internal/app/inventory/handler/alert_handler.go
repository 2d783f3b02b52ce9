package handler

import (
	"net/http"
	"strconv"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
)

// AlertHandler обрабатывает запросы к алертам по остаткам
type AlertHandler struct {
	alertService service.AlertServiceInterface
}

func NewAlertHandler(alertService service.AlertServiceInterface) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ListAlerts обрабатывает GET /api/alertas
// Перед чтением сервис может выполнить проход генератора (ALERTS_GENERATE_ON_READ)
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alertService.ListAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if alerts == nil {
		alerts = []entity.AlertWithProduct{}
	}

	c.JSON(http.StatusOK, entity.AlertListResponse{
		Success: true,
		Alerts:  alerts,
		Total:   len(alerts),
	})
}

// MarkRead обрабатывает PUT /api/alertas/:id/leer
// Несуществующий ID, в том числе 0, не считается ошибкой
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, ok := parseUintParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	if err := h.alertService.MarkAlertRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{
		Success: true,
		Message: "Alerta marcada como leída",
	})
}

// Generate обрабатывает POST /api/alertas/generar
// При частичном сбое отвечает ошибкой, но сообщает число созданных алертов
func (h *AlertHandler) Generate(c *gin.Context) {
	created, err := h.alertService.GenerateAlerts(c.Request.Context(), entity.AlertTriggerManual)
	if err != nil {
		status := statusFor(err)
		_ = c.Error(err)
		c.JSON(status, entity.AlertScanResponse{
			Success: false,
			Created: created,
			Error:   publicMessage(status, err),
		})
		return
	}

	c.JSON(http.StatusOK, entity.AlertScanResponse{Success: true, Created: created})
}

// ListRuns обрабатывает GET /api/alertas/ejecuciones?limit=N
func (h *AlertHandler) ListRuns(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	runs, err := h.alertService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if runs == nil {
		runs = []entity.AlertRun{}
	}

	c.JSON(http.StatusOK, entity.AlertRunListResponse{
		Success: true,
		Runs:    runs,
		Total:   len(runs),
	})
}
