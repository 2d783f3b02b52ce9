package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"inventario/inventory-service/internal/app/inventory/service"
	"inventario/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgStoreUnavailable = "Error de conexión a la base de datos"
	msgInternal         = "Error interno del servidor"
)

// statusFor сопоставляет ошибку сервиса с HTTP статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage скрывает детали ошибок хранилища от клиента
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusServiceUnavailable:
		return msgStoreUnavailable
	case http.StatusInternalServerError:
		return msgInternal
	default:
		return err.Error()
	}
}

// respondError пишет {"error": ...} и кладет исходную ошибку в c.Errors для логгера
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}

	c.JSON(status, gin.H{"error": publicMessage(status, err)})
}

// parseID разбирает положительный числовой :id
func parseID(c *gin.Context) (uint, bool) {
	id, ok := parseUintParam(c)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// parseUintParam разбирает :id, ноль допустим
func parseUintParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// newValidator возвращает валидатор, который называет поля по json тегам
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
