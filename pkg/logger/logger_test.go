package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitWithWriter_AddsServiceAndFiltersLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("inventory-service", "warn", &buf)

	// Act
	Info().Msg("skipped")
	Warn().Str("sku", "A1").Msg("kept")

	// Assert
	entry := lastEntry(t, &buf)
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "inventory-service", entry["service"])
	assert.Equal(t, "A1", entry["sku"])
	assert.NotContains(t, buf.String(), "skipped")
}

func TestInitWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("inventory-service", "verbose", &buf)

	// Act
	Debug().Msg("debug")
	Info().Msg("info")

	// Assert
	assert.NotContains(t, buf.String(), `"debug"`)
	assert.Equal(t, "info", lastEntry(t, &buf)["message"])
}

func TestGinLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		requestID string
		wantLevel string
	}{
		{"ok is info", http.StatusOK, "req-1", "info"},
		{"client error is warn", http.StatusConflict, "", "warn"},
		{"server error is error", http.StatusServiceUnavailable, "", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			InitWithWriter("inventory-service", "debug", &buf)

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(GinLoggerMiddleware())
			router.GET("/api/productos/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/productos/7?x=1", nil)
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}

			// Act
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Assert
			entry := lastEntry(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "/api/productos/7", entry["path"])
			assert.Equal(t, "x=1", entry["query"])
			assert.Equal(t, float64(tt.status), entry["status"])

			echoed := w.Header().Get(RequestIDHeader)
			assert.Equal(t, entry["request_id"], echoed)
			if tt.requestID != "" {
				assert.Equal(t, tt.requestID, echoed)
			} else {
				assert.Len(t, echoed, 36)
			}
		})
	}
}
