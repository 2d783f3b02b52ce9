package metrics

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinPrometheusMiddleware_UsesRouteTemplate(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/api/productos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	ok := HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/api/productos/:id", "200")
	unmatched := HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "unmatched", "404")
	okBefore, unmatchedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(unmatched)

	// Act
	for _, path := range []string{"/api/productos/1", "/api/productos/2", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// Assert
	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, unmatchedBefore+1, testutil.ToFloat64(unmatched))
}

func TestGinPrometheusMiddleware_SkipsLivenessAndMetrics(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-skip"))
	router.GET("/health/liveness", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/liveness", nil))

	// Assert
	counter := HttpRequestsTotal.WithLabelValues("metrics-skip", http.MethodGet, "/health/liveness", "200")
	assert.Equal(t, float64(0), testutil.ToFloat64(counter))
}

func TestKafkaProduceTimer(t *testing.T) {
	// Arrange
	produced := KafkaMessagesProduced.WithLabelValues("metrics-test", "topic-a")
	failed := KafkaErrors.WithLabelValues("metrics-test", "topic-a", "produce")
	producedBefore, failedBefore := testutil.ToFloat64(produced), testutil.ToFloat64(failed)

	// Act
	NewKafkaProduceTimer("metrics-test", "topic-a").Success()
	NewKafkaProduceTimer("metrics-test", "topic-a").Error()

	// Assert
	assert.Equal(t, producedBefore+1, testutil.ToFloat64(produced))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestRecordDbPoolStats(t *testing.T) {
	// Act
	RecordDbPoolStats("metrics-test", sql.DBStats{Idle: 3, InUse: 2})

	// Assert
	assert.Equal(t, float64(3), testutil.ToFloat64(DbConnectionsOpen.WithLabelValues("metrics-test", "idle")))
	assert.Equal(t, float64(2), testutil.ToFloat64(DbConnectionsOpen.WithLabelValues("metrics-test", "in_use")))
}
