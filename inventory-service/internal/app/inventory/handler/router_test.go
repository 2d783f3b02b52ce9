package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inventario/inventory-service/internal/app/inventory/config"
	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/repository"
	"inventario/inventory-service/internal/app/inventory/repository/memstore"
	"inventario/inventory-service/internal/app/inventory/service"
	"inventario/inventory-service/internal/app/inventory/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// newMemRouter собирает полный роутер поверх in-memory хранилища
func newMemRouter(t *testing.T, auth *AuthMiddleware) (*gin.Engine, *memstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	store.AddCategory(entity.Category{ID: 1, Name: "Ferretería"})

	alertsCfg := config.AlertsConfig{
		DedupWindow:    24 * time.Hour,
		ListWindow:     7 * 24 * time.Hour,
		ListLimit:      20,
		GenerateOnRead: true,
	}

	productSvc := service.NewProductService(store.Products(), store.Categories(), util.NoopPublisher{})
	categorySvc := service.NewCategoryService(store.Categories(), util.NoopCategoryCache{}, time.Minute)
	alertSvc := service.NewAlertService(store.Products(), store.Alerts(),
		repository.NewNoopAlertRunRepository(), util.NoopPublisher{}, alertsCfg)

	router := SetupRoutes(
		NewInventoryHandler(productSvc, categorySvc),
		NewAlertHandler(alertSvc),
		nil,
		auth,
		[]string{"admin", "manager"},
	)

	return router, store
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := JWTClaims{
		UserID:   "user-1",
		Email:    "almacen@example.com",
		RoleName: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func TestRouter_APIInfo(t *testing.T) {
	// Arrange
	router, _ := newMemRouter(t, nil)

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body["endpoints"], "alertas")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	// Arrange
	router, _ := newMemRouter(t, nil)

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_RequestIDIsEchoed(t *testing.T) {
	// Arrange
	router, _ := newMemRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/categorias", nil)
	req.Header.Set("X-Request-ID", "req-42")

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestRouter_LowStockAlertListedOnce(t *testing.T) {
	// Arrange
	router, store := newMemRouter(t, nil)
	store.AddProduct(entity.Product{
		Code: "A1", Name: "Tornillo", Price: decimal.NewFromInt(1),
		StockActual: 3, StockMinimo: 5, Active: true,
	})

	// Act
	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/alertas", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/alertas", nil))

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, float64(1), decodeBody(t, first)["total"])
	assert.Equal(t, float64(1), decodeBody(t, second)["total"])
	assert.Len(t, store.AllAlerts(), 1)
}

func TestRouter_UpdateProductWithForm(t *testing.T) {
	// Arrange
	router, store := newMemRouter(t, nil)
	categoryID := uint(1)
	p := store.AddProduct(entity.Product{
		Code: "A1", Name: "Tornillo", Price: decimal.RequireFromString("9.99"),
		StockActual: 10, StockMinimo: 5, CategoryID: &categoryID, Active: true,
	})

	form := url.Values{"categoria_id": {""}, "precio": {"12.50"}}
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/productos/%d", p.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	updated, ok := store.Product(p.ID)
	require.True(t, ok)
	assert.Nil(t, updated.CategoryID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(updated.Price))
	assert.Equal(t, 10, updated.StockActual)
	assert.Equal(t, "Tornillo", updated.Name)
}

func TestRouter_UpdateProductCodeConflict(t *testing.T) {
	// Arrange
	router, store := newMemRouter(t, nil)
	store.AddProduct(entity.Product{Code: "A1", Name: "Tornillo", Price: decimal.NewFromInt(1), StockMinimo: 5, Active: true})
	second := store.AddProduct(entity.Product{Code: "B2", Name: "Clavo", Price: decimal.NewFromInt(2), StockMinimo: 5, Active: true})

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPut, fmt.Sprintf("/api/productos/%d", second.ID), `{"codigo": "A1", "nombre": "Otro"}`))

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	unchanged, _ := store.Product(second.ID)
	assert.Equal(t, "B2", unchanged.Code)
	assert.Equal(t, "Clavo", unchanged.Name)
}

func TestRouter_UpdateMissingProduct(t *testing.T) {
	// Arrange
	router, _ := newMemRouter(t, nil)

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPut, "/api/productos/404", `{"precio": 1}`))

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MarkMissingAlertReadSucceeds(t *testing.T) {
	for _, path := range []string{"/api/alertas/999/leer", "/api/alertas/0/leer"} {
		t.Run(path, func(t *testing.T) {
			// Arrange
			router, _ := newMemRouter(t, nil)

			// Act
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, nil))

			// Assert
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

// ===================== JWT =====================

func TestRouter_Auth_ReadsArePublic(t *testing.T) {
	// Arrange
	router, _ := newMemRouter(t, NewAuthMiddleware(testJWTSecret))

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/productos", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Auth_MutationsRequireToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"role not allowed", "Bearer " + signToken(t, "viewer"), http.StatusForbidden},
		{"manager allowed", "Bearer " + signToken(t, "manager"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router, _ := newMemRouter(t, NewAuthMiddleware(testJWTSecret))
			req := httptest.NewRequest(http.MethodPost, "/api/alertas/generar", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			// Act
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_Auth_CreateProductWithToken(t *testing.T) {
	// Arrange
	router, store := newMemRouter(t, NewAuthMiddleware(testJWTSecret))
	req := jsonRequest(http.MethodPost, "/api/productos",
		`{"codigo": "C3", "nombre": "Tuerca", "precio": "0.25", "categoria_id": 1}`)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin"))

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	require.Equal(t, http.StatusCreated, w.Code)
	product := decodeBody(t, w)["producto"].(map[string]interface{})
	assert.Equal(t, "Ferretería", product["categoria_nombre"])
	assert.Equal(t, float64(5), product["stock_minimo"])

	created, ok := store.Product(uint(product["id"].(float64)))
	require.True(t, ok)
	assert.Equal(t, "C3", created.Code)
}
