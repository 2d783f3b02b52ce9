package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventario/pkg/logger"
	"inventario/pkg/metrics"
)

const (
	ServiceName = "inventory-service"
	apiVersion  = "1.0.0"
)

// SetupRoutes настраивает все маршруты Inventory Service.
// authMiddleware == nil отключает проверку JWT (JWT_SECRET не задан)
func SetupRoutes(
	inventoryHandler *InventoryHandler,
	alertHandler *AlertHandler,
	healthHandler *HealthCheckHandler,
	authMiddleware *AuthMiddleware,
	allowedRoles []string,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware(ServiceName))

	// Фронтенд открывается с любого origin
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader},
		MaxAge:          300,
	}))

	router.GET("/", apiInfo)

	if healthHandler != nil {
		healthHandler.RegisterRoutes(router)
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Изменяющие запросы защищаются только при включенной аутентификации
	var guard []gin.HandlerFunc
	if authMiddleware != nil {
		guard = append(guard, authMiddleware.Authenticate(), authMiddleware.RequireRole(allowedRoles...))
	}
	protected := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	api := router.Group("/api")
	{
		api.GET("/productos", inventoryHandler.ListProducts)
		api.GET("/productos/:id", inventoryHandler.GetProduct)
		api.POST("/productos", protected(inventoryHandler.CreateProduct)...)
		api.PUT("/productos/:id", protected(inventoryHandler.UpdateProduct)...)

		api.GET("/categorias", inventoryHandler.ListCategories)

		api.GET("/alertas", alertHandler.ListAlerts)
		api.GET("/alertas/ejecuciones", alertHandler.ListRuns)
		api.POST("/alertas/generar", protected(alertHandler.Generate)...)
		api.PUT("/alertas/:id/leer", protected(alertHandler.MarkRead)...)
	}

	return router
}

func apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Sistema de Gestión de Inventario Inteligente",
		"version": apiVersion,
		"endpoints": gin.H{
			"productos":   "/api/productos",
			"categorias":  "/api/categorias",
			"alertas":     "/api/alertas",
			"ejecuciones": "/api/alertas/ejecuciones",
		},
	})
}
