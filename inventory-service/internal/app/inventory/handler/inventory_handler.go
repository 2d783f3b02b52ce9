package handler

import (
	"net/http"
	"net/url"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxFormMemory = 16 << 20

// InventoryHandler обрабатывает запросы к товарам и категориям
type InventoryHandler struct {
	productService  service.ProductServiceInterface
	categoryService service.CategoryServiceInterface
	validator       *validator.Validate
}

// NewInventoryHandler создает обработчик товаров и категорий
func NewInventoryHandler(
	productService service.ProductServiceInterface,
	categoryService service.CategoryServiceInterface,
) *InventoryHandler {
	return &InventoryHandler{
		productService:  productService,
		categoryService: categoryService,
		validator:       newValidator(),
	}
}

// ListProducts обрабатывает GET /api/productos
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if products == nil {
		products = []entity.ProductWithCategory{}
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Success:  true,
		Products: products,
		Total:    len(products),
	})
}

// GetProduct обрабатывает GET /api/productos/:id
func (h *InventoryHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{Success: true, Product: product})
}

// CreateProduct обрабатывает POST /api/productos
// Принимает JSON, multipart/form-data и x-www-form-urlencoded
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest

	if isForm(c) {
		form, err := readForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
			return
		}
		req = entity.CreateProductRequestFromForm(form)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Валидация
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.ProductResponse{
		Success: true,
		Message: "Producto creado exitosamente",
		Product: product,
	})
}

// UpdateProduct обрабатывает PUT /api/productos/:id
// Меняются только переданные поля
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req entity.UpdateProductRequest

	if isForm(c) {
		form, err := readForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
			return
		}
		req = entity.UpdateProductRequestFromForm(form)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{
		Success: true,
		Message: "Producto actualizado exitosamente",
		Product: product,
	})
}

// ListCategories обрабатывает GET /api/categorias
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if categories == nil {
		categories = []entity.Category{}
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Success:    true,
		Categories: categories,
		Total:      len(categories),
	})
}

func isForm(c *gin.Context) bool {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

// readForm возвращает только поля тела, без query string
func readForm(c *gin.Context) (url.Values, error) {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		return c.Request.PostForm, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return c.Request.PostForm, nil
}
