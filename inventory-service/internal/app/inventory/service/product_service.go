package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/repository"
	"inventario/inventory-service/internal/app/inventory/util"
	"inventario/pkg/logger"
	"inventario/pkg/metrics"

	"github.com/google/uuid"
)

// ProductService - операции над товарами: создание, чтение, частичное обновление
// Изменения публикуются в Kafka (PRODUCT_CREATED, PRODUCT_UPDATED)
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	publisher    util.MessagePublisher
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	publisher util.MessagePublisher,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

// CreateProduct создает товар. Обязательны codigo, nombre и precio,
// stock_actual по умолчанию 0, stock_minimo - DefaultStockMinimo
func (s *ProductService) CreateProduct(ctx context.Context, req entity.CreateProductRequest) (*entity.ProductWithCategory, error) {
	product, err := s.createProduct(ctx, req)
	recordMutation("create", err)
	return product, err
}

func (s *ProductService) createProduct(ctx context.Context, req entity.CreateProductRequest) (*entity.ProductWithCategory, error) {
	code := strings.TrimSpace(req.Code.String())
	name := strings.TrimSpace(req.Name.String())
	if code == "" {
		return nil, invalidf("codigo is required")
	}
	if name == "" {
		return nil, invalidf("nombre is required")
	}
	if strings.TrimSpace(req.Price.String()) == "" {
		return nil, invalidf("precio is required")
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Code:        code,
		Name:        name,
		Description: req.Description.String(),
		Price:       price,
		StockMinimo: DefaultStockMinimo,
		ImageURL:    parseImageURL(req.ImageURL),
		Active:      true,
	}

	if req.StockActual != nil {
		if product.StockActual, err = parseStock("stock_actual", *req.StockActual); err != nil {
			return nil, err
		}
	}
	if req.StockMinimo != nil {
		if product.StockMinimo, err = parseStock("stock_minimo", *req.StockMinimo); err != nil {
			return nil, err
		}
	}

	if product.CategoryID, err = parseCategoryID(req.CategoryID); err != nil {
		return nil, err
	}
	if product.CategoryID != nil {
		if err := s.ensureCategoryExists(ctx, *product.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.ensureCodeAvailable(ctx, code, 0); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrCodeConflict
		}
		return nil, storeError("failed to create product", err)
	}

	created, err := s.productRepo.GetActiveWithCategory(ctx, product.ID)
	if err != nil {
		return nil, storeError("failed to reload product", err)
	}

	s.publishProductEvent(ctx, entity.EventProductCreated, created.Product, nil)

	return created, nil
}

// GetProduct возвращает активный товар с названием категории
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*entity.ProductWithCategory, error) {
	product, err := s.productRepo.GetActiveWithCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storeError("failed to get product", err)
	}
	return product, nil
}

// ListProducts возвращает активные товары, отсортированные по названию
func (s *ProductService) ListProducts(ctx context.Context) ([]entity.ProductWithCategory, error) {
	products, err := s.productRepo.ListActiveWithCategory(ctx)
	if err != nil {
		return nil, storeError("failed to list products", err)
	}
	return products, nil
}

// UpdateProduct применяет частичное обновление.
// Все проверки выполняются до записи, при ошибке товар не меняется.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, req entity.UpdateProductRequest) (*entity.ProductWithCategory, error) {
	product, err := s.updateProduct(ctx, id, req)
	recordMutation("update", err)
	return product, err
}

func (s *ProductService) updateProduct(ctx context.Context, id uint, req entity.UpdateProductRequest) (*entity.ProductWithCategory, error) {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storeError("failed to get product", err)
	}

	patch, err := BuildProductPatch(req)
	if err != nil {
		return nil, err
	}

	if patch.Code != nil {
		if err := s.ensureCodeAvailable(ctx, *patch.Code, id); err != nil {
			return nil, err
		}
	}

	if patch.CategoryID.Present() {
		if err := s.ensureCategoryExists(ctx, patch.CategoryID.Value); err != nil {
			return nil, err
		}
	}

	updated, err := s.productRepo.ApplyUpdate(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrCodeConflict
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		}
		return nil, storeError("failed to update product", err)
	}

	s.publishProductEvent(ctx, entity.EventProductUpdated, updated.Product, patch.Fields())

	return updated, nil
}

func (s *ProductService) ensureCodeAvailable(ctx context.Context, code string, excludeID uint) error {
	existing, err := s.productRepo.FindActiveByCode(ctx, code, excludeID)
	if err != nil {
		return storeError("failed to check codigo", err)
	}
	if existing != nil {
		return ErrCodeConflict
	}
	return nil
}

func (s *ProductService) ensureCategoryExists(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return invalidf("categoria_id %d does not exist", id)
		}
		return storeError("failed to verify category", err)
	}
	return nil
}

// publishProductEvent не возвращает ошибку: товар уже сохранен
func (s *ProductService) publishProductEvent(ctx context.Context, eventType string, product entity.Product, fields []string) {
	event := entity.ProductEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		ProductID:   product.ID,
		Code:        product.Code,
		Name:        product.Name,
		Price:       product.Price,
		StockActual: product.StockActual,
		StockMinimo: product.StockMinimo,
		Fields:      fields,
		Timestamp:   time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal product event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.FormatUint(uint64(product.ID), 10), data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Uint("product_id", product.ID).
			Msg("Failed to publish product event")
	}
}

func recordMutation(operation string, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		status = "rejected"
	default:
		status = "failed"
	}
	metrics.InventoryProductMutations.WithLabelValues(operation, status).Inc()
}
