package repository

import (
	"context"
	"errors"
	"fmt"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/pkg/metrics"

	"gorm.io/gorm"
)

const serviceName = "inventory-service"

const productWithCategorySelect = "p.*, c.nombre AS categoria_nombre"

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create product: %w", translateError(err))
	}
	return nil
}

// GetByID получает товар по ID, в том числе неактивный
func (r *productRepository) GetByID(ctx context.Context, id uint) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", translateError(err))
	}
	return &product, nil
}

// GetActiveWithCategory получает активный товар с названием категории (LEFT JOIN)
func (r *productRepository) GetActiveWithCategory(ctx context.Context, id uint) (*entity.ProductWithCategory, error) {
	return r.getWithCategory(ctx, id, true)
}

func (r *productRepository) getWithCategory(ctx context.Context, id uint, activeOnly bool) (*entity.ProductWithCategory, error) {
	query := r.withCategory(ctx).Where("p.id = ?", id)
	if activeOnly {
		query = query.Where("p.activo = ?", true)
	}

	var product entity.ProductWithCategory
	if err := query.Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", translateError(err))
	}
	return &product, nil
}

// ListActiveWithCategory получает все активные товары, отсортированные по названию
func (r *productRepository) ListActiveWithCategory(ctx context.Context) ([]entity.ProductWithCategory, error) {
	var products []entity.ProductWithCategory
	err := r.withCategory(ctx).
		Where("p.activo = ?", true).
		Order("p.nombre").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", translateError(err))
	}
	return products, nil
}

// FindActiveByCode ищет активный товар с таким кодом, кроме excludeID
func (r *productRepository) FindActiveByCode(ctx context.Context, code string, excludeID uint) (*entity.Product, error) {
	query := r.db.WithContext(ctx).Where("codigo = ? AND activo = ?", code, true)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var product entity.Product
	if err := query.Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by code: %w", translateError(err))
	}
	return &product, nil
}

// ApplyUpdate обновляет только поля из патча через Updates(map),
// чтобы нулевые значения и NULL тоже записывались
func (r *productRepository) ApplyUpdate(ctx context.Context, id uint, patch entity.ProductPatch) (*entity.ProductWithCategory, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "productos")
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	timer.ObserveDuration()

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return nil, fmt.Errorf("failed to update product: %w", translateError(result.Error))
	}

	// RowsAffected не проверяем: MySQL возвращает 0, если значения не изменились
	return r.getWithCategory(ctx, id, false)
}

// ListLowStock - активные товары с stock_actual <= stock_minimo
func (r *productRepository) ListLowStock(ctx context.Context) ([]entity.Product, error) {
	return r.scan(ctx, "activo = ? AND stock_actual <= stock_minimo", true)
}

// ListOutOfStock - активные товары с нулевым остатком
func (r *productRepository) ListOutOfStock(ctx context.Context) ([]entity.Product, error) {
	return r.scan(ctx, "activo = ? AND stock_actual = ?", true, 0)
}

func (r *productRepository) scan(ctx context.Context, condition string, args ...interface{}) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "productos")
	defer timer.ObserveDuration()

	var products []entity.Product
	if err := r.db.WithContext(ctx).Where(condition, args...).Order("id").Find(&products).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to scan stock levels: %w", translateError(err))
	}
	return products, nil
}

func (r *productRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("productos AS p").
		Select(productWithCategorySelect).
		Joins("LEFT JOIN categorias c ON c.id = p.categoria_id")
}
