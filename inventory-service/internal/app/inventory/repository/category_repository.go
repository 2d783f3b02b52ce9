package repository

import (
	"context"
	"errors"
	"fmt"

	"inventario/inventory-service/internal/app/inventory/entity"

	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", translateError(err))
	}
	return &category, nil
}

// GetAll получает все категории, отсортированные по названию
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if err := r.db.WithContext(ctx).Order("nombre").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", translateError(err))
	}
	return categories, nil
}
