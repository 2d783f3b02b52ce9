package service

import (
	"context"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/repository"
	"inventario/inventory-service/internal/app/inventory/util"
	"inventario/pkg/logger"
)

// CategoryService отдает справочник категорий через кеш Redis
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        util.CategoryCache
	ttl          time.Duration
}

func NewCategoryService(categoryRepo repository.CategoryRepository, cache util.CategoryCache, ttl time.Duration) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        cache,
		ttl:          ttl,
	}
}

// ListCategories сначала читает кеш; ошибки кеша не прерывают запрос
func (s *CategoryService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories from cache")
	} else if len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, storeError("failed to get categories", err)
	}

	if err := s.cache.SetCategories(ctx, categories, s.ttl); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}
