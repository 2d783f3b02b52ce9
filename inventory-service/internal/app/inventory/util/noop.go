package util

import (
	"context"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
)

// NoopCategoryCache используется при REDIS_ENABLED=false: каждый запрос идет в БД
type NoopCategoryCache struct{}

func (NoopCategoryCache) SetCategories(context.Context, []entity.Category, time.Duration) error {
	return nil
}

func (NoopCategoryCache) GetCategories(context.Context) ([]entity.Category, error) {
	return nil, nil
}

func (NoopCategoryCache) DeleteCategories(context.Context) error { return nil }

func (NoopCategoryCache) Close() error { return nil }

// NoopPublisher используется при KAFKA_ENABLED=false
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(context.Context, string, []byte) error { return nil }

func (NoopPublisher) Close() error { return nil }
