package util

import (
	"context"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
)

// CategoryCache - кеш списка категорий
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	// GetCategories возвращает nil, nil при промахе
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher отправляет события в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
