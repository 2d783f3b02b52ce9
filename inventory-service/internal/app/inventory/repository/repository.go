package repository

import (
	"context"
	"errors"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ProductRepository - доступ к таблице productos
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID ищет товар независимо от флага activo
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	GetActiveWithCategory(ctx context.Context, id uint) (*entity.ProductWithCategory, error)
	ListActiveWithCategory(ctx context.Context) ([]entity.ProductWithCategory, error)
	// FindActiveByCode возвращает nil, nil если код свободен; excludeID = 0 - без исключения
	FindActiveByCode(ctx context.Context, code string, excludeID uint) (*entity.Product, error)
	// ApplyUpdate пишет только поля патча и возвращает перечитанный товар с категорией
	ApplyUpdate(ctx context.Context, id uint, patch entity.ProductPatch) (*entity.ProductWithCategory, error)
	ListLowStock(ctx context.Context) ([]entity.Product, error)
	ListOutOfStock(ctx context.Context) ([]entity.Product, error)
}

// CategoryRepository - доступ к таблице categorias (только чтение)
type CategoryRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
}

// AlertRepository - доступ к таблице alertas
type AlertRepository interface {
	// FindRecent возвращает nil, nil если алерта нужного типа после since нет
	FindRecent(ctx context.Context, productID uint, alertType entity.AlertType, since time.Time) (*entity.Alert, error)
	Create(ctx context.Context, alert *entity.Alert) error
	// CreateIfAbsent выполняет проверку и вставку в одной транзакции
	// под блокировкой строки товара; false - алерт уже был
	CreateIfAbsent(ctx context.Context, alert *entity.Alert, since time.Time) (bool, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]entity.AlertWithProduct, error)
	// MarkRead не проверяет существование алерта
	MarkRead(ctx context.Context, id uint) error
}

// AlertRunRepository - журнал проходов генератора алертов
type AlertRunRepository interface {
	Record(ctx context.Context, run *entity.AlertRun) error
	ListRecent(ctx context.Context, limit int64) ([]entity.AlertRun, error)
}
