package service

import (
	"context"

	"inventario/inventory-service/internal/app/inventory/entity"
)

type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, req entity.CreateProductRequest) (*entity.ProductWithCategory, error)
	GetProduct(ctx context.Context, id uint) (*entity.ProductWithCategory, error)
	ListProducts(ctx context.Context) ([]entity.ProductWithCategory, error)
	UpdateProduct(ctx context.Context, id uint, req entity.UpdateProductRequest) (*entity.ProductWithCategory, error)
}

type CategoryServiceInterface interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
}

type AlertServiceInterface interface {
	// GenerateAlerts выполняет один проход генератора и возвращает число новых алертов
	GenerateAlerts(ctx context.Context, trigger entity.AlertTrigger) (int, error)
	ListAlerts(ctx context.Context) ([]entity.AlertWithProduct, error)
	MarkAlertRead(ctx context.Context, id uint) error
	ListRuns(ctx context.Context, limit int64) ([]entity.AlertRun, error)
}
