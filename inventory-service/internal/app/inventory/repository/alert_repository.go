package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository создает новый репозиторий алертов
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// FindRecent ищет алерт заданного типа по товару, созданный позже since
func (r *alertRepository) FindRecent(ctx context.Context, productID uint, alertType entity.AlertType, since time.Time) (*entity.Alert, error) {
	alert, err := findRecent(r.db.WithContext(ctx), productID, alertType, since)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent alert: %w", translateError(err))
	}
	return alert, nil
}

func findRecent(db *gorm.DB, productID uint, alertType entity.AlertType, since time.Time) (*entity.Alert, error) {
	var alert entity.Alert
	err := db.
		Where("producto_id = ? AND tipo_alerta = ? AND fecha_alerta > ?", productID, alertType, since).
		Order("fecha_alerta DESC").
		Take(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// Create сохраняет новый алерт
func (r *alertRepository) Create(ctx context.Context, alert *entity.Alert) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "alertas")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create alert: %w", translateError(err))
	}
	return nil
}

// CreateIfAbsent блокирует строку товара (SELECT ... FOR UPDATE), поэтому
// параллельные проходы по одному товару выполняют проверку и вставку по очереди
func (r *alertRepository) CreateIfAbsent(ctx context.Context, alert *entity.Alert, since time.Time) (bool, error) {
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product entity.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", alert.ProductID).
			Take(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		existing, err := findRecent(tx, alert.ProductID, alert.Type, since)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		if err := tx.Create(alert).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return false, err
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return false, fmt.Errorf("failed to create alert: %w", translateError(err))
	}

	return created, nil
}

// ListRecent возвращает алерты новее since с названием и кодом товара
func (r *alertRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]entity.AlertWithProduct, error) {
	var alerts []entity.AlertWithProduct
	err := r.db.WithContext(ctx).
		Table("alertas AS a").
		Select("a.*, p.nombre AS producto_nombre, p.codigo AS producto_codigo").
		Joins("JOIN productos p ON p.id = a.producto_id").
		Where("a.fecha_alerta > ?", since).
		Order("a.fecha_alerta DESC, a.id DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", translateError(err))
	}
	return alerts, nil
}

// MarkRead выставляет leida = true без проверки существования алерта
func (r *alertRepository) MarkRead(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Alert{}).
		Where("id = ?", id).
		Update("leida", true).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to mark alert as read: %w", translateError(err))
	}
	return nil
}
