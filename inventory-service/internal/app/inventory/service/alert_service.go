package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inventario/inventory-service/internal/app/inventory/config"
	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/repository"
	"inventario/inventory-service/internal/app/inventory/util"
	"inventario/pkg/logger"
	"inventario/pkg/metrics"

	"github.com/google/uuid"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// alertRule - условие срабатывания алерта и выборка товаров под него
type alertRule struct {
	alertType entity.AlertType
	scan      func(ctx context.Context) ([]entity.Product, error)
	message   func(p entity.Product) string
}

// AlertService генерирует алерты по остаткам с дедупликацией по окну
// и отдает последние алерты
type AlertService struct {
	productRepo repository.ProductRepository
	alertRepo   repository.AlertRepository
	runRepo     repository.AlertRunRepository
	publisher   util.MessagePublisher
	cfg         config.AlertsConfig
	rules       []alertRule
	now         func() time.Time
}

func NewAlertService(
	productRepo repository.ProductRepository,
	alertRepo repository.AlertRepository,
	runRepo repository.AlertRunRepository,
	publisher util.MessagePublisher,
	cfg config.AlertsConfig,
) *AlertService {
	s := &AlertService{
		productRepo: productRepo,
		alertRepo:   alertRepo,
		runRepo:     runRepo,
		publisher:   publisher,
		cfg:         cfg,
		now:         time.Now,
	}

	// Товар с нулевым остатком проходит оба правила и получает оба алерта
	s.rules = []alertRule{
		{
			alertType: entity.AlertTypeLowStock,
			scan:      productRepo.ListLowStock,
			message:   lowStockMessage,
		},
		{
			alertType: entity.AlertTypeOutOfStock,
			scan:      productRepo.ListOutOfStock,
			message:   outOfStockMessage,
		},
	}

	return s
}

func lowStockMessage(p entity.Product) string {
	return fmt.Sprintf("Stock bajo: %s (Código: %s) - Stock actual: %d, Mínimo: %d",
		p.Name, p.Code, p.StockActual, p.StockMinimo)
}

func outOfStockMessage(p entity.Product) string {
	return fmt.Sprintf("STOCK AGOTADO: %s (Código: %s) - Stock actual: %d - Reabastecimiento urgente requerido",
		p.Name, p.Code, p.StockActual)
}

// GenerateAlerts выполняет один проход по всем правилам.
// Ошибка отдельного товара или выборки не прерывает проход:
// возвращается число созданных алертов и ошибка, оборачивающая
// ErrPartialFailure (или ErrStoreUnavailable, если не создано ни одного
// алерта из-за недоступности БД).
func (s *AlertService) GenerateAlerts(ctx context.Context, trigger entity.AlertTrigger) (int, error) {
	startedAt := s.now()
	timer := metrics.NewTimer()
	since := startedAt.Add(-s.cfg.DedupWindow)

	created := 0
	var errs []error

	for _, rule := range s.rules {
		products, err := rule.scan(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", rule.alertType, err))
			continue
		}

		for _, product := range products {
			ok, err := s.raise(ctx, rule, product, since)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s for product %d: %w", rule.alertType, product.ID, err))
				continue
			}
			if ok {
				created++
			}
		}
	}

	err := passError(created, errs)
	s.finishRun(ctx, trigger, startedAt, timer, created, err)

	return created, err
}

// raise создает алерт, если за окно дедупликации такого же не было
func (s *AlertService) raise(ctx context.Context, rule alertRule, product entity.Product, since time.Time) (bool, error) {
	alert := &entity.Alert{
		ProductID: product.ID,
		Type:      rule.alertType,
		Message:   rule.message(product),
		CreatedAt: s.now(),
	}

	if s.cfg.SerializeDedup {
		created, err := s.alertRepo.CreateIfAbsent(ctx, alert, since)
		if err != nil || !created {
			return false, err
		}
	} else {
		// Проверка и вставка не атомарны: параллельные проходы могут создать дубль
		existing, err := s.alertRepo.FindRecent(ctx, product.ID, rule.alertType, since)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}
		if err := s.alertRepo.Create(ctx, alert); err != nil {
			return false, err
		}
	}

	metrics.InventoryAlertsCreated.WithLabelValues(string(rule.alertType)).Inc()
	s.publishAlertEvent(ctx, alert, product)

	return true, nil
}

func passError(created int, errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	joined := errors.Join(errs...)
	if created == 0 && errors.Is(joined, repository.ErrStoreUnavailable) {
		return fmt.Errorf("alert generation: %w: %w", ErrStoreUnavailable, joined)
	}
	return fmt.Errorf("alert generation: %w: %w", ErrPartialFailure, joined)
}

func (s *AlertService) finishRun(ctx context.Context, trigger entity.AlertTrigger, startedAt time.Time, timer *metrics.Timer, created int, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	metrics.InventoryAlertScans.WithLabelValues(string(trigger), status).Inc()
	metrics.InventoryAlertScanDuration.WithLabelValues(string(trigger)).Observe(timer.Seconds())

	run := &entity.AlertRun{
		Trigger:    trigger,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
		DurationMs: timer.Duration().Milliseconds(),
		Created:    created,
		Failed:     err != nil,
	}

	if err != nil {
		run.Error = err.Error()
		logger.Warn().
			Err(err).
			Str("trigger", string(trigger)).
			Int("created", created).
			Msg("Alert generation finished with errors")
	} else {
		logger.Info().
			Str("trigger", string(trigger)).
			Int("created", created).
			Int64("duration_ms", run.DurationMs).
			Msg("Alert generation finished")
	}

	if err := s.runRepo.Record(ctx, run); err != nil {
		logger.Warn().Err(err).Msg("Failed to record alert run")
	}
}

// ListAlerts возвращает алерты за ListWindow, новые первыми.
// При GenerateOnRead сначала запускается проход; его ошибка только логируется.
func (s *AlertService) ListAlerts(ctx context.Context) ([]entity.AlertWithProduct, error) {
	if s.cfg.GenerateOnRead {
		if _, err := s.GenerateAlerts(ctx, entity.AlertTriggerOnRead); err != nil {
			logger.Warn().Err(err).Msg("Alert generation before listing failed, returning stored alerts")
		}
	}

	alerts, err := s.alertRepo.ListRecent(ctx, s.now().Add(-s.cfg.ListWindow), s.cfg.ListLimit)
	if err != nil {
		return nil, storeError("failed to list alerts", err)
	}
	return alerts, nil
}

// MarkAlertRead не проверяет существование алерта
func (s *AlertService) MarkAlertRead(ctx context.Context, id uint) error {
	if err := s.alertRepo.MarkRead(ctx, id); err != nil {
		return storeError("failed to mark alert as read", err)
	}
	return nil
}

// ListRuns возвращает последние записи журнала генератора
func (s *AlertService) ListRuns(ctx context.Context, limit int64) ([]entity.AlertRun, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := s.runRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert runs: %w", err)
	}
	return runs, nil
}

func (s *AlertService) publishAlertEvent(ctx context.Context, alert *entity.Alert, product entity.Product) {
	event := entity.AlertEvent{
		EventID:     uuid.NewString(),
		EventType:   entity.EventAlertCreated,
		AlertID:     alert.ID,
		ProductID:   product.ID,
		ProductCode: product.Code,
		Type:        alert.Type,
		Message:     alert.Message,
		StockActual: product.StockActual,
		StockMinimo: product.StockMinimo,
		Timestamp:   alert.CreatedAt.UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal alert event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.FormatUint(uint64(product.ID), 10), data); err != nil {
		logger.Warn().
			Err(err).
			Uint("alert_id", alert.ID).
			Uint("product_id", product.ID).
			Msg("Failed to publish alert event")
	}
}
