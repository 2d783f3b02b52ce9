package service

import (
	"errors"
	"fmt"

	"inventario/inventory-service/internal/app/inventory/repository"
)

var (
	// Базовые виды ошибок, по ним handler выбирает HTTP статус
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrPartialFailure   = errors.New("partial failure")

	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCodeConflict     = fmt.Errorf("%w: a product with this codigo already exists", ErrConflict)
	ErrNoFieldsToUpdate = fmt.Errorf("%w: no fields to update", ErrInvalidRequest)

	errNotInteger       = errors.New("not an integer")
	errNumberOutOfRange = errors.New("number out of range")
)

// invalidf возвращает InvalidRequest с описанием поля
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// storeError помечает недоступность хранилища как ErrStoreUnavailable,
// остальные ошибки оборачивает как есть
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
