// Package memstore - хранилище в памяти с той же семантикой, что и gorm репозитории.
// Используется в тестах сервисов и обработчиков.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/repository"
)

type Store struct {
	mu         sync.Mutex
	products   map[uint]entity.Product
	categories map[uint]entity.Category
	alerts     []entity.Alert

	lastProductID uint
	lastAlertID   uint
}

func New() *Store {
	return &Store{
		products:   make(map[uint]entity.Product),
		categories: make(map[uint]entity.Category),
	}
}

// AddCategory добавляет категорию (в сервисе категории только читаются)
func (s *Store) AddCategory(category entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = category
}

// AddProduct сохраняет товар как есть; ID выдается, если не задан
func (s *Store) AddProduct(product entity.Product) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertProduct(product)
}

// Product возвращает сохраненное состояние товара
func (s *Store) Product(id uint) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// AddAlert сохраняет алерт как есть (для подготовки данных в тестах)
func (s *Store) AddAlert(alert entity.Alert) entity.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertAlert(&alert)
	return alert
}

// AllAlerts возвращает копию всех алертов в порядке создания
func (s *Store) AllAlerts() []entity.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s} }
func (s *Store) Alerts() repository.AlertRepository { return alertRepo{s} }

func (s *Store) insertProduct(product entity.Product) entity.Product {
	if product.ID == 0 {
		s.lastProductID++
		product.ID = s.lastProductID
	} else if product.ID > s.lastProductID {
		s.lastProductID = product.ID
	}
	s.products[product.ID] = product
	return product
}

func (s *Store) insertAlert(alert *entity.Alert) {
	if alert.ID == 0 {
		s.lastAlertID++
		alert.ID = s.lastAlertID
	} else if alert.ID > s.lastAlertID {
		s.lastAlertID = alert.ID
	}
	s.alerts = append(s.alerts, *alert)
}

func (s *Store) withCategory(p entity.Product) entity.ProductWithCategory {
	out := entity.ProductWithCategory{Product: p}
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			name := c.Name
			out.CategoryName = &name
		}
	}
	return out
}

func (s *Store) findRecent(productID uint, alertType entity.AlertType, since time.Time) *entity.Alert {
	var found *entity.Alert
	for i := range s.alerts {
		a := s.alerts[i]
		if a.ProductID != productID || a.Type != alertType || !a.CreatedAt.After(since) {
			continue
		}
		if found == nil || a.CreatedAt.After(found.CreatedAt) {
			found = &a
		}
	}
	return found
}

func (s *Store) sortedProducts(match func(entity.Product) bool) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range s.products {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	*product = r.s.insertProduct(*product)
	return nil
}

func (r productRepo) GetByID(_ context.Context, id uint) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r productRepo) GetActiveWithCategory(_ context.Context, id uint) (*entity.ProductWithCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok || !p.Active {
		return nil, repository.ErrProductNotFound
	}
	out := r.s.withCategory(p)
	return &out, nil
}

func (r productRepo) ListActiveWithCategory(_ context.Context) ([]entity.ProductWithCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.ProductWithCategory, 0)
	for _, p := range r.s.sortedProducts(func(p entity.Product) bool { return p.Active }) {
		out = append(out, r.s.withCategory(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r productRepo) FindActiveByCode(_ context.Context, code string, excludeID uint) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matches := r.s.sortedProducts(func(p entity.Product) bool {
		return p.Active && p.Code == code && p.ID != excludeID
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r productRepo) ApplyUpdate(_ context.Context, id uint, patch entity.ProductPatch) (*entity.ProductWithCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	patch.ApplyTo(&p)
	p.UpdatedAt = time.Now()
	r.s.products[id] = p

	out := r.s.withCategory(p)
	return &out, nil
}

func (r productRepo) ListLowStock(_ context.Context) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedProducts(func(p entity.Product) bool { return p.Active && p.IsLowStock() }), nil
}

func (r productRepo) ListOutOfStock(_ context.Context) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedProducts(func(p entity.Product) bool { return p.Active && p.IsOutOfStock() }), nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) GetByID(_ context.Context, id uint) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &c, nil
}

func (r categoryRepo) GetAll(_ context.Context) ([]entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type alertRepo struct{ s *Store }

func (r alertRepo) FindRecent(_ context.Context, productID uint, alertType entity.AlertType, since time.Time) (*entity.Alert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.findRecent(productID, alertType, since), nil
}

func (r alertRepo) Create(_ context.Context, alert *entity.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	r.s.insertAlert(alert)
	return nil
}

// CreateIfAbsent выполняет проверку и вставку под одним мьютексом
func (r alertRepo) CreateIfAbsent(_ context.Context, alert *entity.Alert, since time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[alert.ProductID]; !ok {
		return false, repository.ErrProductNotFound
	}
	if r.s.findRecent(alert.ProductID, alert.Type, since) != nil {
		return false, nil
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	r.s.insertAlert(alert)
	return true, nil
}

func (r alertRepo) ListRecent(_ context.Context, since time.Time, limit int) ([]entity.AlertWithProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.AlertWithProduct, 0)
	for _, a := range r.s.alerts {
		if !a.CreatedAt.After(since) {
			continue
		}
		p, ok := r.s.products[a.ProductID]
		if !ok {
			continue
		}
		out = append(out, entity.AlertWithProduct{Alert: a, ProductName: p.Name, ProductCode: p.Code})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r alertRepo) MarkRead(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.alerts {
		if r.s.alerts[i].ID == id {
			r.s.alerts[i].Read = true
		}
	}
	return nil
}
