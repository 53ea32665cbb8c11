package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/agamariel/orderdesk/internal/models"
)

// MemoryStore хранит заказы и каталог в памяти. Используется, когда
// PostgreSQL не настроен, и в тестах.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	orders   map[int64]models.Order
	products []models.Product
}

// NewMemoryStore создаёт хранилище с предзаполненным каталогом.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		orders: make(map[int64]models.Order),
		products: []models.Product{
			{ID: 1, Name: "Widget", UnitPrice: decimal.RequireFromString("9.99")},
			{ID: 2, Name: "Gadget", UnitPrice: decimal.RequireFromString("5.50")},
			{ID: 3, Name: "Gizmo", UnitPrice: decimal.RequireFromString("10.00")},
			{ID: 4, Name: "Doohickey", UnitPrice: decimal.RequireFromString("2.25")},
		},
	}
}

// List возвращает все заказы, отсортированные по идентификатору.
// Позиции в список не включаются, как и в Postgres-реализации.
func (s *MemoryStore) List(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		o.Items = nil
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// Get возвращает заказ по идентификатору.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

// Create сохраняет новый заказ и присваивает ему идентификатор.
func (s *MemoryStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.nextID
	s.nextID++

	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	s.orders[order.ID] = stored
	return nil
}

// Update перезаписывает существующий заказ.
func (s *MemoryStore) Update(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}

	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	s.orders[order.ID] = stored
	return nil
}

// Delete удаляет заказ.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

// ListProducts возвращает каталог.
func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...), nil
}
