package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/orderdesk/internal/clock"
	"github.com/agamariel/orderdesk/internal/models"
	"github.com/agamariel/orderdesk/internal/server/storage"
)

var (
	ErrEmptyOrderNumber = errors.New("order number is required")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrInvalidDate      = errors.New("invalid order date")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
	ErrDuplicateProduct = errors.New("duplicate product in order items")
	ErrOrderNotFound    = storage.ErrOrderNotFound
)

// OrderService определяет интерфейс работы с заказами.
type OrderService interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	CreateOrder(ctx context.Context, payload *models.OrderPayload) (*models.Order, error)
	UpdateOrder(ctx context.Context, id int64, payload *models.OrderPayload) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	store storage.OrderStore
	clk   clock.Clock
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(store storage.OrderStore, clk clock.Clock) *OrderServiceImpl {
	return &OrderServiceImpl{store: store, clk: clk}
}

// ListOrders возвращает все заказы.
func (s *OrderServiceImpl) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder возвращает заказ с позициями.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// CreateOrder проверяет тело запроса и сохраняет новый заказ.
// Итоговая сумма всегда пересчитывается на сервере по позициям.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, payload *models.OrderPayload) (*models.Order, error) {
	order, err := s.buildOrder(payload)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// UpdateOrder проверяет тело запроса и перезаписывает существующий заказ.
func (s *OrderServiceImpl) UpdateOrder(ctx context.Context, id int64, payload *models.OrderPayload) (*models.Order, error) {
	order, err := s.buildOrder(payload)
	if err != nil {
		return nil, err
	}
	order.ID = id

	if err := s.store.Update(ctx, order); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

// DeleteOrder удаляет заказ.
func (s *OrderServiceImpl) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// buildOrder валидирует payload и собирает заказ с серверным итогом.
func (s *OrderServiceImpl) buildOrder(payload *models.OrderPayload) (*models.Order, error) {
	if strings.TrimSpace(payload.OrderNumber) == "" {
		return nil, ErrEmptyOrderNumber
	}

	status := payload.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, payload.Status)
	}

	date := models.NormalizeDate(payload.Date)
	if date == "" {
		date = s.clk.Now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, payload.Date)
	}

	seen := make(map[int64]struct{}, len(payload.Items))
	for _, item := range payload.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, item.ProductID)
		}
		if _, ok := seen[item.ProductID]; ok {
			return nil, fmt.Errorf("%w: product %d", ErrDuplicateProduct, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}

	items := payload.Items
	if items == nil {
		items = []models.OrderItem{}
	}

	return &models.Order{
		OrderNumber: strings.TrimSpace(payload.OrderNumber),
		Date:        date,
		Status:      status,
		TotalPrice:  models.SumItems(items).Round(2),
		Items:       items,
	}, nil
}
