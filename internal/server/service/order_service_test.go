package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agamariel/orderdesk/internal/clock"
	"github.com/agamariel/orderdesk/internal/models"
	"github.com/agamariel/orderdesk/internal/server/storage"
)

type mockOrderStore struct {
	ListFunc   func(ctx context.Context) ([]models.Order, error)
	GetFunc    func(ctx context.Context, id int64) (*models.Order, error)
	CreateFunc func(ctx context.Context, order *models.Order) error
	UpdateFunc func(ctx context.Context, order *models.Order) error
	DeleteFunc func(ctx context.Context, id int64) error
}

func (m *mockOrderStore) List(ctx context.Context) ([]models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockOrderStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, storage.ErrOrderNotFound
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	order.ID = 1
	return nil
}

func (m *mockOrderStore) Update(ctx context.Context, order *models.Order) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, order)
	}
	return nil
}

func (m *mockOrderStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

var testClock = clock.NewFixed(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

func validPayload() *models.OrderPayload {
	return &models.OrderPayload{
		OrderNumber: "PO-1",
		Date:        "2024-05-01",
		Status:      models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: 1, Name: "Widget", UnitPrice: decimal.RequireFromString("9.99"), Quantity: 3},
		},
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("computes total server-side", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		order, err := svc.CreateOrder(ctx, validPayload())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := order.TotalPrice.StringFixed(2); got != "29.97" {
			t.Errorf("total = %s, want 29.97", got)
		}
		if order.ID != 1 {
			t.Errorf("id not assigned: %d", order.ID)
		}
	})

	t.Run("empty order number", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.OrderNumber = "  "
		if _, err := svc.CreateOrder(ctx, p); !errors.Is(err, ErrEmptyOrderNumber) {
			t.Fatalf("expected ErrEmptyOrderNumber, got %v", err)
		}
	})

	t.Run("empty status defaults to Pending", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Status = ""
		order, err := svc.CreateOrder(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != models.OrderStatusPending {
			t.Errorf("status = %q, want Pending", order.Status)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Status = "Cancelled"
		if _, err := svc.CreateOrder(ctx, p); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("empty date defaults to today", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Date = ""
		order, err := svc.CreateOrder(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Date != "2024-05-01" {
			t.Errorf("date = %q, want today", order.Date)
		}
	})

	t.Run("timestamp date is normalized", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Date = "2024-04-20T00:00:00Z"
		order, err := svc.CreateOrder(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Date != "2024-04-20" {
			t.Errorf("date = %q, want 2024-04-20", order.Date)
		}
	})

	t.Run("garbage date rejected", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Date = "not-a-date"
		if _, err := svc.CreateOrder(ctx, p); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Items[0].Quantity = 0
		if _, err := svc.CreateOrder(ctx, p); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("duplicate product rejected", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		p := validPayload()
		p.Items = append(p.Items, p.Items[0])
		if _, err := svc.CreateOrder(ctx, p); !errors.Is(err, ErrDuplicateProduct) {
			t.Fatalf("expected ErrDuplicateProduct, got %v", err)
		}
	})
}

func TestOrderService_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes total and keeps id", func(t *testing.T) {
		var stored *models.Order
		store := &mockOrderStore{
			UpdateFunc: func(ctx context.Context, order *models.Order) error {
				stored = order
				return nil
			},
		}
		svc := NewOrderService(store, testClock)

		order, err := svc.UpdateOrder(ctx, 42, validPayload())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.ID != 42 || stored.ID != 42 {
			t.Errorf("id = %d, want 42", order.ID)
		}
		if got := stored.TotalPrice.StringFixed(2); got != "29.97" {
			t.Errorf("total = %s, want 29.97", got)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		store := &mockOrderStore{
			UpdateFunc: func(ctx context.Context, order *models.Order) error {
				return storage.ErrOrderNotFound
			},
		}
		svc := NewOrderService(store, testClock)
		if _, err := svc.UpdateOrder(ctx, 99, validPayload()); !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("missing order", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{
			DeleteFunc: func(ctx context.Context, id int64) error {
				return storage.ErrOrderNotFound
			},
		}, testClock)
		if err := svc.DeleteOrder(ctx, 5); !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("storage error wrapped", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{
			DeleteFunc: func(ctx context.Context, id int64) error {
				return errors.New("db error")
			},
		}, testClock)
		if err := svc.DeleteOrder(ctx, 5); err == nil || errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected wrapped storage error, got %v", err)
		}
	})
}

func TestOrderService_ListOrders(t *testing.T) {
	t.Run("nil from store becomes empty slice", func(t *testing.T) {
		svc := NewOrderService(&mockOrderStore{}, testClock)
		orders, err := svc.ListOrders(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if orders == nil {
			t.Fatal("expected non-nil slice for JSON array response")
		}
	})
}
