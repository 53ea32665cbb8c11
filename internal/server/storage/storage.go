package storage

import (
	"context"
	"errors"

	"github.com/agamariel/orderdesk/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStore определяет интерфейс хранения заказов.
type OrderStore interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id int64) error
}

// ProductStore определяет интерфейс каталога товаров.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}
