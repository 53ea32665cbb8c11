package service

import (
	"context"
	"fmt"

	"github.com/agamariel/orderdesk/internal/models"
	"github.com/agamariel/orderdesk/internal/server/storage"
)

// ProductService определяет интерфейс каталога товаров.
type ProductService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// ProductServiceImpl реализует ProductService.
type ProductServiceImpl struct {
	store storage.ProductStore
}

// NewProductService создаёт сервис каталога.
func NewProductService(store storage.ProductStore) *ProductServiceImpl {
	return &ProductServiceImpl{store: store}
}

// ListProducts возвращает каталог товаров.
func (s *ProductServiceImpl) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
