package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/agamariel/orderdesk/internal/models"
)

// PostgresStore реализует OrderStore и ProductStore для PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище поверх пула соединений.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// List возвращает все заказы без позиций (позиции нужны только форме редактирования).
func (s *PostgresStore) List(ctx context.Context) ([]models.Order, error) {
	query := `
		SELECT id, order_number, to_char(date, 'YYYY-MM-DD'), status, total_price::text
		FROM orders
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var (
			order    models.Order
			totalStr string
		)
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.Date, &order.Status, &totalStr); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.TotalPrice, err = decimal.NewFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse total_price: %w", err)
		}
		orders = append(orders, order)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}

// Get возвращает заказ вместе с позициями.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	query := `
		SELECT id, order_number, to_char(date, 'YYYY-MM-DD'), status, total_price::text
		FROM orders
		WHERE id = $1
	`

	var (
		order    models.Order
		totalStr string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(&order.ID, &order.OrderNumber, &order.Date, &order.Status, &totalStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.TotalPrice, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_price: %w", err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// Create сохраняет заказ и его позиции в одной транзакции.
func (s *PostgresStore) Create(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (order_number, date, status, total_price)
		VALUES ($1, $2::date, $3, $4::numeric)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.OrderNumber,
		order.Date,
		order.Status,
		order.TotalPrice.String(),
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update перезаписывает заказ целиком: шапку и весь набор позиций.
func (s *PostgresStore) Update(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET order_number = $1, date = $2::date, status = $3, total_price = $4::numeric
		WHERE id = $5
	`
	result, err := tx.Exec(ctx, query,
		order.OrderNumber,
		order.Date,
		order.Status,
		order.TotalPrice.String(),
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete удаляет заказ; позиции удаляются каскадно.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ListProducts возвращает каталог.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, unit_price::text FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product  models.Product
			priceStr string
		)
		if err := rows.Scan(&product.ID, &product.Name, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if product.UnitPrice, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit_price: %w", err)
		}
		products = append(products, product)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return products, nil
}

func (s *PostgresStore) loadItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT product_id, name, unit_price::text, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var (
			item     models.OrderItem
			priceStr string
		)
		if err := rows.Scan(&item.ProductID, &item.Name, &priceStr, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit_price: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return items, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, position)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
	`
	for i, item := range items {
		if _, err := tx.Exec(ctx, query, orderID, item.ProductID, item.Name, item.UnitPrice.String(), item.Quantity, i); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}
