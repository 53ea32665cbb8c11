package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agamariel/orderdesk/internal/models"
)

// ErrNotFound возвращается, когда бэкенд отвечает 404 (заказ уже удалён или не существовал).
var ErrNotFound = errors.New("not found")

// StatusError описывает любой другой неуспешный статус бэкенда.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// OrdersClient интерфейс работы с заказами бэкенда.
type OrdersClient interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, payload *models.OrderPayload) (*models.Order, error)
	Update(ctx context.Context, id int64, payload *models.OrderPayload) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
}

// ProductsClient интерфейс каталога товаров.
type ProductsClient interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Client HTTP-клиент REST-бэкенда. Реализует OrdersClient и ProductsClient.
// Без ретраев и кэширования: каждая операция — один сетевой вызов.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент с явно переданным базовым URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// List возвращает все заказы.
func (c *Client) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get возвращает заказ с позициями.
func (c *Client) Get(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create создаёт новый заказ.
func (c *Client) Create(ctx context.Context, payload *models.OrderPayload) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update перезаписывает существующий заказ целиком.
func (c *Client) Update(ctx context.Context, id int64, payload *models.OrderPayload) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete удаляет заказ.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil)
}

// ListProducts возвращает каталог товаров.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// do выполняет запрос и декодирует успешный ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
