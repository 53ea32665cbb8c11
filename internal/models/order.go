package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DateLayout формат даты заказа на проводе (ISO 8601, без времени).
const DateLayout = "2006-01-02"

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "InProgress"
	OrderStatusCompleted  OrderStatus = "Completed"
)

// Statuses перечисляет допустимые статусы в порядке отображения.
var Statuses = []OrderStatus{OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted}

// Valid проверяет, что статус входит в перечисление.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

// OrderItem позиция заказа: снимок товара на момент добавления.
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal возвращает стоимость позиции (цена × количество).
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order представляет заказ, как его отдаёт бэкенд.
type Order struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Date        string          `json:"date"`
	Status      OrderStatus     `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Items       []OrderItem     `json:"items,omitempty"`
}

// OrderPayload тело запроса на создание/обновление заказа.
// total_price не передаётся: итог пересчитывает бэкенд по позициям.
type OrderPayload struct {
	OrderNumber string      `json:"order_number"`
	Date        string      `json:"date"`
	Status      OrderStatus `json:"status"`
	Items       []OrderItem `json:"items"`
}

// SumItems возвращает точную сумму по позициям без округления.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// NormalizeDate отсекает временную часть ISO-даты ("2024-05-01T00:00:00Z" -> "2024-05-01").
func NormalizeDate(date string) string {
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		return date[:i]
	}
	return date
}
