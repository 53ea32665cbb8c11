package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agamariel/orderdesk/internal/models"
	"github.com/agamariel/orderdesk/internal/server/service"
)

// OrderHandler обрабатывает запросы, связанные с заказами.
type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders обрабатывает GET /orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, order)
}

// CreateOrder обрабатывает POST /orders.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var payload models.OrderPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), &payload)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

// UpdateOrder обрабатывает PUT /orders/:id.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var payload models.OrderPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), id, &payload)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder обрабатывает DELETE /orders/:id.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.orderService.DeleteOrder(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return id, nil
}

// mapServiceError переводит ошибки сервиса в HTTP-статусы.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyOrderNumber),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrDuplicateProduct):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
