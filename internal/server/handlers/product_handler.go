package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agamariel/orderdesk/internal/server/service"
)

// ProductHandler обрабатывает запросы каталога.
type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts обрабатывает GET /products.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, products)
}
